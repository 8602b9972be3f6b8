// Package repository 数据库无关的 SQL 存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
package repository

import (
	"database/sql"
	"strings"

	"todo-api/internal/shared/storage"
	"todo-api/internal/shared/storage/dbutil"
)

// Store 通用 SQL 存储实现
// 实现了 storage.Store 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

var _ storage.Store = (*Store)(nil)

// NewStore 创建通用存储并执行自动迁移
func NewStore(db *sql.DB, dialect dbutil.Dialect) (*Store, error) {
	if err := dialect.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// wrapError 将数据库错误转换为领域错误
// 唯一键冲突的报错文本各驱动不同：pgx 为 "duplicate key value violates
// unique constraint"，modernc/sqlite 为 "UNIQUE constraint failed"
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key") {
		return storage.ErrDuplicate
	}
	return err
}
