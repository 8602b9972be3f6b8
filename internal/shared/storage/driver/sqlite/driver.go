// Package sqlite SQLite 数据库驱动
//
// 提供 SQLite 连接管理、方言实现和自动 Schema 迁移。
// 适用于开发、测试和轻量级部署场景。
package sqlite

import (
	"database/sql"
	"fmt"

	"todo-api/internal/shared/storage/dbutil"

	_ "modernc.org/sqlite"
)

// Dialect SQLite 方言实现
type Dialect struct{}

var _ dbutil.Dialect = (*Dialect)(nil)

func (d *Dialect) DriverType() dbutil.DriverType {
	return dbutil.DriverSQLite
}

func (d *Dialect) Rebind(query string) string {
	return dbutil.RebindToQuestion(query)
}

func (d *Dialect) CurrentTimestamp() string {
	return "datetime('now')"
}

// schema 建表语句
// TEXT 时间戳由 database/sql 驱动负责与 time.Time 互转
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		username      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'user',
		created_at    TIMESTAMP NOT NULL,
		updated_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		completed  INTEGER NOT NULL DEFAULT 0,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_by TEXT NOT NULL REFERENCES users(id),
		updated_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_created_by ON todos(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at)`,
}

// AutoMigrate 自动建表
func (d *Dialect) AutoMigrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

// Open 创建 SQLite 数据库连接
//
// path 为文件路径，":memory:" 表示内存数据库（测试用）。
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// modernc/sqlite 不支持多 writer 并发
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return db, nil
}

// NewDialect 创建 SQLite 方言
func NewDialect() *Dialect {
	return &Dialect{}
}
