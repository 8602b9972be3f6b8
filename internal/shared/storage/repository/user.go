package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo-api/internal/shared/model"
)

// CreateUser 创建用户
func (r *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO users (id, email, username, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`),
		user.ID, user.Email, user.Username, user.PasswordHash,
		user.Role, user.CreatedAt, user.UpdatedAt,
	)
	return wrapError(err)
}

// GetUserByEmail 通过邮箱查找用户，结果包含密码哈希（仅登录校验使用）
func (r *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT id, email, username, password_hash, role, created_at, updated_at
		 FROM users WHERE email = $1`), email,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// GetUserByID 通过 ID 查找用户，SELECT 列表不含密码哈希
func (r *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT id, email, username, role, created_at, updated_at
		 FROM users WHERE id = $1`), id,
	).Scan(&user.ID, &user.Email, &user.Username,
		&user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

// ListUsers 列出所有用户，不含密码哈希，按创建时间降序
func (r *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT id, email, username, role, created_at, updated_at
		 FROM users ORDER BY created_at DESC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Username,
			&u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
