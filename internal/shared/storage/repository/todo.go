package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo-api/internal/shared/model"
	"todo-api/internal/shared/storage"
)

// CreateTodo 创建待办事项
func (r *Store) CreateTodo(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO todos (id, title, completed, status, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`),
		todo.ID, todo.Title, todo.Completed, todo.Status,
		todo.CreatedBy, todo.UpdatedBy, todo.CreatedAt, todo.UpdatedAt,
	)
	return wrapError(err)
}

// GetTodo 按 ID 查找待办事项，不存在时返回 (nil, nil)
func (r *Store) GetTodo(ctx context.Context, id string) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT id, title, completed, status, created_by, updated_by, created_at, updated_at
		 FROM todos WHERE id = $1`), id,
	).Scan(&todo.ID, &todo.Title, &todo.Completed, &todo.Status,
		&todo.CreatedBy, &todo.UpdatedBy, &todo.CreatedAt, &todo.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return todo, err
}

// ListTodos 按创建者过滤待办事项，createdBy 为空时返回全部
func (r *Store) ListTodos(ctx context.Context, createdBy string) ([]*model.Todo, error) {
	query := `SELECT id, title, completed, status, created_by, updated_by, created_at, updated_at
		 FROM todos`
	args := []interface{}{}
	if createdBy != "" {
		query += ` WHERE created_by = $1`
		args = append(args, createdBy)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		t := &model.Todo{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.Status,
			&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// UpdateTodo 按 ID 更新可变字段
func (r *Store) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	res, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE todos SET title = $1, completed = $2, status = $3, updated_by = $4, updated_at = $5
		 WHERE id = $6`),
		todo.Title, todo.Completed, todo.Status, todo.UpdatedBy, todo.UpdatedAt, todo.ID,
	)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTodo 按 ID 删除待办事项
func (r *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM todos WHERE id = $1`), id)
	if err != nil {
		return wrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTodosByUser 删除指定用户的全部待办事项
func (r *Store) DeleteTodosByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM todos WHERE created_by = $1`), userID)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}
