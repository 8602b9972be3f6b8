// Package memstore 提供内存版 storage.Store 实现
//
// 用于 handler 单元测试和无外部依赖的本地试运行，
// 语义与 mongostore/repository 对齐：按邮箱唯一、按创建时间降序、
// 按 ID 查询不返回密码哈希。
package memstore

import (
	"context"
	"sort"
	"sync"

	"todo-api/internal/shared/model"
	"todo-api/internal/shared/storage"
)

// Store 内存存储
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	todos map[string]*model.Todo
}

var _ storage.Store = (*Store)(nil)

// NewStore 创建内存存储实例
func NewStore() *Store {
	return &Store{
		users: make(map[string]*model.User),
		todos: make(map[string]*model.Todo),
	}
}

// Close 实现 storage.Store
func (s *Store) Close() error {
	return nil
}

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.PasswordHash = "" // 与 mongostore/repository 的投影行为一致
	return &cp, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []*model.User{}
	for _, u := range s.users {
		cp := *u
		cp.PasswordHash = ""
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

// ============================================================================
// TodoStore
// ============================================================================

func (s *Store) CreateTodo(ctx context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *todo
	s.todos[todo.ID] = &cp
	return nil
}

func (s *Store) GetTodo(ctx context.Context, id string) (*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *Store) ListTodos(ctx context.Context, createdBy string) ([]*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	todos := []*model.Todo{}
	for _, t := range s.todos {
		if createdBy != "" && t.CreatedBy != createdBy {
			continue
		}
		cp := *t
		todos = append(todos, &cp)
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (s *Store) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[todo.ID]
	if !ok {
		return storage.ErrNotFound
	}
	t.Title = todo.Title
	t.Completed = todo.Completed
	t.Status = todo.Status
	t.UpdatedBy = todo.UpdatedBy
	t.UpdatedAt = todo.UpdatedAt
	return nil
}

func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *Store) DeleteTodosByUser(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.todos {
		if t.CreatedBy == userID {
			delete(s.todos, id)
			n++
		}
	}
	return n, nil
}
