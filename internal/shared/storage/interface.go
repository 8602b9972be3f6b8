package storage

import (
	"context"

	"todo-api/internal/shared/model"
)

// UserStore 用户存储接口
//
// 按邮箱查询包含密码哈希（登录校验需要）；按 ID 查询和列表查询
// 由各实现在投影/SELECT 层面排除密码哈希，调用方拿不到哈希。
// 邮箱在写入和查询前由调用方统一转为小写。
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// TodoStore 待办事项存储接口
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodo(ctx context.Context, id string) (*model.Todo, error)
	// ListTodos 按创建者过滤；createdBy 为空时返回全部（管理员视角）。
	// 结果按 created_at 降序排列。
	ListTodos(ctx context.Context, createdBy string) ([]*model.Todo, error)
	// UpdateTodo 按 ID 更新可变字段（title/completed/status/updated_by/updated_at）。
	// 记录不存在时返回 ErrNotFound。
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id string) error
	// DeleteTodosByUser 删除指定用户创建的全部待办，返回删除数量
	DeleteTodosByUser(ctx context.Context, userID string) (int64, error)
}

// Store 完整持久化存储接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/, repository/, memstore/
//   - 初始化时通过依赖注入传入实现
type Store interface {
	UserStore
	TodoStore
	Close() error
}
