package model

import "time"

// TodoStatus 待办事项状态
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in-progress"
	TodoStatusCompleted  TodoStatus = "completed"
)

// Valid 状态是否为已知状态
func (s TodoStatus) Valid() bool {
	switch s {
	case TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted:
		return true
	}
	return false
}

// Todo 待办事项
//
// CreatedBy 在创建时写入且不可变；UpdatedBy 记录最近一次修改者。
// Creator 仅在管理员列表响应中填充，不落库。
type Todo struct {
	ID        string     `json:"id" bson:"_id" db:"id"`
	Title     string     `json:"title" bson:"title" db:"title"`
	Completed bool       `json:"completed" bson:"completed" db:"completed"`
	Status    TodoStatus `json:"status" bson:"status" db:"status"`
	CreatedBy string     `json:"created_by" bson:"created_by" db:"created_by"`
	UpdatedBy string     `json:"updated_by,omitempty" bson:"updated_by,omitempty" db:"updated_by"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at" db:"updated_at"`

	Creator *UserSummary `json:"creator,omitempty" bson:"-" db:"-"`
}
