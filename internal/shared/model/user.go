package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Valid 角色是否为已知角色
// 空值或未知值视为非法，授权检查据此拒绝而不是放行
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

// User 用户
type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	Email        string    `json:"email" bson:"email" db:"email"`
	Username     string    `json:"username" bson:"username" db:"username"`
	PasswordHash string    `json:"-" bson:"password_hash,omitempty" db:"password_hash"` // never expose in JSON
	Role         UserRole  `json:"role" bson:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at" db:"updated_at"`
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// Summary 用户摘要（嵌入其他实体的响应中，不含敏感字段）
type UserSummary struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

// Summary 返回用户摘要
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
