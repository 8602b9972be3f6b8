package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserRoleValid(t *testing.T) {
	tests := []struct {
		role UserRole
		want bool
	}{
		{UserRoleAdmin, true},
		{UserRoleUser, true},
		{"", false},
		{"superuser", false},
		{"Admin", false}, // 大小写敏感
	}
	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("UserRole(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestTodoStatusValid(t *testing.T) {
	tests := []struct {
		status TodoStatus
		want   bool
	}{
		{TodoStatusPending, true},
		{TodoStatusInProgress, true},
		{TodoStatusCompleted, true},
		{"", false},
		{"done", false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("TodoStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

// 密码哈希绝不能出现在任何 JSON 输出中
func TestUserJSONExcludesPasswordHash(t *testing.T) {
	u := &User{
		ID:           "usr-abc123",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$2a$12$secrethash",
		Role:         UserRoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secrethash") {
		t.Errorf("password hash leaked in JSON: %s", data)
	}
	if strings.Contains(string(data), "password") {
		t.Errorf("password field present in JSON: %s", data)
	}
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *User
	if nilUser.IsAdmin() {
		t.Error("nil user must not be admin")
	}
	if (&User{Role: UserRoleUser}).IsAdmin() {
		t.Error("regular user must not be admin")
	}
	if !(&User{Role: UserRoleAdmin}).IsAdmin() {
		t.Error("admin user must be admin")
	}
}

func TestUserSummary(t *testing.T) {
	var nilUser *User
	if nilUser.Summary() != nil {
		t.Error("nil user summary must be nil")
	}

	u := &User{ID: "usr-1", Username: "bob", Email: "bob@example.com", Role: UserRoleAdmin, PasswordHash: "hash"}
	s := u.Summary()
	if s.ID != u.ID || s.Username != u.Username || s.Email != u.Email || s.Role != u.Role {
		t.Errorf("summary mismatch: %+v", s)
	}

	data, _ := json.Marshal(s)
	if strings.Contains(string(data), "hash") {
		t.Errorf("summary JSON leaked hash: %s", data)
	}
}
