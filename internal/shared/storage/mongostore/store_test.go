package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"todo-api/internal/shared/model"
	"todo-api/internal/shared/storage"
)

// testStore 创建测试用 Store，使用独立数据库避免污染
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	s, err := NewStore(uri, "todo_api_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	// 清空测试数据库并重建索引
	ctx := context.Background()
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

// Compile-time interface check
var _ storage.Store = (*Store)(nil)

func testUser(id, email string) *model.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.User{
		ID: id, Email: email, Username: "tester",
		PasswordHash: "$2a$12$hash", Role: model.UserRoleUser,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestUserCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u := testUser("usr-001", "alice@example.com")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// 按邮箱查找包含密码哈希
	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, want id %s", got, u.ID)
	}
	if got.PasswordHash != u.PasswordHash {
		t.Errorf("GetUserByEmail must include password hash")
	}

	// 按 ID 查找的投影排除密码哈希
	got, err = s.GetUserByID(ctx, "usr-001")
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if got == nil {
		t.Fatal("GetUserByID returned nil")
	}
	if got.PasswordHash != "" {
		t.Errorf("GetUserByID leaked password hash: %q", got.PasswordHash)
	}

	// 不存在返回 (nil, nil)
	got, err = s.GetUserByID(ctx, "usr-ghost")
	if err != nil || got != nil {
		t.Errorf("GetUserByID(missing) = (%v, %v), want (nil, nil)", got, err)
	}
}

// 唯一索引兜底重复邮箱
func TestCreateUserDuplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, testUser("usr-001", "alice@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err := s.CreateUser(ctx, testUser("usr-002", "alice@example.com"))
	if err != storage.ErrDuplicate {
		t.Errorf("duplicate email error = %v, want ErrDuplicate", err)
	}
}

func TestTodoCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	todo := &model.Todo{
		ID: "todo-001", Title: "write tests", Status: model.TodoStatusPending,
		CreatedBy: "usr-001", CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	got, err := s.GetTodo(ctx, "todo-001")
	if err != nil {
		t.Fatalf("GetTodo: %v", err)
	}
	if got == nil || got.Title != "write tests" {
		t.Fatalf("GetTodo = %+v", got)
	}

	// Update
	todo.Title = "write more tests"
	todo.Completed = true
	todo.Status = model.TodoStatusCompleted
	todo.UpdatedBy = "usr-001"
	todo.UpdatedAt = now.Add(time.Minute)
	if err := s.UpdateTodo(ctx, todo); err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	got, _ = s.GetTodo(ctx, "todo-001")
	if !got.Completed || got.Status != model.TodoStatusCompleted {
		t.Errorf("update not applied: %+v", got)
	}

	// Delete
	if err := s.DeleteTodo(ctx, "todo-001"); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if err := s.DeleteTodo(ctx, "todo-001"); err != storage.ErrNotFound {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestListAndDeleteByUser(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	seed := func(id, owner string, at time.Time) {
		t.Helper()
		err := s.CreateTodo(ctx, &model.Todo{
			ID: id, Title: "t " + id, Status: model.TodoStatusPending,
			CreatedBy: owner, CreatedAt: at, UpdatedAt: at,
		})
		if err != nil {
			t.Fatalf("CreateTodo %s: %v", id, err)
		}
	}
	seed("todo-1", "usr-a", base.Add(-2*time.Hour))
	seed("todo-2", "usr-a", base.Add(-time.Hour))
	seed("todo-3", "usr-b", base)

	// 全量列表按创建时间降序
	todos, err := s.ListTodos(ctx, "")
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(todos) != 3 || todos[0].ID != "todo-3" {
		t.Fatalf("ListTodos order wrong: %+v", todos)
	}

	// 按创建者过滤
	todos, err = s.ListTodos(ctx, "usr-a")
	if err != nil || len(todos) != 2 {
		t.Fatalf("ListTodos(usr-a) = %d items, err %v", len(todos), err)
	}

	// 按创建者删除
	n, err := s.DeleteTodosByUser(ctx, "usr-a")
	if err != nil || n != 2 {
		t.Fatalf("DeleteTodosByUser = (%d, %v), want (2, nil)", n, err)
	}
	todos, _ = s.ListTodos(ctx, "")
	if len(todos) != 1 {
		t.Errorf("remaining todos = %d, want 1", len(todos))
	}
}
