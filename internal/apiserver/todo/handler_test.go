package todo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo-api/internal/apiserver/auth"
	"todo-api/internal/shared/model"
	"todo-api/internal/shared/storage/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv 组合内存存储和路由，按指定身份发请求
type testEnv struct {
	store *memstore.Store
	mux   *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.NewStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return &testEnv{store: store, mux: mux}
}

func (e *testEnv) seedUser(t *testing.T, id string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		ID: id, Email: id + "@example.com", Username: id, Role: role,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) seedTodo(t *testing.T, id, title, createdBy string, createdAt time.Time) *model.Todo {
	t.Helper()
	todo := &model.Todo{
		ID: id, Title: title, Status: model.TodoStatusPending,
		CreatedBy: createdBy, CreatedAt: createdAt, UpdatedAt: createdAt,
	}
	require.NoError(t, e.store.CreateTodo(context.Background(), todo))
	return todo
}

// do 以 user 身份发送请求（user 为 nil 模拟未认证）
func (e *testEnv) do(t *testing.T, user *model.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Create
// ============================================================================

func TestCreateTodo(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)

	rec := e.do(t, alice, "POST", "/api/v1/todos", todoRequest{Title: "buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "buy milk", got.Title)
	assert.Equal(t, model.TodoStatusPending, got.Status)
	assert.False(t, got.Completed)
	assert.Equal(t, alice.ID, got.CreatedBy)
}

func TestCreateTodoValidation(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)

	longTitle := ""
	for i := 0; i < 101; i++ {
		longTitle += "x"
	}

	tests := []struct {
		name string
		req  todoRequest
		want string
	}{
		{"empty title", todoRequest{}, "at least 2"},
		{"one char title", todoRequest{Title: "x"}, "at least 2"},
		{"title too long", todoRequest{Title: longTitle}, "less than 100"},
		{"bad status", todoRequest{Title: "ok title", Status: "done"}, "status must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, alice, "POST", "/api/v1/todos", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestCreateTodoUnauthenticated(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, nil, "POST", "/api/v1/todos", todoRequest{Title: "buy milk"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// List
// ============================================================================

func TestListTodosOwnership(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)
	bob := e.seedUser(t, "usr-bob", model.UserRoleUser)
	admin := e.seedUser(t, "usr-admin", model.UserRoleAdmin)

	base := time.Now()
	e.seedTodo(t, "todo-1", "alice first", alice.ID, base.Add(-2*time.Hour))
	e.seedTodo(t, "todo-2", "alice second", alice.ID, base.Add(-time.Hour))
	e.seedTodo(t, "todo-3", "bob only", bob.ID, base)

	// 普通用户只看到自己的，按创建时间降序
	rec := e.do(t, alice, "GET", "/api/v1/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var todos []*model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 2)
	assert.Equal(t, "todo-2", todos[0].ID)
	assert.Equal(t, "todo-1", todos[1].ID)
	assert.Nil(t, todos[0].Creator)

	// 管理员看到全部并附创建者摘要
	rec = e.do(t, admin, "GET", "/api/v1/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 3)
	require.NotNil(t, todos[0].Creator)
	assert.Equal(t, bob.ID, todos[0].Creator.ID)
	assert.Equal(t, "usr-bob", todos[0].Creator.Username)
}

// 创建者已删除时摘要为 null，列表不报错
func TestListTodosDeletedCreator(t *testing.T) {
	e := newTestEnv(t)
	admin := e.seedUser(t, "usr-admin", model.UserRoleAdmin)
	e.seedTodo(t, "todo-1", "orphaned", "usr-gone", time.Now())

	rec := e.do(t, admin, "GET", "/api/v1/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var todos []*model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	require.Len(t, todos, 1)
	assert.Nil(t, todos[0].Creator)
}

// ============================================================================
// Get / Update / Delete 所有权
// ============================================================================

func TestGetTodoOwnership(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)
	bob := e.seedUser(t, "usr-bob", model.UserRoleUser)
	admin := e.seedUser(t, "usr-admin", model.UserRoleAdmin)
	e.seedTodo(t, "todo-1", "alice todo", alice.ID, time.Now())

	tests := []struct {
		name       string
		user       *model.User
		id         string
		wantStatus int
	}{
		{"owner can read", alice, "todo-1", http.StatusOK},
		{"admin can read", admin, "todo-1", http.StatusOK},
		{"other user gets 404", bob, "todo-1", http.StatusNotFound},
		{"missing id", alice, "todo-nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, tt.user, "GET", "/api/v1/todos/"+tt.id, nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateTodo(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)
	e.seedTodo(t, "todo-1", "original", alice.ID, time.Now())

	completed := true
	rec := e.do(t, alice, "PUT", "/api/v1/todos/todo-1", todoRequest{
		Title: "updated title", Completed: &completed, Status: "completed",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "updated title", got.Title)
	assert.True(t, got.Completed)
	assert.Equal(t, model.TodoStatusCompleted, got.Status)
	assert.Equal(t, alice.ID, got.UpdatedBy)
}

func TestUpdateTodoNotOwned(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)
	bob := e.seedUser(t, "usr-bob", model.UserRoleUser)
	e.seedTodo(t, "todo-1", "alice todo", alice.ID, time.Now())

	rec := e.do(t, bob, "PUT", "/api/v1/todos/todo-1", todoRequest{Title: "hijacked"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// 原记录未被修改
	todo, err := e.store.GetTodo(context.Background(), "todo-1")
	require.NoError(t, err)
	assert.Equal(t, "alice todo", todo.Title)
}

func TestDeleteTodo(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)
	e.seedTodo(t, "todo-1", "to delete", alice.ID, time.Now())

	rec := e.do(t, alice, "DELETE", "/api/v1/todos/todo-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	todo, err := e.store.GetTodo(context.Background(), "todo-1")
	require.NoError(t, err)
	assert.Nil(t, todo)

	// 再删一次 404
	rec = e.do(t, alice, "DELETE", "/api/v1/todos/todo-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================================================
// DeleteAll
// ============================================================================

func TestDeleteAllTodos(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)
	bob := e.seedUser(t, "usr-bob", model.UserRoleUser)

	now := time.Now()
	for i := 0; i < 3; i++ {
		e.seedTodo(t, fmt.Sprintf("todo-a%d", i), "alice todo", alice.ID, now)
	}
	e.seedTodo(t, "todo-b1", "bob todo", bob.ID, now)

	rec := e.do(t, alice, "DELETE", "/api/v1/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message      string `json:"message"`
		DeletedCount int64  `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.DeletedCount)

	// bob 的记录不受影响
	todos, err := e.store.ListTodos(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}

// 没有记录时 deleted_count 为 0，不报错
func TestDeleteAllTodosEmpty(t *testing.T) {
	e := newTestEnv(t)
	alice := e.seedUser(t, "usr-alice", model.UserRoleUser)

	rec := e.do(t, alice, "DELETE", "/api/v1/todos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted_count":0`)
}
