// Package todo 待办事项 HTTP 处理器
//
// 所有路由都要求已认证身份；普通用户只能看到并操作自己创建的记录，
// 管理员不受创建者限制。他人记录对普通用户一律表现为 404，不泄露存在性。
package todo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"todo-api/internal/apiserver/auth"
	"todo-api/internal/shared/model"
	"todo-api/internal/shared/storage"
)

// Store 待办事项存储接口
// GetUserByID 用于管理员列表的创建者信息填充
type Store interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodo(ctx context.Context, id string) (*model.Todo, error)
	ListTodos(ctx context.Context, createdBy string) ([]*model.Todo, error)
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id string) error
	DeleteTodosByUser(ctx context.Context, userID string) (int64, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Handler 待办事项 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建待办事项处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册待办事项相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/todos", h.Create)
	mux.HandleFunc("GET /api/v1/todos", h.List)
	mux.HandleFunc("GET /api/v1/todos/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/todos/{id}", h.Update)
	mux.HandleFunc("DELETE /api/v1/todos/{id}", h.Delete)
	mux.HandleFunc("DELETE /api/v1/todos", h.DeleteAll)
}

// ============================================================================
// 请求类型
// ============================================================================

type todoRequest struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed,omitempty"`
	Status    string `json:"status,omitempty"`
}

// validate 校验请求体并返回解析后的状态
func (req *todoRequest) validate() (model.TodoStatus, string) {
	if len(req.Title) < 2 {
		return "", "title must be at least 2 characters"
	}
	if len(req.Title) > 100 {
		return "", "title must be less than 100 characters"
	}
	status := model.TodoStatusPending
	if req.Status != "" {
		status = model.TodoStatus(req.Status)
		if !status.Valid() {
			return "", "status must be one of: pending, in-progress, completed"
		}
	}
	return status, ""
}

// ============================================================================
// Handlers
// ============================================================================

// Create 创建待办事项
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	now := time.Now()
	todo := &model.Todo{
		ID:        generateID("todo"),
		Title:     req.Title,
		Status:    status,
		CreatedBy: user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	if err := h.store.CreateTodo(r.Context(), todo); err != nil {
		log.Printf("[todo.create] CreateTodo error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}

	writeJSON(w, http.StatusCreated, todo)
}

// List 列出待办事项
// 管理员看到全部记录并附创建者摘要，普通用户只看到自己的
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	createdBy := user.ID
	if user.IsAdmin() {
		createdBy = ""
	}

	todos, err := h.store.ListTodos(r.Context(), createdBy)
	if err != nil {
		log.Printf("[todo.list] ListTodos error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}

	if user.IsAdmin() {
		h.attachCreators(r.Context(), todos)
	}

	writeJSON(w, http.StatusOK, todos)
}

// Get 获取单个待办事项
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	todo, err := h.loadOwned(r, user)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Update 更新待办事项
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, msg := req.validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := h.loadOwned(r, user)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	todo.Title = req.Title
	todo.Status = status
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedBy = user.ID
	todo.UpdatedAt = time.Now()

	if err := h.store.UpdateTodo(r.Context(), todo); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		log.Printf("[todo.update] UpdateTodo error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Delete 删除待办事项
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	todo, err := h.loadOwned(r, user)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := h.store.DeleteTodo(r.Context(), todo.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "todo not found")
			return
		}
		log.Printf("[todo.delete] DeleteTodo error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "todo deleted successfully"})
}

// DeleteAll 删除当前用户创建的全部待办事项
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.store.DeleteTodosByUser(r.Context(), user.ID)
	if err != nil {
		log.Printf("[todo.deleteall] DeleteTodosByUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete todos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "all your todos have been deleted successfully",
		"deleted_count": count,
	})
}

// ============================================================================
// 内部辅助
// ============================================================================

// errNotOwned 所有权检查失败，对外表现为 404
var errNotOwned = errors.New("todo not owned by caller")

// loadOwned 按路径参数加载待办事项并执行所有权检查
func (h *Handler) loadOwned(r *http.Request, user *model.User) (*model.Todo, error) {
	id := r.PathValue("id")
	todo, err := h.store.GetTodo(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, storage.ErrNotFound
	}
	if !user.IsAdmin() && todo.CreatedBy != user.ID {
		return nil, errNotOwned
	}
	return todo, nil
}

// attachCreators 为待办事项填充创建者摘要（管理员列表视角）
func (h *Handler) attachCreators(ctx context.Context, todos []*model.Todo) {
	cache := map[string]*model.UserSummary{}
	for _, t := range todos {
		summary, ok := cache[t.CreatedBy]
		if !ok {
			u, err := h.store.GetUserByID(ctx, t.CreatedBy)
			if err != nil {
				log.Printf("[todo.list] load creator %s error: %v", t.CreatedBy, err)
				continue
			}
			summary = u.Summary() // u 为 nil 时摘要也为 nil（创建者已删除）
			cache[t.CreatedBy] = summary
		}
		t.Creator = summary
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errNotOwned):
		writeError(w, http.StatusNotFound, "todo not found")
	default:
		log.Printf("[todo] store error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// generateID 生成带前缀的唯一标识符
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
