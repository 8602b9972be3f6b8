// Package admin 管理员专属 HTTP 处理器
package admin

import (
	"encoding/json"
	"log"
	"net/http"

	"todo-api/internal/apiserver/auth"
)

// Handler 管理员 HTTP 处理器
type Handler struct {
	store auth.UserStore
}

// NewHandler 创建管理员处理器
func NewHandler(store auth.UserStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册管理员路由，角色门控由调用方包裹
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/admin/users", auth.AdminOnly(h.ListUsers))
}

// ListUsers 列出全部用户
// 密码哈希在存储层投影中已排除，JSON tag 再兜底一层
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[admin.users] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
