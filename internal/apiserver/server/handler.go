// Package server 组装 HTTP API
//
// Handler 是所有 HTTP API 的入口，负责把请求分发到各领域处理器：
//   - auth: 注册/登录/当前用户
//   - todo: 待办事项 CRUD
//   - admin: 管理员用户列表
//
// 中间件链（外 → 内）：指标 → 限流 → CORS/安全头 → 认证。
// 每一层失败立即写出终止响应并短路，后续层和业务处理器不会执行。
package server

import (
	"net/http"

	"todo-api/internal/apiserver/admin"
	"todo-api/internal/apiserver/auth"
	"todo-api/internal/apiserver/todo"
	"todo-api/internal/ratelimit"
	"todo-api/internal/shared/storage"
)

// Handler API 处理器
type Handler struct {
	store   storage.Store
	authCfg auth.Config
	limiter ratelimit.Limiter
	metrics *Metrics

	authHandler  *auth.Handler
	todoHandler  *todo.Handler
	adminHandler *admin.Handler
}

// NewHandler 创建 Handler 实例
// limiter 可为 nil（不限流，如测试场景）
func NewHandler(store storage.Store, authCfg auth.Config, limiter ratelimit.Limiter) *Handler {
	return &Handler{
		store:        store,
		authCfg:      authCfg,
		limiter:      limiter,
		metrics:      NewMetrics("todoapi"),
		authHandler:  auth.NewHandler(store, authCfg),
		todoHandler:  todo.NewHandler(store),
		adminHandler: admin.NewHandler(store),
	}
}

// Metrics 返回指标实例
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 公开:
//   - GET  /health                    - 服务健康检查
//   - GET  /metrics                   - Prometheus 指标
//   - GET  /api/docs                  - API 文档页面
//   - GET  /api/openapi.yaml          - OpenAPI 文档
//   - POST /api/v1/auth/register      - 用户注册
//   - POST /api/v1/auth/login         - 用户登录
//
// 需认证:
//   - GET    /api/v1/auth/me          - 当前用户
//   - POST   /api/v1/todos            - 创建待办
//   - GET    /api/v1/todos            - 列出待办（admin 看全部）
//   - GET    /api/v1/todos/{id}       - 获取待办
//   - PUT    /api/v1/todos/{id}       - 更新待办
//   - DELETE /api/v1/todos/{id}       - 删除待办
//   - DELETE /api/v1/todos            - 删除自己的全部待办
//
// 仅管理员:
//   - GET /api/v1/admin/users         - 列出全部用户
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", h.metrics.Handler())

	// API 文档
	h.registerDocs(mux)

	// 领域路由
	h.authHandler.RegisterRoutes(mux)
	h.todoHandler.RegisterRoutes(mux)
	h.adminHandler.RegisterRoutes(mux)

	// 认证中间件：校验令牌并加载实时用户
	handler := auth.Middleware(h.authCfg, h.store)(mux)

	// CORS + 安全响应头
	handler = corsMiddleware(securityHeaders(handler))

	// 限流：被拒绝的请求不触发认证和业务逻辑
	if h.limiter != nil {
		handler = ratelimit.Middleware(h.limiter)(handler)
	}

	// 指标最外层，被限流的 429 也会被计数
	handler = h.metrics.MetricsMiddleware(handler)

	return handler
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// securityHeaders 添加基础安全响应头
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
