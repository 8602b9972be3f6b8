package auth

import (
	"log"
	"net/http"
	"strings"

	"todo-api/internal/shared/model"
)

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/api/v1/auth/register",
	"/api/v1/auth/login",
	"/api/docs",
	"/api/openapi.yaml",
	"/health",
	"/metrics",
}

func isPublicRoute(method, path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware 创建 JWT 认证中间件
//
// 非公开路由的处理链：提取 Bearer Token → 校验签名/有效期 →
// 按令牌 Subject 从存储加载实时用户（密码哈希不在投影中）→ 注入 context。
// 任一环节失败立即写出 401 并短路，后续阶段不会执行。
// 令牌签发后被删除的用户在这里被拒绝，而不是进入业务逻辑。
func Middleware(cfg Config, store UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 公开路由：直接放行
			if isPublicRoute(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// 提取 Bearer Token
			// "缺少令牌"和"无效令牌"对客户端都是 401，内部日志区分成因
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			// 解析 JWT
			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			// 加载实时用户：角色变更立即生效，已删除用户立即失效
			user, err := store.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				log.Printf("[auth] resolve user %s error: %v", claims.Subject, err)
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if user == nil {
				log.Printf("[auth] token subject %s no longer exists", claims.Subject)
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRoles 角色门控中间件
//
// 未认证 → 401；角色缺失、未知或不在要求集合中 → 403。
// 对身份的两个分支（已认证/未认证）都显式处理，绝不解引用缺失的身份。
func RequireRoles(roles ...model.UserRole) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			if !user.Role.Valid() {
				// 角色字段损坏按无权限处理，fail closed
				log.Printf("[auth] user %s has invalid role %q", user.ID, user.Role)
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next(w, r)
					return
				}
			}
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		}
	}
}

// AdminOnly 管理员专属路由中间件
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return RequireRoles(model.UserRoleAdmin)(next)
}
