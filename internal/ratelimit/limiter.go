// Package ratelimit 请求速率限制
//
// 提供两种实现：Redis 固定窗口计数器（多实例部署共享计数）和
// 进程内 per-client 令牌桶（无 Redis 时的回退）。
// 中间件按客户端 IP 限流，超限返回 429。
package ratelimit

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
)

// Limiter 速率限制器接口
type Limiter interface {
	// Allow 判断 key 对应客户端的本次请求是否放行
	Allow(ctx context.Context, key string) (bool, error)
}

// Middleware 创建限流中间件
//
// 限流器自身出错时放行并记日志：限流是可用性保护，
// 不应让 Redis 故障放大为全站拒绝服务。
func Middleware(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Printf("[ratelimit] limiter error: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP 提取客户端 IP：优先取 X-Forwarded-For 首个地址
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
