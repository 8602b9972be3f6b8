package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryLimiter 进程内 per-client 令牌桶限流器
// 未配置 Redis 时的回退实现，计数不跨实例共享
type MemoryLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	lastSeen map[string]time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter 创建内存限流器
// limit 为窗口内允许的请求数，window 为窗口长度；
// 换算为令牌桶的平均速率，突发容量等于 limit
func NewMemoryLimiter(limit int64, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		clients:  make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(limit) / window.Seconds()),
		burst:    int(limit),
	}
}

// Allow 判断请求是否放行
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.clients[key]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.clients[key] = lim
	}
	l.lastSeen[key] = time.Now()

	// 顺手清理超过 10 分钟未出现的客户端，防止 map 无限增长
	if len(l.clients) > 10000 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for k, seen := range l.lastSeen {
			if seen.Before(cutoff) {
				delete(l.clients, k)
				delete(l.lastSeen, k)
			}
		}
	}
	l.mu.Unlock()

	return lim.Allow(), nil
}
