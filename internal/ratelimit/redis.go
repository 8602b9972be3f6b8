package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter 基于 Redis 的固定窗口限流器
// 多个 API 实例共享同一份计数
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter 创建 Redis 限流器
//
// addr: Redis 地址，如 "localhost:6379"
// limit: 窗口内允许的请求数
// window: 窗口长度
func NewRedisLimiter(addr, password string, db int, limit int64, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[ratelimit] Connected to Redis at %s", addr)
	return &RedisLimiter{client: client, limit: limit, window: window}, nil
}

// Allow 固定窗口计数：INCR 后首个请求设置窗口过期
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key

	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= l.limit, nil
}

// Close 关闭 Redis 连接
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
