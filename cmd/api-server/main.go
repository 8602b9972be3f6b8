// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-api/api"
	"todo-api/internal/apiserver/auth"
	"todo-api/internal/apiserver/server"
	"todo-api/internal/config"
	"todo-api/internal/ratelimit"
	"todo-api/internal/shared/storage"
	"todo-api/internal/shared/storage/driver/postgres"
	"todo-api/internal/shared/storage/driver/sqlite"
	"todo-api/internal/shared/storage/mongostore"
	"todo-api/internal/shared/storage/repository"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换数据库和 Redis）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set, refusing to start")
	}

	// 启动时校验内嵌的 OpenAPI 文档
	if _, err := api.LoadSpec(); err != nil {
		log.Fatalf("Invalid OpenAPI spec: %v", err)
	}

	// 初始化存储后端
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store [type=%s]: %v", cfg.Database.Type, err)
	}
	defer store.Close()
	log.Printf("Connected to %s", cfg.Database.Type)

	// 确保管理员账号存在（ADMIN_EMAIL/ADMIN_PASSWORD 为空则跳过）
	if err := auth.EnsureAdminUser(store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	authCfg := auth.Config{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}
	if authCfg.TokenTTL == 0 {
		log.Println("[auth] token_ttl is 0, issued tokens will never expire")
	}

	// 限流器：优先 Redis（多实例共享窗口），不可用时退回本地内存
	limiter := newLimiter(cfg)

	h := server.NewHandler(store, authCfg, limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}

// openStore 按 database.type 打开对应的存储后端
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Type {
	case config.DatabaseMongoDB:
		return mongostore.NewStore(cfg.Database.URI, cfg.Database.Name)
	case config.DatabaseSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return repository.NewStore(db, sqlite.NewDialect())
	case config.DatabasePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewStore(db, postgres.NewDialect())
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Database.Type)
	}
}

func newLimiter(cfg *config.Config) ratelimit.Limiter {
	limit := int64(cfg.RateLimit.Requests)
	window := time.Duration(cfg.RateLimit.Window)

	if cfg.RedisEnabled {
		limiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, limit, window)
		if err == nil {
			log.Printf("[ratelimit] using redis at %s", cfg.RedisAddr)
			return limiter
		}
		log.Printf("[ratelimit] redis unavailable, falling back to in-memory limiter: %v", err)
	}

	return ratelimit.NewMemoryLimiter(limit, window)
}
