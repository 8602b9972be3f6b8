// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（密码、密钥）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// 存储后端类型
const (
	DatabaseMongoDB  = "mongodb"
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// DatabaseConfig 存储后端配置
// type 决定使用哪组字段：
//   - mongodb: uri + name
//   - sqlite:  path
//   - postgres: host/port/user/name/sslmode（密码来自 DB_PASSWORD）
type DatabaseConfig struct {
	Type    string `yaml:"type"`
	URI     string `yaml:"uri"`
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	SSLMode string `yaml:"sslmode"`
}

type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	DB      int    `yaml:"db"`
}

// Duration 支持 "24h"/"30s" 写法的时长字段
// yaml.v3 不识别 time.Duration 的字符串形式
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// AuthConfig 认证配置
// token_ttl 为 0 表示令牌永不过期（启动时会打印警告）
type AuthConfig struct {
	TokenTTL Duration `yaml:"token_ttl"`
}

// RateLimitConfig 限流配置（固定窗口）
type RateLimitConfig struct {
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env           Environment
	APIPort       string
	Database      DatabaseConfig
	DatabaseURL   string // postgres 连接串，仅 type=postgres 时有效
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	RateLimit     RateLimitConfig
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 从环境变量获取敏感信息
	dbPassword := getEnv("DB_PASSWORD", "")

	cfg := &Config{
		Env:           env,
		APIPort:       getEnv("PORT", yamlCfg.Server.Port),
		Database:      yamlCfg.Database,
		RedisEnabled:  yamlCfg.Redis.Enabled,
		RedisAddr:     fmt.Sprintf("%s:%d", yamlCfg.Redis.Host, yamlCfg.Redis.Port),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       yamlCfg.Redis.DB,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      time.Duration(yamlCfg.Auth.TokenTTL),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		RateLimit:     yamlCfg.RateLimit,
	}

	// 环境变量覆盖存储后端
	if t := os.Getenv("DATABASE_TYPE"); t != "" {
		cfg.Database.Type = t
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		cfg.Database.URI = uri
	}

	if cfg.Database.Type == DatabasePostgres {
		cfg.DatabaseURL = buildDatabaseURL(cfg.Database, dbPassword)
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Type: DatabaseMongoDB,
			URI:  "mongodb://localhost:27017",
			Name: "todo_api",
			Path: "todo.db",
			Host: "localhost", Port: 5432, User: "todo", SSLMode: "disable",
		},
		Redis:     RedisConfig{Enabled: false, Host: "localhost", Port: 6379, DB: 0},
		Auth:      AuthConfig{TokenTTL: Duration(24 * time.Hour)},
		RateLimit: RateLimitConfig{Requests: 100, Window: Duration(time.Minute)},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildDatabaseURL 构建 PostgreSQL 连接字符串
func buildDatabaseURL(db DatabaseConfig, password string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, password, db.Host, db.Port, db.Name, db.SSLMode)
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码和密钥）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %s, DB: %s, Redis: %v}",
		c.Env, c.APIPort, maskPassword(c.databaseSummary()), c.RedisEnabled)
}

func (c *Config) databaseSummary() string {
	switch c.Database.Type {
	case DatabaseSQLite:
		return "sqlite:" + c.Database.Path
	case DatabasePostgres:
		return c.DatabaseURL
	default:
		return c.Database.URI + "/" + c.Database.Name
	}
}

// maskPassword 隐藏密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
