// Package auth 用户认证：JWT 令牌管理、密码哈希、HTTP 中间件
package auth

import (
	"context"
	"fmt"
	"time"

	"todo-api/internal/shared/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// contextKey context 键类型
type contextKey string

const ctxKeyAuthUser contextKey = "auth_user"

// Config 认证配置
//
// JWTSecret 在进程启动时加载一次，运行期间只读。
// TokenTTL 为 0 时签发的令牌永不过期——是否接受永久令牌由部署方决定，
// 启动日志会明确提示。
type Config struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DefaultConfig 返回默认认证配置
func DefaultConfig() Config {
	return Config{
		JWTSecret: "",
		TokenTTL:  24 * time.Hour,
	}
}

// Enabled 是否配置了签名密钥
func (c Config) Enabled() bool {
	return c.JWTSecret != ""
}

// ============================================================================
// 密码哈希
// ============================================================================

// HashPassword 使用 bcrypt 哈希密码
// bcrypt 自带随机盐，同一明文多次哈希产生不同结果但都能通过校验
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// CheckPassword 验证密码
// 不匹配是正常的 false 结果，不是错误
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ============================================================================
// JWT Token
// ============================================================================

// Claims JWT 声明，用户 ID 存于 Subject，是令牌携带的唯一身份信息。
// 角色等可变属性不进令牌：每次请求都从存储加载实时用户。
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken 为指定用户签发访问令牌
func GenerateToken(cfg Config, userID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if cfg.TokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(cfg.TokenTTL))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken 解析并验证 JWT
// 格式错误、签名不符、已过期都返回 error，由边界统一折叠为 401
func ParseToken(cfg Config, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ============================================================================
// Context 辅助函数
// ============================================================================

// WithUser 将已解析的用户注入 context
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

// GetUser 从 context 获取认证用户
// 返回 nil 表示未认证，所有消费方必须显式处理该分支
func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(ctxKeyAuthUser).(*model.User)
	return user
}
