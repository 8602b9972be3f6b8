package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = Config{JWTSecret: "test-secret-key", TokenTTL: time.Hour}

// ============================================================================
// 密码哈希
// ============================================================================

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$12$"), "expected bcrypt cost 12, got %s", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
	assert.False(t, CheckPassword("", hash))
}

// 同一明文两次哈希结果不同（随机盐），但都能通过校验
func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("password123")
	require.NoError(t, err)
	h2, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPassword("password123", h1))
	assert.True(t, CheckPassword("password123", h2))
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("password123", "not-a-bcrypt-hash"))
	assert.False(t, CheckPassword("password123", ""))
}

// ============================================================================
// JWT
// ============================================================================

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testCfg, "usr-abc123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, "usr-abc123", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenNoExpiryWhenTTLZero(t *testing.T) {
	cfg := Config{JWTSecret: "test-secret-key", TokenTTL: 0}
	token, err := GenerateToken(cfg, "usr-abc123")
	require.NoError(t, err)

	claims, err := ParseToken(cfg, token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestParseTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(testCfg, "usr-abc123")
	require.NoError(t, err)

	// 篡改签名段
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = ParseToken(testCfg, tampered)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testCfg, "usr-abc123")
	require.NoError(t, err)

	_, err = ParseToken(Config{JWTSecret: "other-secret"}, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-abc123",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testCfg.JWTSecret))
	require.NoError(t, err)

	_, err = ParseToken(testCfg, token)
	assert.Error(t, err)
}

// alg=none 的令牌必须被拒绝
func TestParseTokenRejectsNoneAlg(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "usr-abc123"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(testCfg, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsEmptySubject(t *testing.T) {
	token, err := GenerateToken(testCfg, "")
	require.NoError(t, err)

	_, err = ParseToken(testCfg, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseToken(testCfg, in)
		assert.Error(t, err, "input %q", in)
	}
}
