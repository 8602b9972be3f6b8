package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 内嵌的 OpenAPI 文档必须能通过校验
func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec()
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Todo API", doc.Info.Title)

	// 核心路径必须在文档中声明
	for _, path := range []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/me",
		"/api/v1/todos",
		"/api/v1/todos/{id}",
		"/api/v1/admin/users",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}
