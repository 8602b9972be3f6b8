// Package api 内嵌 OpenAPI 文档和文档页面
package api

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// LoadSpec 加载并校验内嵌的 OpenAPI 文档
// 启动时调用一次，文档与代码脱节时尽早暴露
func LoadSpec() (*openapi3.T, error) {
	data, err := OpenAPIFS.ReadFile("openapi/openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}
