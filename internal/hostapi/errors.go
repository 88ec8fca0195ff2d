package hostapi

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError 表示宿主平台返回的非 2xx 响应。
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Message    string `json:"message"`
}

// Error 实现 error 接口
func (e *APIError) Error() string {
	return fmt.Sprintf("host api: %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsNotFound 判断是否为 404（对邮箱存在性检查而言是合法的否定结果，不是错误）
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound 判断任意错误是否为宿主平台的 404 响应
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}
