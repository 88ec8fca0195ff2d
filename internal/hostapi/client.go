// Package hostapi 封装宿主平台管理 API 的 REST 客户端。
//
// 所有调用使用 Bearer Token 认证；任何非 2xx 响应都视为失败并返回
// *APIError，由调用方决定如何向上传递（本系统不做重试）。
package hostapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client 宿主平台 API 客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	observe    func(method string, statusCode int)
}

// Option 客户端可选配置
type Option func(*Client)

// WithHTTPClient 使用自定义 HTTP 客户端（测试注入用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout 设置请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithObserver 注册请求观察回调，每次收到宿主响应后调用（指标上报用）
func WithObserver(fn func(method string, statusCode int)) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New 创建宿主平台 API 客户端
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do 发起 HTTP 请求并解码响应
//
// body 非 nil 时编码为 JSON 请求体；result 非 nil 且响应体非空时解码到
// result。非 2xx 响应返回 *APIError，其中携带宿主平台返回的 message
// 字段（若可解析）。
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("host api request failed: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.observe != nil {
		c.observe(method, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
		}
		var parsed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Message != "" {
			apiErr.Message = parsed.Message
		} else {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %s %s: %w", method, path, err)
		}
	}

	return nil
}

// get 发起 GET 请求
func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post 发起 POST 请求
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// put 发起 PUT 请求
func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// delete 发起 DELETE 请求（部分宿主端点要求请求体）
func (c *Client) delete(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodDelete, path, body, nil)
}

// APIRoot 获取宿主平台 API 根信息（用于面板的发现端点）
func (c *Client) APIRoot(ctx context.Context) (map[string]any, error) {
	var root map[string]any
	if err := c.get(ctx, "/api/v1", &root); err != nil {
		return nil, err
	}
	return root, nil
}
