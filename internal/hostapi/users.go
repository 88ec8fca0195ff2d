package hostapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"mailpanel/backend/internal/domain"
)

// CreateUserRequest 创建用户的请求体
type CreateUserRequest struct {
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	FallbackEmail string `json:"fallbackEmail,omitempty"`
}

// UpdateUserRequest 更新用户资料的请求体
type UpdateUserRequest struct {
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	FallbackEmail string `json:"fallbackEmail,omitempty"`
}

// ListUsers 列出宿主平台的全部用户，search 非空时按子串过滤
func (c *Client) ListUsers(ctx context.Context, search string) ([]domain.User, error) {
	path := "/api/v1/users"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var resp struct {
		Users []domain.User `json:"users"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return resp.Users, nil
}

// GetUserByUsername 按用户名查找用户（大小写不敏感的精确匹配）
//
// 未找到时返回 (nil, nil)——不存在是合法的否定结果。
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := c.ListUsers(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by username: %w", err)
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// CreateUser 在宿主平台创建用户，返回新建的用户记录
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if req.Role == "" {
		req.Role = "user"
	}
	var user domain.User
	if err := c.post(ctx, "/api/v1/users", req, &user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// UpdateUser 更新用户资料（displayName/email/fallbackEmail）
func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) error {
	if err := c.put(ctx, "/api/v1/users/"+url.PathEscape(userID), req, nil); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser 删除用户
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if err := c.delete(ctx, "/api/v1/users/"+url.PathEscape(userID), nil); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// SetUserActive 设置用户启用/停用状态
func (c *Client) SetUserActive(ctx context.Context, userID string, active bool) error {
	body := map[string]bool{"active": active}
	if err := c.put(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/active", body, nil); err != nil {
		return fmt.Errorf("failed to set user active state to %v: %w", active, err)
	}
	return nil
}

// SetPassword 直接设置用户密码
func (c *Client) SetPassword(ctx context.Context, userID, password string) error {
	body := map[string]string{"password": password}
	if err := c.post(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/password", body, nil); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

// PasswordResetLink 生成密码重置链接
//
// 宿主平台响应缺少 passwordResetLink 字段视为上游契约违约，返回错误而
// 不是空链接。
func (c *Client) PasswordResetLink(ctx context.Context, userID string) (string, error) {
	var resp struct {
		PasswordResetLink string `json:"passwordResetLink"`
	}
	if err := c.get(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/password_reset_link", &resp); err != nil {
		return "", fmt.Errorf("failed to generate password reset link: %w", err)
	}
	if resp.PasswordResetLink == "" {
		return "", fmt.Errorf("malformed password reset response from host api: missing passwordResetLink")
	}
	return resp.PasswordResetLink, nil
}
