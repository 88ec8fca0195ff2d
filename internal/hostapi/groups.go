package hostapi

import (
	"context"
	"fmt"
	"net/url"

	"mailpanel/backend/internal/domain"
)

// SearchGroup 按名称查找组（精确匹配）
//
// 未找到时返回 (nil, nil)。组名来自配置，找不到属于配置错误，由调用方
// 决定是否致命。
func (c *Client) SearchGroup(ctx context.Context, name string) (*domain.Group, error) {
	var resp struct {
		Groups []domain.Group `json:"groups"`
	}
	if err := c.get(ctx, "/api/v1/groups?search="+url.QueryEscape(name), &resp); err != nil {
		return nil, fmt.Errorf("failed to search for group: %w", err)
	}
	for i := range resp.Groups {
		if resp.Groups[i].Name == name {
			return &resp.Groups[i], nil
		}
	}
	return nil, nil
}

// GetGroup 获取组详情（含成员 id 全量列表）
//
// 响应中 userIds 为 JSON null 或缺失时，返回的 Group.UserIDs 为 nil；
// 合法的空组返回非 nil 的空切片。调用方据此区分"空组"与"畸形响应"。
func (c *Client) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	var group domain.Group
	if err := c.get(ctx, "/api/v1/groups/"+url.PathEscape(groupID), &group); err != nil {
		return nil, fmt.Errorf("failed to get group details: %w", err)
	}
	return &group, nil
}

// SetGroupMembers 整表替换组成员列表
//
// 宿主 API 不支持增量添加，只能提交完整的成员 id 列表。
func (c *Client) SetGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	body := map[string][]string{"userIds": userIDs}
	if err := c.put(ctx, "/api/v1/groups/"+url.PathEscape(groupID)+"/members", body, nil); err != nil {
		return fmt.Errorf("failed to replace group members: %w", err)
	}
	return nil
}
