package hostapi

import (
	"context"
	"fmt"
	"net/url"

	"mailpanel/backend/internal/domain"
)

// CreateMailboxRequest 创建邮箱的请求体
type CreateMailboxRequest struct {
	Name          string `json:"name"`
	OwnerID       string `json:"ownerId"`
	OwnerType     string `json:"ownerType"`
	Active        bool   `json:"active"`
	StorageQuota  int64  `json:"storageQuota"`
	MessagesQuota int64  `json:"messagesQuota"`
}

// ListMailboxes 列出指定域名下的全部邮箱
//
// 宿主 API 的响应不含域名字段，这里为每条记录打上来源域名，调用方不必
// 再做标注。
func (c *Client) ListMailboxes(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
	var resp struct {
		Mailboxes []domain.Mailbox `json:"mailboxes"`
	}
	if err := c.get(ctx, "/api/v1/mail/"+url.PathEscape(mailDomain)+"/mailboxes", &resp); err != nil {
		return nil, fmt.Errorf("failed to list mailboxes for domain %s: %w", mailDomain, err)
	}
	for i := range resp.Mailboxes {
		resp.Mailboxes[i].Domain = mailDomain
	}
	return resp.Mailboxes, nil
}

// CreateMailbox 在指定域名下创建邮箱
func (c *Client) CreateMailbox(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error) {
	req := CreateMailboxRequest{
		Name:         name,
		OwnerID:      ownerID,
		OwnerType:    "user",
		Active:       true,
		StorageQuota: storageQuota,
	}
	var mailbox domain.Mailbox
	if err := c.post(ctx, "/api/v1/mail/"+url.PathEscape(mailDomain)+"/mailboxes", req, &mailbox); err != nil {
		return nil, fmt.Errorf("failed to create mailbox: %w", err)
	}
	mailbox.Domain = mailDomain
	return &mailbox, nil
}

// DeleteMailbox 删除邮箱（保留邮件内容，deleteMails=false）
func (c *Client) DeleteMailbox(ctx context.Context, mailDomain, name string) error {
	body := map[string]bool{"deleteMails": false}
	path := "/api/v1/mail/" + url.PathEscape(mailDomain) + "/mailboxes/" + url.PathEscape(name)
	if err := c.delete(ctx, path, body); err != nil {
		return fmt.Errorf("failed to delete mailbox: %w", err)
	}
	return nil
}

// GetMailbox 获取单个邮箱
//
// 宿主平台返回 404 时返回 (nil, nil)——"不存在"是合法的否定结果而非
// 错误（存在性检查依赖这一语义）。
func (c *Client) GetMailbox(ctx context.Context, mailDomain, name string) (*domain.Mailbox, error) {
	var mailbox domain.Mailbox
	path := "/api/v1/mail/" + url.PathEscape(mailDomain) + "/mailboxes/" + url.PathEscape(name)
	if err := c.get(ctx, path, &mailbox); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check mailbox status: %w", err)
	}
	mailbox.Domain = mailDomain
	return &mailbox, nil
}
