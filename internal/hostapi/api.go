package hostapi

import (
	"context"

	"mailpanel/backend/internal/domain"
)

// API 是业务层消费宿主平台客户端时使用的接口。
//
// *Client 是唯一的生产实现；接口存在的意义是允许业务层测试注入桩实现。
type API interface {
	APIRoot(ctx context.Context) (map[string]any, error)

	ListUsers(ctx context.Context, search string) ([]domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) error
	DeleteUser(ctx context.Context, userID string) error
	SetUserActive(ctx context.Context, userID string, active bool) error
	SetPassword(ctx context.Context, userID, password string) error
	PasswordResetLink(ctx context.Context, userID string) (string, error)

	SearchGroup(ctx context.Context, name string) (*domain.Group, error)
	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)
	SetGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	ListMailboxes(ctx context.Context, mailDomain string) ([]domain.Mailbox, error)
	CreateMailbox(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error)
	DeleteMailbox(ctx context.Context, mailDomain, name string) error
	GetMailbox(ctx context.Context, mailDomain, name string) (*domain.Mailbox, error)
}

var _ API = (*Client)(nil)
