package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/domain"
)

func newMailboxService(api *fakeAPI, cfg *config.PanelConfig) *MailboxService {
	directory := NewDirectoryService(api, cfg, zap.NewNop())
	return NewMailboxService(api, directory, cfg, zap.NewNop())
}

func TestListAllMailboxes(t *testing.T) {
	t.Run("按配置的域名顺序聚合", func(t *testing.T) {
		api := &fakeAPI{
			listMailboxesFn: func(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
				switch mailDomain {
				case "a.com":
					return []domain.Mailbox{
						{Name: "alice", Domain: "a.com", OwnerID: "u1"},
					}, nil
				case "b.com":
					return []domain.Mailbox{
						{Name: "bob", Domain: "b.com", OwnerID: "u2"},
						{Name: "carol", Domain: "b.com", OwnerID: "u3"},
					}, nil
				}
				return nil, errors.New("unknown domain")
			},
		}
		svc := newMailboxService(api, testPanelConfig())

		mailboxes, err := svc.ListAllMailboxes(context.Background())
		require.NoError(t, err)
		require.Len(t, mailboxes, 3)
		assert.Equal(t, "alice@a.com", mailboxes[0].Address())
		assert.Equal(t, "bob@b.com", mailboxes[1].Address())
		assert.Equal(t, "carol@b.com", mailboxes[2].Address())
	})

	t.Run("单域名失败不拖垮整体", func(t *testing.T) {
		api := &fakeAPI{
			listMailboxesFn: func(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
				if mailDomain == "a.com" {
					return nil, errors.New("upstream timeout")
				}
				return []domain.Mailbox{
					{Name: "bob", Domain: "b.com", OwnerID: "u2"},
				}, nil
			},
		}
		svc := newMailboxService(api, testPanelConfig())

		mailboxes, err := svc.ListAllMailboxes(context.Background())
		require.NoError(t, err)
		require.Len(t, mailboxes, 1)
		assert.Equal(t, "bob@b.com", mailboxes[0].Address())
	})

	t.Run("未配置域名返回空结果", func(t *testing.T) {
		cfg := testPanelConfig()
		cfg.MailDomains = nil
		svc := newMailboxService(&fakeAPI{}, cfg)

		mailboxes, err := svc.ListAllMailboxes(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, mailboxes)
		assert.Empty(t, mailboxes)
	})
}

func TestListMailboxesForUser(t *testing.T) {
	api := &fakeAPI{
		listMailboxesFn: func(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
			if mailDomain == "a.com" {
				return []domain.Mailbox{
					{Name: "alice", Domain: "a.com", OwnerID: "u1"},
					{Name: "shared", Domain: "a.com", OwnerID: "u2"},
				}, nil
			}
			return []domain.Mailbox{
				{Name: "alice2", Domain: "b.com", OwnerID: "u1"},
			}, nil
		},
	}
	svc := newMailboxService(api, testPanelConfig())

	mailboxes, err := svc.ListMailboxesForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mailboxes, 2)
	for _, mailbox := range mailboxes {
		assert.Equal(t, "u1", mailbox.OwnerID)
	}
}

func TestListVisibleMailboxes(t *testing.T) {
	api := &fakeAPI{
		listUsersFn: func(ctx context.Context, search string) ([]domain.User, error) {
			return []domain.User{
				{ID: "u1", Username: "alice"},
				{ID: "u2", Username: "svc-bot"},
			}, nil
		},
		listMailboxesFn: func(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
			if mailDomain != "a.com" {
				return nil, nil
			}
			return []domain.Mailbox{
				{Name: "alice", Domain: "a.com", OwnerID: "u1"},
				{Name: "robot", Domain: "a.com", OwnerID: "u2"},
				{Name: "orphan", Domain: "a.com", OwnerID: "u9"},
			}, nil
		},
	}
	svc := newMailboxService(api, testPanelConfig("svc-bot"))

	mailboxes, err := svc.ListVisibleMailboxes(context.Background())
	require.NoError(t, err)

	// 排除账户拥有的与属主未知的邮箱都被隐藏
	require.Len(t, mailboxes, 1)
	assert.Equal(t, "alice@a.com", mailboxes[0].Address())
}

func TestCreateMailbox_DomainValidation(t *testing.T) {
	t.Run("域名不在配置内", func(t *testing.T) {
		svc := newMailboxService(&fakeAPI{}, testPanelConfig())

		_, err := svc.CreateMailbox(context.Background(), "evil.com", "x", "u1", 0)
		assert.ErrorIs(t, err, ErrDomainNotAllowed)
	})

	t.Run("未配置任何域名", func(t *testing.T) {
		cfg := testPanelConfig()
		cfg.MailDomains = nil
		svc := newMailboxService(&fakeAPI{}, cfg)

		_, err := svc.CreateMailbox(context.Background(), "a.com", "x", "u1", 0)
		assert.ErrorIs(t, err, ErrNoValidDomains)
	})

	t.Run("域名匹配不区分大小写", func(t *testing.T) {
		api := &fakeAPI{
			createMailboxFn: func(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error) {
				return &domain.Mailbox{Name: name, Domain: mailDomain, OwnerID: ownerID}, nil
			},
		}
		svc := newMailboxService(api, testPanelConfig())

		// 配置侧已统一小写，请求侧的大写写法不应被拒绝
		_, err := svc.CreateMailbox(context.Background(), "A.com", "new", "u1", 0)
		require.NoError(t, err)
	})

	t.Run("合法域名透传到上游", func(t *testing.T) {
		api := &fakeAPI{
			createMailboxFn: func(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error) {
				return &domain.Mailbox{Name: name, Domain: mailDomain, OwnerID: ownerID}, nil
			},
		}
		svc := newMailboxService(api, testPanelConfig())

		mailbox, err := svc.CreateMailbox(context.Background(), "a.com", "new", "u1", 0)
		require.NoError(t, err)
		assert.Equal(t, "new@a.com", mailbox.Address())
	})
}

func TestMailboxExists(t *testing.T) {
	api := &fakeAPI{
		getMailboxFn: func(ctx context.Context, mailDomain, name string) (*domain.Mailbox, error) {
			if name == "alice" {
				return &domain.Mailbox{Name: "alice", Domain: mailDomain}, nil
			}
			return nil, nil // 上游 404 已在客户端层映射为 nil
		},
	}
	svc := newMailboxService(api, testPanelConfig())

	exists, err := svc.MailboxExists(context.Background(), "a.com", "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.MailboxExists(context.Background(), "a.com", "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRefreshValidDomains(t *testing.T) {
	svc := newMailboxService(&fakeAPI{}, testPanelConfig())

	domains := svc.ValidDomains()
	assert.Equal(t, []string{"a.com", "b.com"}, domains)
	assert.True(t, svc.IsValidDomain("a.com"))
	assert.False(t, svc.IsValidDomain("c.com"))
}
