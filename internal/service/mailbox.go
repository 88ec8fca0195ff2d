package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/hostapi"
)

// listDomainConcurrency 聚合邮箱时的并发上限
const listDomainConcurrency = 4

var (
	// ErrNoValidDomains 未配置任何邮件域名，邮箱功能不可用
	ErrNoValidDomains = errors.New("no valid mail domains configured")
	// ErrDomainNotAllowed 目标域名不在配置的邮件域名内
	ErrDomainNotAllowed = errors.New("domain is not a configured mail domain")
)

// MailboxService 封装跨域名的邮箱聚合与管理操作。
type MailboxService struct {
	api       hostapi.API
	directory *DirectoryService
	log       *zap.Logger

	configured []string // 配置给定的域名顺序，聚合输出按此排序

	mu      sync.RWMutex
	domains []string
}

// NewMailboxService 创建邮箱业务服务。
func NewMailboxService(api hostapi.API, directory *DirectoryService, cfg *config.PanelConfig, log *zap.Logger) *MailboxService {
	s := &MailboxService{
		api:        api,
		directory:  directory,
		log:        log,
		configured: append([]string{}, cfg.MailDomains...),
	}
	s.RefreshValidDomains()
	return s
}

// RefreshValidDomains 重新装载配置的邮件域名集合。
//
// 域名列表为空不视为错误，仅记录警告并让邮箱功能降级（fail-open）。
func (s *MailboxService) RefreshValidDomains() {
	if len(s.configured) == 0 {
		s.log.Warn("no mail domains configured, mailbox features will be limited")
	} else {
		s.log.Info("using configured mail domains", zap.Strings("domains", s.configured))
	}

	s.mu.Lock()
	s.domains = append([]string{}, s.configured...)
	s.mu.Unlock()
}

// ValidDomains 返回当前有效的邮件域名集合。
func (s *MailboxService) ValidDomains() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.domains...)
}

// IsValidDomain 判断域名是否在有效集合内。
//
// 配置加载时域名已统一小写，这里对请求侧域名做不区分大小写匹配。
func (s *MailboxService) IsValidDomain(domain string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.domains {
		if strings.EqualFold(d, domain) {
			return true
		}
	}
	return false
}

// ListAllMailboxes 并发聚合所有有效域名下的邮箱。
//
// 单个域名失败只记录错误、贡献空结果，不拖垮整体（部分失败容忍）。
// 输出按配置的域名顺序拼接，保证确定性。
func (s *MailboxService) ListAllMailboxes(ctx context.Context) ([]domain.Mailbox, error) {
	s.RefreshValidDomains()
	domains := s.ValidDomains()
	if len(domains) == 0 {
		return []domain.Mailbox{}, nil
	}

	perDomain := make([][]domain.Mailbox, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listDomainConcurrency)
	for i, mailDomain := range domains {
		i, mailDomain := i, mailDomain
		g.Go(func() error {
			mailboxes, err := s.api.ListMailboxes(gctx, mailDomain)
			if err != nil {
				s.log.Error("failed to list mailboxes for domain",
					zap.String("domain", mailDomain),
					zap.Error(err),
				)
				return nil // 部分失败容忍
			}
			perDomain[i] = mailboxes
			return nil
		})
	}
	_ = g.Wait()

	all := make([]domain.Mailbox, 0)
	for _, mailboxes := range perDomain {
		all = append(all, mailboxes...)
	}
	return all, nil
}

// ListMailboxesForUser 返回指定用户拥有的邮箱（聚合结果的客户端过滤）。
func (s *MailboxService) ListMailboxesForUser(ctx context.Context, ownerID string) ([]domain.Mailbox, error) {
	all, err := s.ListAllMailboxes(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]domain.Mailbox, 0)
	for _, mailbox := range all {
		if mailbox.OwnerID == ownerID {
			owned = append(owned, mailbox)
		}
	}
	return owned, nil
}

// ListVisibleMailboxes 返回面板可见的邮箱列表。
//
// 聚合结果与用户目录交叉比对：属主用户名在排除名单内、或属主
// 不在目录中的邮箱都被隐藏。
func (s *MailboxService) ListVisibleMailboxes(ctx context.Context) ([]domain.Mailbox, error) {
	var (
		all   []domain.Mailbox
		users []domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.ListAllMailboxes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.api.ListUsers(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	visible := make([]domain.Mailbox, 0, len(all))
	for _, mailbox := range all {
		owner, known := byID[mailbox.OwnerID]
		if !known {
			continue
		}
		if s.directory.IsExcluded(owner.Username) {
			continue
		}
		visible = append(visible, mailbox)
	}
	return visible, nil
}

// CreateMailbox 在指定域名下创建邮箱。
func (s *MailboxService) CreateMailbox(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error) {
	if len(s.ValidDomains()) == 0 {
		return nil, ErrNoValidDomains
	}
	if !s.IsValidDomain(mailDomain) {
		return nil, ErrDomainNotAllowed
	}
	return s.api.CreateMailbox(ctx, mailDomain, name, ownerID, storageQuota)
}

// DeleteMailbox 删除指定邮箱，保留其中的邮件。
func (s *MailboxService) DeleteMailbox(ctx context.Context, mailDomain, name string) error {
	return s.api.DeleteMailbox(ctx, mailDomain, name)
}

// MailboxExists 判断邮箱是否存在，上游 404 映射为 false 而非错误。
func (s *MailboxService) MailboxExists(ctx context.Context, mailDomain, name string) (bool, error) {
	mailbox, err := s.api.GetMailbox(ctx, mailDomain, name)
	if err != nil {
		return false, err
	}
	return mailbox != nil, nil
}
