package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/hostapi"
)

var (
	// ErrManagedGroupNotFound 配置的托管组在主机平台上不存在
	ErrManagedGroupNotFound = errors.New("managed group not found on host platform")
	// ErrMalformedGroup 主机平台返回的组缺少成员列表，视为上游契约被破坏
	ErrMalformedGroup = errors.New("host platform returned group without member list")
)

// DirectoryService 封装托管用户目录相关业务操作。
//
// "托管用户"指同时满足两个条件的平台用户：属于配置的托管组，
// 且用户名不在排除名单内。
type DirectoryService struct {
	api hostapi.API
	cfg *config.PanelConfig
	log *zap.Logger

	// 组 ID 在进程生命周期内只解析一次；组改名需要重启才能生效。
	groupMu sync.RWMutex
	groupID string
	flight  singleflight.Group

	excludeSet map[string]struct{}
}

// NewDirectoryService 创建目录业务服务。
func NewDirectoryService(api hostapi.API, cfg *config.PanelConfig, log *zap.Logger) *DirectoryService {
	excludeSet := make(map[string]struct{}, len(cfg.ExcludeAccounts))
	for _, name := range cfg.ExcludeAccounts {
		excludeSet[name] = struct{}{}
	}

	return &DirectoryService{
		api:        api,
		cfg:        cfg,
		log:        log,
		excludeSet: excludeSet,
	}
}

// ResolveManagedGroupID 解析配置的托管组的 ID，结果在进程生命周期内缓存。
//
// 并发首次解析由 singleflight 保证只发出一次上游请求。
func (s *DirectoryService) ResolveManagedGroupID(ctx context.Context) (string, error) {
	s.groupMu.RLock()
	cached := s.groupID
	s.groupMu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	result, err, _ := s.flight.Do("group-id", func() (interface{}, error) {
		group, err := s.api.SearchGroup(ctx, s.cfg.GroupName)
		if err != nil {
			return "", fmt.Errorf("failed to search group %q: %w", s.cfg.GroupName, err)
		}
		if group == nil {
			return "", fmt.Errorf("%w: %q", ErrManagedGroupNotFound, s.cfg.GroupName)
		}

		s.groupMu.Lock()
		s.groupID = group.ID
		s.groupMu.Unlock()

		s.log.Info("resolved managed group",
			zap.String("group", s.cfg.GroupName),
			zap.String("groupId", group.ID),
		)
		return group.ID, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// ListManagedUsers 返回托管用户列表。
//
// 全量目录与组成员列表并发获取；结果取两者交集，保持目录顺序，
// 再按用户名精确剔除排除名单中的账户。组成员列表缺失视为硬错误，
// 空成员列表则正常返回空结果。
func (s *DirectoryService) ListManagedUsers(ctx context.Context) ([]domain.User, error) {
	groupID, err := s.ResolveManagedGroupID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		users []domain.User
		group *domain.Group
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.api.ListUsers(gctx, "")
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		group, err = s.api.GetGroup(gctx, groupID)
		if err != nil {
			return fmt.Errorf("failed to get group %s: %w", groupID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// userIds 为 null 或缺失是上游响应损坏；空数组是合法的空组
	if group.UserIDs == nil {
		return nil, ErrMalformedGroup
	}

	memberSet := make(map[string]struct{}, len(group.UserIDs))
	for _, id := range group.UserIDs {
		memberSet[id] = struct{}{}
	}

	managed := make([]domain.User, 0, len(group.UserIDs))
	for _, user := range users {
		if _, ok := memberSet[user.ID]; !ok {
			continue
		}
		if _, excluded := s.excludeSet[user.Username]; excluded {
			continue
		}
		managed = append(managed, user)
	}
	return managed, nil
}

// IsExcluded 判断用户名是否在排除名单内（精确大小写匹配）。
func (s *DirectoryService) IsExcluded(username string) bool {
	_, ok := s.excludeSet[username]
	return ok
}

// AddUserToGroup 把用户加入托管组，已是成员时为无操作。
//
// 平台只提供整表替换接口，这里读取-修改-写回。并发写入者之间存在
// last-writer-wins 竞态，单管理员场景下不加守护。
func (s *DirectoryService) AddUserToGroup(ctx context.Context, userID string) error {
	groupID, err := s.ResolveManagedGroupID(ctx)
	if err != nil {
		return err
	}

	group, err := s.api.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group %s: %w", groupID, err)
	}

	// 成员列表缺失时绝不能整表写回，否则会清空现有成员
	if group.UserIDs == nil {
		return ErrMalformedGroup
	}

	for _, id := range group.UserIDs {
		if id == userID {
			s.log.Info("user already in managed group, skipping",
				zap.String("userId", userID),
				zap.String("groupId", groupID),
			)
			return nil
		}
	}

	members := append(append([]string{}, group.UserIDs...), userID)
	if err := s.api.SetGroupMembers(ctx, groupID, members); err != nil {
		return fmt.Errorf("failed to update group members: %w", err)
	}

	s.log.Info("added user to managed group",
		zap.String("userId", userID),
		zap.String("groupId", groupID),
	)
	return nil
}

// UserExists 判断用户名是否已存在于平台目录（大小写不敏感）。
func (s *DirectoryService) UserExists(ctx context.Context, username string) (bool, error) {
	user, err := s.api.GetUserByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}
