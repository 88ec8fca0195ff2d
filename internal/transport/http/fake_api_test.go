package httptransport

import (
	"context"
	"errors"

	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/hostapi"
)

// stubAPI 是 hostapi.API 的测试替身，未注入的方法返回 errStubCall。
type stubAPI struct {
	apiRootFn           func(ctx context.Context) (map[string]any, error)
	listUsersFn         func(ctx context.Context, search string) ([]domain.User, error)
	getUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	createUserFn        func(ctx context.Context, req hostapi.CreateUserRequest) (*domain.User, error)
	updateUserFn        func(ctx context.Context, userID string, req hostapi.UpdateUserRequest) error
	deleteUserFn        func(ctx context.Context, userID string) error
	setUserActiveFn     func(ctx context.Context, userID string, active bool) error
	setPasswordFn       func(ctx context.Context, userID, password string) error
	passwordResetLinkFn func(ctx context.Context, userID string) (string, error)
	searchGroupFn       func(ctx context.Context, name string) (*domain.Group, error)
	getGroupFn          func(ctx context.Context, groupID string) (*domain.Group, error)
	setGroupMembersFn   func(ctx context.Context, groupID string, userIDs []string) error
	listMailboxesFn     func(ctx context.Context, mailDomain string) ([]domain.Mailbox, error)
	createMailboxFn     func(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error)
	deleteMailboxFn     func(ctx context.Context, mailDomain, name string) error
	getMailboxFn        func(ctx context.Context, mailDomain, name string) (*domain.Mailbox, error)
}

var _ hostapi.API = (*stubAPI)(nil)

var errStubCall = errors.New("unexpected host API call")

func (s *stubAPI) APIRoot(ctx context.Context) (map[string]any, error) {
	if s.apiRootFn == nil {
		return nil, errStubCall
	}
	return s.apiRootFn(ctx)
}

func (s *stubAPI) ListUsers(ctx context.Context, search string) ([]domain.User, error) {
	if s.listUsersFn == nil {
		return nil, errStubCall
	}
	return s.listUsersFn(ctx, search)
}

func (s *stubAPI) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if s.getUserByUsernameFn == nil {
		return nil, errStubCall
	}
	return s.getUserByUsernameFn(ctx, username)
}

func (s *stubAPI) CreateUser(ctx context.Context, req hostapi.CreateUserRequest) (*domain.User, error) {
	if s.createUserFn == nil {
		return nil, errStubCall
	}
	return s.createUserFn(ctx, req)
}

func (s *stubAPI) UpdateUser(ctx context.Context, userID string, req hostapi.UpdateUserRequest) error {
	if s.updateUserFn == nil {
		return errStubCall
	}
	return s.updateUserFn(ctx, userID, req)
}

func (s *stubAPI) DeleteUser(ctx context.Context, userID string) error {
	if s.deleteUserFn == nil {
		return errStubCall
	}
	return s.deleteUserFn(ctx, userID)
}

func (s *stubAPI) SetUserActive(ctx context.Context, userID string, active bool) error {
	if s.setUserActiveFn == nil {
		return errStubCall
	}
	return s.setUserActiveFn(ctx, userID, active)
}

func (s *stubAPI) SetPassword(ctx context.Context, userID, password string) error {
	if s.setPasswordFn == nil {
		return errStubCall
	}
	return s.setPasswordFn(ctx, userID, password)
}

func (s *stubAPI) PasswordResetLink(ctx context.Context, userID string) (string, error) {
	if s.passwordResetLinkFn == nil {
		return "", errStubCall
	}
	return s.passwordResetLinkFn(ctx, userID)
}

func (s *stubAPI) SearchGroup(ctx context.Context, name string) (*domain.Group, error) {
	if s.searchGroupFn == nil {
		return nil, errStubCall
	}
	return s.searchGroupFn(ctx, name)
}

func (s *stubAPI) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	if s.getGroupFn == nil {
		return nil, errStubCall
	}
	return s.getGroupFn(ctx, groupID)
}

func (s *stubAPI) SetGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	if s.setGroupMembersFn == nil {
		return errStubCall
	}
	return s.setGroupMembersFn(ctx, groupID, userIDs)
}

func (s *stubAPI) ListMailboxes(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
	if s.listMailboxesFn == nil {
		return nil, errStubCall
	}
	return s.listMailboxesFn(ctx, mailDomain)
}

func (s *stubAPI) CreateMailbox(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error) {
	if s.createMailboxFn == nil {
		return nil, errStubCall
	}
	return s.createMailboxFn(ctx, mailDomain, name, ownerID, storageQuota)
}

func (s *stubAPI) DeleteMailbox(ctx context.Context, mailDomain, name string) error {
	if s.deleteMailboxFn == nil {
		return errStubCall
	}
	return s.deleteMailboxFn(ctx, mailDomain, name)
}

func (s *stubAPI) GetMailbox(ctx context.Context, mailDomain, name string) (*domain.Mailbox, error) {
	if s.getMailboxFn == nil {
		return nil, errStubCall
	}
	return s.getMailboxFn(ctx, mailDomain, name)
}
