package service

import (
	"context"
	"errors"
	"sync/atomic"

	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/hostapi"
)

// fakeAPI 是 hostapi.API 的测试替身，未注入的方法返回 errUnexpectedCall。
type fakeAPI struct {
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

	searchGroupCalls int32
}

var _ hostapi.API = (*fakeAPI)(nil)

var errUnexpectedCall = errors.New("unexpected host API call")

func (f *fakeAPI) APIRoot(ctx context.Context) (map[string]any, error) {
	return nil, errUnexpectedCall
}

func (f *fakeAPI) ListUsers(ctx context.Context, search string) ([]domain.User, error) {
	if f.listUsersFn == nil {
		return nil, errUnexpectedCall
	}
	return f.listUsersFn(ctx, search)
}

func (f *fakeAPI) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.getUserByUsernameFn == nil {
		return nil, errUnexpectedCall
	}
	return f.getUserByUsernameFn(ctx, username)
}

func (f *fakeAPI) CreateUser(ctx context.Context, req hostapi.CreateUserRequest) (*domain.User, error) {
	if f.createUserFn == nil {
		return nil, errUnexpectedCall
	}
	return f.createUserFn(ctx, req)
}

func (f *fakeAPI) UpdateUser(ctx context.Context, userID string, req hostapi.UpdateUserRequest) error {
	if f.updateUserFn == nil {
		return errUnexpectedCall
	}
	return f.updateUserFn(ctx, userID, req)
}

func (f *fakeAPI) DeleteUser(ctx context.Context, userID string) error {
	if f.deleteUserFn == nil {
		return errUnexpectedCall
	}
	return f.deleteUserFn(ctx, userID)
}

func (f *fakeAPI) SetUserActive(ctx context.Context, userID string, active bool) error {
	if f.setUserActiveFn == nil {
		return errUnexpectedCall
	}
	return f.setUserActiveFn(ctx, userID, active)
}

func (f *fakeAPI) SetPassword(ctx context.Context, userID, password string) error {
	if f.setPasswordFn == nil {
		return errUnexpectedCall
	}
	return f.setPasswordFn(ctx, userID, password)
}

func (f *fakeAPI) PasswordResetLink(ctx context.Context, userID string) (string, error) {
	if f.passwordResetLinkFn == nil {
		return "", errUnexpectedCall
	}
	return f.passwordResetLinkFn(ctx, userID)
}

func (f *fakeAPI) SearchGroup(ctx context.Context, name string) (*domain.Group, error) {
	atomic.AddInt32(&f.searchGroupCalls, 1)
	if f.searchGroupFn == nil {
		return nil, errUnexpectedCall
	}
	return f.searchGroupFn(ctx, name)
}

func (f *fakeAPI) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	if f.getGroupFn == nil {
		return nil, errUnexpectedCall
	}
	return f.getGroupFn(ctx, groupID)
}

func (f *fakeAPI) SetGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	if f.setGroupMembersFn == nil {
		return errUnexpectedCall
	}
	return f.setGroupMembersFn(ctx, groupID, userIDs)
}

func (f *fakeAPI) ListMailboxes(ctx context.Context, mailDomain string) ([]domain.Mailbox, error) {
	if f.listMailboxesFn == nil {
		return nil, errUnexpectedCall
	}
	return f.listMailboxesFn(ctx, mailDomain)
}

func (f *fakeAPI) CreateMailbox(ctx context.Context, mailDomain, name, ownerID string, storageQuota int64) (*domain.Mailbox, error) {
	if f.createMailboxFn == nil {
		return nil, errUnexpectedCall
	}
	return f.createMailboxFn(ctx, mailDomain, name, ownerID, storageQuota)
}

func (f *fakeAPI) DeleteMailbox(ctx context.Context, mailDomain, name string) error {
	if f.deleteMailboxFn == nil {
		return errUnexpectedCall
	}
	return f.deleteMailboxFn(ctx, mailDomain, name)
}

func (f *fakeAPI) GetMailbox(ctx context.Context, mailDomain, name string) (*domain.Mailbox, error) {
	if f.getMailboxFn == nil {
		return nil, errUnexpectedCall
	}
	return f.getMailboxFn(ctx, mailDomain, name)
}
