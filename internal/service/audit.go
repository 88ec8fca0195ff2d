package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/storage"
)

// AuditService 封装审计日志与凭证留存操作。
//
// 凭证以明文留存供管理员找回，访问受审计密钥保护；
// 这是从源系统继承的运维决策，安全性权衡见 DESIGN.md。
type AuditService struct {
	store storage.Store
	log   *zap.Logger
}

// NewAuditService 创建审计业务服务。
func NewAuditService(store storage.Store, log *zap.Logger) *AuditService {
	return &AuditService{store: store, log: log}
}

// Record 追加一条审计记录并同步输出到应用日志。
func (s *AuditService) Record(action string) error {
	entry := &domain.AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Action:    action,
	}

	if err := s.store.SaveAuditEntry(entry); err != nil {
		return fmt.Errorf("failed to save audit entry: %w", err)
	}

	s.log.Info("[AUDIT] "+action, zap.String("auditId", entry.ID))
	return nil
}

// Entries 按时间戳降序返回审计记录，limit <= 0 表示不限制。
func (s *AuditService) Entries(limit int) ([]domain.AuditEntry, error) {
	return s.store.ListAuditEntries(limit)
}

// StorePassword 留存一条凭证记录，同名用户覆盖旧记录。
func (s *AuditService) StorePassword(username, email, password string) error {
	record := &domain.StoredPassword{
		Username:  username,
		Email:     email,
		Password:  password,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.store.SavePassword(record); err != nil {
		return fmt.Errorf("failed to save password record: %w", err)
	}
	return nil
}

// StoredPasswords 按时间戳降序返回全部凭证记录。
func (s *AuditService) StoredPasswords() ([]domain.StoredPassword, error) {
	return s.store.ListPasswords()
}

// StoredPassword 返回指定用户名的凭证记录，不存在时返回
// storage.ErrPasswordNotFound。
func (s *AuditService) StoredPassword(username string) (*domain.StoredPassword, error) {
	return s.store.GetPassword(username)
}
