package storage

import (
	"errors"

	"mailpanel/backend/internal/domain"
)

var (
	// ErrPasswordNotFound 凭证记录未找到错误
	ErrPasswordNotFound = errors.New("stored password not found")
)

// AuditRepository 定义审计日志数据存取操作。
//
// 审计日志只追加，检索按时间戳降序；limit <= 0 表示不限制条数。
type AuditRepository interface {
	SaveAuditEntry(entry *domain.AuditEntry) error
	ListAuditEntries(limit int) ([]domain.AuditEntry, error)
}

// PasswordRepository 定义凭证留存数据存取操作。
//
// 同一用户名重复写入时覆盖旧记录（last write wins）。
type PasswordRepository interface {
	SavePassword(record *domain.StoredPassword) error
	GetPassword(username string) (*domain.StoredPassword, error)
	ListPasswords() ([]domain.StoredPassword, error)
}

// Store 定义完整的存储接口。
type Store interface {
	AuditRepository
	PasswordRepository

	// 工具方法
	Close() error
	Health() error
}
