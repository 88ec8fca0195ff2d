package memory

import (
	"sort"
	"sync"

	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/storage"
)

// Store 使用内存保存审计日志与凭证记录，主要用于开发验证。
type Store struct {
	mu        sync.RWMutex
	entries   []domain.AuditEntry
	passwords map[string]*domain.StoredPassword // username -> record
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		entries:   make([]domain.AuditEntry, 0),
		passwords: make(map[string]*domain.StoredPassword),
	}
}

// SaveAuditEntry 追加一条审计记录。
func (s *Store) SaveAuditEntry(entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	return nil
}

// ListAuditEntries 按时间戳降序返回审计记录。
func (s *Store) ListAuditEntries(limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	out := make([]domain.AuditEntry, len(s.entries))
	copy(out, s.entries)
	s.mu.RUnlock()

	// RFC3339 时间戳的字典序即时间序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SavePassword 写入凭证记录，同名用户覆盖旧记录。
func (s *Store) SavePassword(record *domain.StoredPassword) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.passwords[record.Username] = &clone
	return nil
}

// GetPassword 按用户名获取凭证记录。
func (s *Store) GetPassword(username string) (*domain.StoredPassword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.passwords[username]
	if !ok {
		return nil, storage.ErrPasswordNotFound
	}
	clone := *record
	return &clone, nil
}

// ListPasswords 按时间戳降序返回全部凭证记录。
func (s *Store) ListPasswords() ([]domain.StoredPassword, error) {
	s.mu.RLock()
	out := make([]domain.StoredPassword, 0, len(s.passwords))
	for _, record := range s.passwords {
		out = append(out, *record)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out, nil
}

// Close 实现 storage.Store 接口，无资源需要释放。
func (s *Store) Close() error {
	return nil
}

// Health 实现 storage.Store 接口。
func (s *Store) Health() error {
	return nil
}
