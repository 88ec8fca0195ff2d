package badger

import (
	"encoding/json"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/storage"
)

// 键空间布局：
//
//	audit:<RFC3339 时间戳>:<uuid> -> AuditEntry (JSON)
//	password:<username>           -> StoredPassword (JSON)
//
// RFC3339 的字典序即时间序，前缀反向迭代即可得到降序审计日志。
var (
	auditPrefix    = []byte("audit:")
	passwordPrefix = []byte("password:")
)

// Store 基于 BadgerDB 的嵌入式存储实现，单机部署的默认选择。
type Store struct {
	db *badger.DB
}

// NewStore 打开（必要时创建）path 目录下的 BadgerDB 数据库。
func NewStore(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func auditKey(timestamp, id string) []byte {
	return []byte("audit:" + timestamp + ":" + id)
}

func passwordKey(username string) []byte {
	return []byte("password:" + username)
}

// SaveAuditEntry 追加一条审计记录。
func (s *Store) SaveAuditEntry(entry *domain.AuditEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(entry.Timestamp, entry.ID), value)
	})
}

// ListAuditEntries 按时间戳降序返回审计记录，limit <= 0 表示不限制。
func (s *Store) ListAuditEntries(limit int) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = auditPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// 反向迭代需要从前缀区间的末端开始
		seek := append(append([]byte{}, auditPrefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(auditPrefix); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var entry domain.AuditEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("failed to decode audit entry: %w", err)
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = make([]domain.AuditEntry, 0)
	}
	return entries, nil
}

// SavePassword 写入凭证记录，同名用户覆盖旧记录。
func (s *Store) SavePassword(record *domain.StoredPassword) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode password record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(passwordKey(record.Username), value)
	})
}

// GetPassword 按用户名获取凭证记录。
func (s *Store) GetPassword(username string) (*domain.StoredPassword, error) {
	var record domain.StoredPassword

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(passwordKey(username))
		if err == badger.ErrKeyNotFound {
			return storage.ErrPasswordNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPasswords 按时间戳降序返回全部凭证记录。
func (s *Store) ListPasswords() ([]domain.StoredPassword, error) {
	records := make([]domain.StoredPassword, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = passwordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(passwordPrefix); it.ValidForPrefix(passwordPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var record domain.StoredPassword
				if err := json.Unmarshal(val, &record); err != nil {
					return fmt.Errorf("failed to decode password record: %w", err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// password 键按用户名排列，展示需要按时间降序
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// Close 关闭数据库。
func (s *Store) Close() error {
	return s.db.Close()
}

// Health 检查数据库是否可读。
func (s *Store) Health() error {
	return s.db.View(func(txn *badger.Txn) error { return nil })
}
