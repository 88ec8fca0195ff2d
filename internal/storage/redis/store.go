package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/storage"
)

const (
	// auditKey 有序集合，member 为 JSON 序列化的审计记录，score 为 Unix 纳秒时间戳
	auditKey = "mailpanel:audit"
	// passwordKey 哈希表，field 为用户名，value 为 JSON 序列化的凭证记录
	passwordKey = "mailpanel:passwords"

	opTimeout = 3 * time.Second
)

// Store 基于 Redis 的存储实现，适合多实例共享审计数据的部署。
type Store struct {
	rdb *goredis.Client
}

// NewStore 创建 Redis 存储并验证连通性。
func NewStore(cfg *config.RedisConfig) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// SaveAuditEntry 追加一条审计记录。
func (s *Store) SaveAuditEntry(entry *domain.AuditEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}

	score := float64(time.Now().UnixNano())
	if ts, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
		score = float64(ts.UnixNano())
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.rdb.ZAdd(ctx, auditKey, goredis.Z{Score: score, Member: value}).Err()
}

// ListAuditEntries 按时间戳降序返回审计记录，limit <= 0 表示不限制。
func (s *Store) ListAuditEntries(limit int) ([]domain.AuditEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	values, err := s.rdb.ZRevRange(ctx, auditKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(values))
	for _, value := range values {
		var entry domain.AuditEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SavePassword 写入凭证记录，同名用户覆盖旧记录。
func (s *Store) SavePassword(record *domain.StoredPassword) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode password record: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.rdb.HSet(ctx, passwordKey, record.Username, value).Err()
}

// GetPassword 按用户名获取凭证记录。
func (s *Store) GetPassword(username string) (*domain.StoredPassword, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := s.rdb.HGet(ctx, passwordKey, username).Result()
	if err == goredis.Nil {
		return nil, storage.ErrPasswordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password record: %w", err)
	}

	var record domain.StoredPassword
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("failed to decode password record: %w", err)
	}
	return &record, nil
}

// ListPasswords 按时间戳降序返回全部凭证记录。
func (s *Store) ListPasswords() ([]domain.StoredPassword, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	values, err := s.rdb.HGetAll(ctx, passwordKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list password records: %w", err)
	}

	records := make([]domain.StoredPassword, 0, len(values))
	for _, value := range values {
		var record domain.StoredPassword
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, fmt.Errorf("failed to decode password record: %w", err)
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// Close 关闭 Redis 连接。
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Health 检查 Redis 连通性。
func (s *Store) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.rdb.Ping(ctx).Err()
}
