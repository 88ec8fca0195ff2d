package sql

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailpanel/backend/internal/domain"
	"mailpanel/backend/internal/storage"
)

// Store SQL 数据库存储实现（支持 MySQL 5.7+ 和 PostgreSQL）
type Store struct {
	db         *sql.DB
	gormDB     *gorm.DB // GORM实例，用于迁移
	driverName string   // "mysql" or "postgres"
}

// NewStore 创建SQL数据库存储
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 初始化GORM（仅用于自动迁移）
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var gormDB *gorm.DB
	if driverName == "mysql" {
		gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: db}), gormConfig)
	} else {
		gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: db}), gormConfig)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	store := &Store{
		db:         db,
		gormDB:     gormDB,
		driverName: driverName,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate 执行数据库迁移（使用GORM AutoMigrate）
func (s *Store) migrate() error {
	if s.gormDB == nil {
		return nil
	}

	return s.gormDB.AutoMigrate(
		&domain.AuditEntry{},
		&domain.StoredPassword{},
	)
}

// placeholder 根据数据库类型返回占位符
func (s *Store) placeholder(n int) string {
	if s.driverName == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SaveAuditEntry 追加一条审计记录。
func (s *Store) SaveAuditEntry(entry *domain.AuditEntry) error {
	query := fmt.Sprintf(
		"INSERT INTO audit_entries (id, timestamp, action) VALUES (%s, %s, %s)",
		s.placeholder(1), s.placeholder(2), s.placeholder(3),
	)
	_, err := s.db.Exec(query, entry.ID, entry.Timestamp, entry.Action)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries 按时间戳降序返回审计记录，limit <= 0 表示不限制。
func (s *Store) ListAuditEntries(limit int) ([]domain.AuditEntry, error) {
	query := "SELECT id, timestamp, action FROM audit_entries ORDER BY timestamp DESC"
	args := []interface{}{}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %s", s.placeholder(1))
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Action); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// SavePassword 写入凭证记录，同名用户覆盖旧记录。
func (s *Store) SavePassword(record *domain.StoredPassword) error {
	var query string
	if s.driverName == "postgres" {
		query = `
			INSERT INTO stored_passwords (username, email, password, timestamp)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username) DO UPDATE SET
				email = EXCLUDED.email,
				password = EXCLUDED.password,
				timestamp = EXCLUDED.timestamp
		`
	} else {
		query = `
			INSERT INTO stored_passwords (username, email, password, timestamp)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				email = VALUES(email),
				password = VALUES(password),
				timestamp = VALUES(timestamp)
		`
	}

	_, err := s.db.Exec(query, record.Username, record.Email, record.Password, record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert password record: %w", err)
	}
	return nil
}

// GetPassword 按用户名获取凭证记录。
func (s *Store) GetPassword(username string) (*domain.StoredPassword, error) {
	query := fmt.Sprintf(
		"SELECT username, email, password, timestamp FROM stored_passwords WHERE username = %s",
		s.placeholder(1),
	)

	var record domain.StoredPassword
	err := s.db.QueryRow(query, username).Scan(
		&record.Username, &record.Email, &record.Password, &record.Timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrPasswordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query password record: %w", err)
	}
	return &record, nil
}

// ListPasswords 按时间戳降序返回全部凭证记录。
func (s *Store) ListPasswords() ([]domain.StoredPassword, error) {
	rows, err := s.db.Query(
		"SELECT username, email, password, timestamp FROM stored_passwords ORDER BY timestamp DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query password records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.StoredPassword, 0)
	for rows.Next() {
		var record domain.StoredPassword
		if err := rows.Scan(&record.Username, &record.Email, &record.Password, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan password record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health 检查数据库健康状态
func (s *Store) Health() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Ping()
}
