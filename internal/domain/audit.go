package domain

// AuditEntry 表示一条管理操作的审计记录。
//
// 仅追加，无删除路径；检索按 Timestamp 字符串降序排列
// （RFC3339/ISO-8601 的字典序即时间序）。
type AuditEntry struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Timestamp string `json:"timestamp" gorm:"type:varchar(40);index"`
	Action    string `json:"action" gorm:"type:text"`
}

// TableName 指定 GORM 表名
func (AuditEntry) TableName() string {
	return "audit_entries"
}

// StoredPassword 表示一条管理员可恢复的凭证记录。
//
// 按 Username 覆盖写入（last write wins），非追加。明文保留是从源系统
// 继承的运维决策，访问被审计密钥保护；见 DESIGN.md 的安全性说明。
type StoredPassword struct {
	Username  string `json:"username" gorm:"primaryKey;type:varchar(255)"`
	Email     string `json:"email" gorm:"type:varchar(255)"`
	Password  string `json:"password" gorm:"type:varchar(255)"`
	Timestamp string `json:"timestamp" gorm:"type:varchar(40);index"`
}

// TableName 指定 GORM 表名
func (StoredPassword) TableName() string {
	return "stored_passwords"
}
