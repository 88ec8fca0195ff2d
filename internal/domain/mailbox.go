package domain

// Mailbox 表示宿主平台上的邮箱记录。
//
// 邮箱的存在性由复合键 (domain, name) 决定。宿主 API 按域名列出邮箱且
// 响应中不含域名字段，因此每条记录必须在聚合时打上来源域名。
type Mailbox struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	OwnerID      string `json:"ownerId"`
	OwnerType    string `json:"ownerType,omitempty"`
	Active       bool   `json:"active"`
	StorageQuota int64  `json:"storageQuota,omitempty"`
}

// Address 返回完整邮箱地址 name@domain。
func (m Mailbox) Address() string {
	return m.Name + "@" + m.Domain
}
