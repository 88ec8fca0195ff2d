package domain

// User 表示宿主平台上的用户身份记录。
//
// 用户由宿主平台持有，本系统从不落库，仅按 id/username 引用。
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	FallbackEmail string `json:"fallbackEmail,omitempty"`
	Active        bool   `json:"active"`
	Role          string `json:"role,omitempty"`
}

// Group 表示宿主平台上的用户组。
//
// 组按名称配置、解析一次得到 id 后按 id 操作；UserIDs 为成员 id 全量列表，
// 宿主 API 仅支持整表替换，不支持增量修改。
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds"`
}
