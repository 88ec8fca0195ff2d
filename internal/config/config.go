package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8020
}

// HostAPIConfig 定义宿主平台管理 API 的连接配置
type HostAPIConfig struct {
	BaseURL string        // 宿主平台 API 地址，必填
	Token   string        // Bearer 认证令牌，必填
	Timeout time.Duration // 单次请求超时，默认 30s
}

// PanelConfig 定义面板的核心业务配置
type PanelConfig struct {
	GroupName       string   // 受管组名称，必填；组成员即为面板可管理的用户集合
	ExcludeAccounts []string // 从所有列表中隐藏的用户名（按用户名精确匹配）
	MailDomains     []string // 有效邮件域名列表，按域名聚合邮箱
	BrandName       string   // 前端展示的品牌名称，默认 "User Manager"
}

// DashboardAuthConfig 定义面板访问的认证配置
type DashboardAuthConfig struct {
	Username       string // Basic Auth 用户名，必填
	Password       string // Basic Auth 密码（明文或 bcrypt 哈希），必填
	AuditKey       string // 审计日志访问密钥，留空则审计接口不可用
	MasterPassword string // 删除用户所需的主密码，留空则删除接口不可用
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空则仅输出到控制台
}

// StorageConfig 定义审计存储后端配置
type StorageConfig struct {
	Type            string        // 存储类型: "memory"、"badger"、"redis"、"mysql" 或 "postgres"
	Path            string        // badger 数据目录，默认 "./data/audit"
	DSN             string        // mysql/postgres 连接字符串
	MaxOpenConns    int           // SQL 最大打开连接数，默认 25
	MaxIdleConns    int           // SQL 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // SQL 连接最大生命周期，默认 5 分钟
}

// RedisConfig 定义 Redis 存储后端配置
type RedisConfig struct {
	Address  string // Redis 服务地址，格式 "host:port"，默认 "localhost:6379"
	Password string // Redis 认证密码，留空表示无密码
	DB       int    // Redis 数据库编号，默认 0
}

// StaticConfig 定义静态资源服务配置
type StaticConfig struct {
	Dir string // 前端静态文件目录，默认 "./static"
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig
	HostAPI   HostAPIConfig
	Panel     PanelConfig
	Dashboard DashboardAuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Static    StaticConfig
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: MAILPANEL_
// 例如: MAILPANEL_HOST_API_BASE_URL, MAILPANEL_PANEL_GROUP_NAME
//
// 缺失必填项（宿主 API 地址/令牌、受管组名、面板账号）视为致命配置错误，
// 返回 error 由调用方终止启动。
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetEnvPrefix("mailpanel")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8020)
	viper.SetDefault("host_api.base_url", "")
	viper.SetDefault("host_api.token", "")
	viper.SetDefault("host_api.timeout", "30s")
	viper.SetDefault("panel.group_name", "")
	viper.SetDefault("panel.exclude_accounts", "")
	viper.SetDefault("panel.mail_domains", "")
	viper.SetDefault("panel.brand_name", "User Manager")
	viper.SetDefault("dashboard.username", "")
	viper.SetDefault("dashboard.password", "")
	viper.SetDefault("dashboard.audit_key", "")
	viper.SetDefault("dashboard.master_password", "")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("storage.type", "badger")
	viper.SetDefault("storage.path", "./data/audit")
	viper.SetDefault("storage.dsn", "")
	viper.SetDefault("storage.max_open_conns", 25)
	viper.SetDefault("storage.max_idle_conns", 5)
	viper.SetDefault("storage.conn_max_lifetime", "5m")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("static.dir", "./static")

	baseURL := strings.TrimSpace(viper.GetString("host_api.base_url"))
	// 兼容逗号分隔的多地址配置，仅取第一个
	if idx := strings.Index(baseURL, ","); idx >= 0 {
		baseURL = strings.TrimSpace(baseURL[:idx])
	}
	if baseURL == "" {
		return nil, fmt.Errorf("host_api.base_url is required (set MAILPANEL_HOST_API_BASE_URL)")
	}
	if !strings.HasPrefix(baseURL, "http") {
		return nil, fmt.Errorf("invalid host_api.base_url: %q", baseURL)
	}

	token := viper.GetString("host_api.token")
	if token == "" {
		return nil, fmt.Errorf("host_api.token is required (set MAILPANEL_HOST_API_TOKEN)")
	}

	timeout, err := time.ParseDuration(viper.GetString("host_api.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid host_api.timeout: %w", err)
	}

	groupName := viper.GetString("panel.group_name")
	if groupName == "" {
		return nil, fmt.Errorf("panel.group_name is required (set MAILPANEL_PANEL_GROUP_NAME)")
	}

	dashUser := viper.GetString("dashboard.username")
	dashPass := viper.GetString("dashboard.password")
	if dashUser == "" || dashPass == "" {
		return nil, fmt.Errorf("dashboard.username and dashboard.password are required for basic auth")
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("storage.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	storageType := viper.GetString("storage.type")
	switch storageType {
	case "memory", "badger", "redis", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported storage.type: %q (supported: memory, badger, redis, mysql, postgres)", storageType)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		HostAPI: HostAPIConfig{
			BaseURL: strings.TrimRight(baseURL, "/"),
			Token:   token,
			Timeout: timeout,
		},
		Panel: PanelConfig{
			GroupName:       groupName,
			ExcludeAccounts: parseList(viper.GetString("panel.exclude_accounts")),
			MailDomains:     parseDomains(viper.GetString("panel.mail_domains")),
			BrandName:       viper.GetString("panel.brand_name"),
		},
		Dashboard: DashboardAuthConfig{
			Username:       dashUser,
			Password:       dashPass,
			AuditKey:       viper.GetString("dashboard.audit_key"),
			MasterPassword: viper.GetString("dashboard.master_password"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		Storage: StorageConfig{
			Type:            storageType,
			Path:            viper.GetString("storage.path"),
			DSN:             viper.GetString("storage.dsn"),
			MaxOpenConns:    viper.GetInt("storage.max_open_conns"),
			MaxIdleConns:    viper.GetInt("storage.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Static: StaticConfig{
			Dir: viper.GetString("static.dir"),
		},
	}

	return cfg, nil
}

// parseDomains 将逗号分隔的域名字符串解析为小写域名数组
func parseDomains(value string) []string {
	out := parseList(value)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

// parseList 将逗号分隔的字符串解析为字符串切片，已去除空白字符
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（用于从 backend/ 子目录运行的情况）
//
// 文件不存在时静默失败（.env 是可选的），已存在的环境变量优先级更高。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
