package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvKeys = []string{
	"MAILPANEL_HOST_API_BASE_URL",
	"MAILPANEL_HOST_API_TOKEN",
	"MAILPANEL_HOST_API_TIMEOUT",
	"MAILPANEL_PANEL_GROUP_NAME",
	"MAILPANEL_PANEL_EXCLUDE_ACCOUNTS",
	"MAILPANEL_PANEL_MAIL_DOMAINS",
	"MAILPANEL_PANEL_BRAND_NAME",
	"MAILPANEL_DASHBOARD_USERNAME",
	"MAILPANEL_DASHBOARD_PASSWORD",
	"MAILPANEL_DASHBOARD_AUDIT_KEY",
	"MAILPANEL_SERVER_HOST",
	"MAILPANEL_SERVER_PORT",
	"MAILPANEL_STORAGE_TYPE",
	"MAILPANEL_LOG_LEVEL",
}

// setRequiredEnv 设置最小可用配置
func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("MAILPANEL_HOST_API_BASE_URL", "https://my.example.com")
	os.Setenv("MAILPANEL_HOST_API_TOKEN", "test-token")
	os.Setenv("MAILPANEL_PANEL_GROUP_NAME", "managed-users")
	os.Setenv("MAILPANEL_DASHBOARD_USERNAME", "admin")
	os.Setenv("MAILPANEL_DASHBOARD_PASSWORD", "secret")
}

func TestLoad(t *testing.T) {
	// 保存原始环境变量，测试后恢复
	originalEnvs := make(map[string]string)
	for _, key := range testEnvKeys {
		originalEnvs[key] = os.Getenv(key)
	}
	defer func() {
		for key, value := range originalEnvs {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	t.Run("加载默认配置成功", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)

		cfg, err := Load()

		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8020, cfg.Server.Port)
		assert.Equal(t, "https://my.example.com", cfg.HostAPI.BaseURL)
		assert.Equal(t, "test-token", cfg.HostAPI.Token)
		assert.Equal(t, 30*time.Second, cfg.HostAPI.Timeout)
		assert.Equal(t, "managed-users", cfg.Panel.GroupName)
		assert.Empty(t, cfg.Panel.ExcludeAccounts)
		assert.Empty(t, cfg.Panel.MailDomains)
		assert.Equal(t, "User Manager", cfg.Panel.BrandName)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "badger", cfg.Storage.Type)
	})

	t.Run("加载自定义配置成功", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Setenv("MAILPANEL_SERVER_HOST", "127.0.0.1")
		os.Setenv("MAILPANEL_SERVER_PORT", "9090")
		os.Setenv("MAILPANEL_PANEL_EXCLUDE_ACCOUNTS", "svc-bot, admin-old")
		os.Setenv("MAILPANEL_PANEL_MAIL_DOMAINS", "A.com,b.com")
		os.Setenv("MAILPANEL_PANEL_BRAND_NAME", "Acme Mail")
		os.Setenv("MAILPANEL_HOST_API_TIMEOUT", "10s")
		os.Setenv("MAILPANEL_STORAGE_TYPE", "memory")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"svc-bot", "admin-old"}, cfg.Panel.ExcludeAccounts)
		// 域名统一转为小写
		assert.Equal(t, []string{"a.com", "b.com"}, cfg.Panel.MailDomains)
		assert.Equal(t, "Acme Mail", cfg.Panel.BrandName)
		assert.Equal(t, 10*time.Second, cfg.HostAPI.Timeout)
		assert.Equal(t, "memory", cfg.Storage.Type)
	})

	t.Run("缺少宿主API地址时报错", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Unsetenv("MAILPANEL_HOST_API_BASE_URL")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "host_api.base_url")
	})

	t.Run("缺少受管组名时报错", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Unsetenv("MAILPANEL_PANEL_GROUP_NAME")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("缺少面板账号时报错", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Unsetenv("MAILPANEL_DASHBOARD_PASSWORD")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("非法的宿主API地址时报错", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Setenv("MAILPANEL_HOST_API_BASE_URL", "ftp://wrong")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("逗号分隔的多个API地址仅取第一个", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Setenv("MAILPANEL_HOST_API_BASE_URL", "https://a.example.com/, https://b.example.com")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "https://a.example.com", cfg.HostAPI.BaseURL)
	})

	t.Run("不支持的存储类型时报错", func(t *testing.T) {
		for _, key := range testEnvKeys {
			os.Unsetenv(key)
		}
		setRequiredEnv(t)
		os.Setenv("MAILPANEL_STORAGE_TYPE", "cassandra")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}
