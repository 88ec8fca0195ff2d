package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/monitoring"
)

// BasicAuth 面板管理入口的 HTTP Basic 认证中间件。
//
// 密码既可以配置为明文（常数时间比较），也可以配置为 bcrypt 哈希
// （以 "$2" 开头时自动识别）。认证失败经全局限流器削峰，
// 阻止针对面板口令的暴力尝试。
func BasicAuth(cfg *config.DashboardAuthConfig, log *zap.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	// 失败尝试限流：每秒 1 次，突发 5 次
	failLimiter := rate.NewLimiter(rate.Every(time.Second), 5)

	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if ok && verifyCredentials(cfg, username, password) {
			c.Next()
			return
		}

		if metrics != nil {
			metrics.RecordAuthFailure()
		}
		log.Warn("dashboard authentication failed",
			zap.String("ip", c.ClientIP()),
			zap.String("path", c.Request.URL.Path),
		)

		if !failLimiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many failed attempts",
			})
			return
		}

		c.Header("WWW-Authenticate", `Basic realm="mailpanel"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

func verifyCredentials(cfg *config.DashboardAuthConfig, username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1

	var passOK bool
	if strings.HasPrefix(cfg.Password, "$2") {
		passOK = bcrypt.CompareHashAndPassword([]byte(cfg.Password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
	}

	return userOK && passOK
}
