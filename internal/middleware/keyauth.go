package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 审计与高危操作的附加请求头
const (
	HeaderAuditKey       = "X-Audit-Key"
	HeaderMasterPassword = "X-Master-Password"
)

// RequireAuditKey 审计访问门：请求头必须携带配置的审计密钥。
//
// 未配置密钥时审计接口整体关闭（403），而不是放行。
func RequireAuditKey(auditKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auditKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "audit access is not configured",
			})
			return
		}

		provided := c.GetHeader(HeaderAuditKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(auditKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid audit key",
			})
			return
		}

		c.Next()
	}
}

// RequireMasterPassword 高危操作门：删除用户等操作要求二次口令。
//
// 未配置主口令时对应操作整体关闭。
func RequireMasterPassword(masterPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if masterPassword == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "destructive operations are not configured",
			})
			return
		}

		provided := c.GetHeader(HeaderMasterPassword)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(masterPassword)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid master password",
			})
			return
		}

		c.Next()
	}
}
