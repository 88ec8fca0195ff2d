package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getConfig godoc
// @Summary 获取面板配置
// @Description 返回品牌名与当前有效的邮件域名，供前端初始化
// @Tags Config
// @Produce json
// @Success 200 {object} Response
// @Router /api/config [get]
func (h *Handler) getConfig(c *gin.Context) {
	Success(c, gin.H{
		"domains":   h.mailboxes.ValidDomains(),
		"brandName": h.brandName,
	})
}

// discovery godoc
// @Summary 探测主机 API 根信息
// @Description 透传主机管理 API 的根响应，用于连通性诊断
// @Tags Config
// @Produce json
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/discovery [get]
func (h *Handler) discovery(c *gin.Context) {
	root, err := h.api.APIRoot(c.Request.Context())
	if err != nil {
		h.log.Error("API discovery failed", zap.Error(err))
		respondServiceError(c, err, MsgDiscoveryFailed)
		return
	}
	Success(c, root)
}
