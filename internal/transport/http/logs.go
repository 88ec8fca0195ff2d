package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailpanel/backend/internal/storage"
)

// listAuditLogs godoc
// @Summary 获取审计日志
// @Description 按时间戳降序返回全部管理操作记录，需要 X-Audit-Key
// @Tags Logs
// @Produce json
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 500 {object} Response
// @Router /api/logs [get]
func (h *Handler) listAuditLogs(c *gin.Context) {
	entries, err := h.audit.Entries(0)
	if err != nil {
		h.log.Error("failed to retrieve audit logs", zap.Error(err))
		InternalError(c, MsgAuditListFailed)
		return
	}
	Success(c, entries)
}

// listStoredPasswords godoc
// @Summary 获取留存的凭证记录
// @Description 按时间戳降序返回明文凭证记录，需要 X-Audit-Key
// @Tags Logs
// @Produce json
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 500 {object} Response
// @Router /api/logs/passwords [get]
func (h *Handler) listStoredPasswords(c *gin.Context) {
	records, err := h.audit.StoredPasswords()
	if err != nil {
		h.log.Error("failed to retrieve stored passwords", zap.Error(err))
		InternalError(c, MsgPasswordListFailed)
		return
	}
	Success(c, records)
}

// getStoredPassword godoc
// @Summary 获取单个用户的凭证记录
// @Description 按用户名精确查找留存的凭证，需要 X-Audit-Key
// @Tags Logs
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Router /api/logs/passwords/{username} [get]
func (h *Handler) getStoredPassword(c *gin.Context) {
	username := c.Param("username")

	record, err := h.audit.StoredPassword(username)
	if err != nil {
		if errors.Is(err, storage.ErrPasswordNotFound) {
			NotFound(c, GetErrorMessage(err))
			return
		}
		h.log.Error("failed to retrieve stored password",
			zap.String("username", username),
			zap.Error(err),
		)
		InternalError(c, MsgPasswordListFailed)
		return
	}
	Success(c, record)
}
