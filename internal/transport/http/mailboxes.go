package httptransport

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type createMailboxRequest struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	OwnerID      string `json:"ownerId"`
	StorageQuota int64  `json:"storageQuota"`
}

// listMailboxes godoc
// @Summary 获取面板可见的邮箱列表
// @Description 聚合全部有效域名的邮箱，隐藏排除账户与未知属主的邮箱
// @Tags Mailboxes
// @Produce json
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/mailboxes [get]
func (h *Handler) listMailboxes(c *gin.Context) {
	mailboxes, err := h.mailboxes.ListVisibleMailboxes(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list mailboxes", zap.Error(err))
		respondServiceError(c, err, MsgMailboxListFailed)
		return
	}
	Success(c, mailboxes)
}

// listMailboxesForUser godoc
// @Summary 获取指定用户的邮箱列表
// @Tags Mailboxes
// @Produce json
// @Param userId path string true "用户ID"
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/mailboxes/user/{userId} [get]
func (h *Handler) listMailboxesForUser(c *gin.Context) {
	userID := c.Param("userId")

	mailboxes, err := h.mailboxes.ListMailboxesForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to list mailboxes for user",
			zap.String("userId", userID),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgMailboxListFailed)
		return
	}
	Success(c, mailboxes)
}

// createMailbox godoc
// @Summary 在指定域名下创建邮箱
// @Tags Mailboxes
// @Accept json
// @Produce json
// @Param request body createMailboxRequest true "邮箱参数"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/mailboxes [post]
func (h *Handler) createMailbox(c *gin.Context) {
	var req createMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	if req.Name == "" || req.Domain == "" || req.OwnerID == "" {
		BadRequest(c, "name、domain、ownerId 均为必填项")
		return
	}

	mailbox, err := h.mailboxes.CreateMailbox(c.Request.Context(), req.Domain, req.Name, req.OwnerID, req.StorageQuota)
	if err != nil {
		h.log.Error("failed to create mailbox",
			zap.String("mailbox", req.Name+"@"+req.Domain),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgMailboxCreateFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Created mailbox '%s@%s'", req.Name, req.Domain))
	h.metrics.MailboxesCreated.Inc()
	Created(c, mailbox)
}

// deleteMailbox godoc
// @Summary 删除邮箱
// @Description 只移除邮箱本身，不删除其中的邮件
// @Tags Mailboxes
// @Produce json
// @Param domain path string true "域名"
// @Param name path string true "邮箱名"
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/mailboxes/{domain}/{name} [delete]
func (h *Handler) deleteMailbox(c *gin.Context) {
	mailDomain := c.Param("domain")
	name := c.Param("name")

	if err := h.mailboxes.DeleteMailbox(c.Request.Context(), mailDomain, name); err != nil {
		h.log.Error("failed to delete mailbox",
			zap.String("mailbox", name+"@"+mailDomain),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgMailboxDeleteFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Deleted mailbox '%s@%s'", name, mailDomain))
	h.metrics.MailboxesDeleted.Inc()
	Success(c, gin.H{"success": true})
}

// mailboxExists godoc
// @Summary 检查邮箱是否存在
// @Description 上游 404 映射为 exists=false，不作为错误返回
// @Tags Mailboxes
// @Produce json
// @Param domain path string true "域名"
// @Param name path string true "邮箱名"
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/mailboxes/{domain}/{name}/exists [get]
func (h *Handler) mailboxExists(c *gin.Context) {
	mailDomain := c.Param("domain")
	name := c.Param("name")

	exists, err := h.mailboxes.MailboxExists(c.Request.Context(), mailDomain, name)
	if err != nil {
		h.log.Error("failed to check mailbox",
			zap.String("mailbox", name+"@"+mailDomain),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgMailboxCheckFailed)
		return
	}
	Success(c, gin.H{"exists": exists})
}
