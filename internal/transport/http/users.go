package httptransport

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailpanel/backend/internal/hostapi"
)

type createUserRequest struct {
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	FallbackEmail string `json:"fallbackEmail"`
	CreateMailbox bool   `json:"createMailbox"`
	MailboxName   string `json:"mailboxName"`
}

type updateUserRequest struct {
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	FallbackEmail string `json:"fallbackEmail"`
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// listUsers godoc
// @Summary 获取托管用户列表
// @Description 返回托管组内、排除名单之外的用户，顺序与平台目录一致
// @Tags Users
// @Produce json
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.directory.ListManagedUsers(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list managed users", zap.Error(err))
		respondServiceError(c, err, MsgUserListFailed)
		return
	}
	Success(c, users)
}

// userExists godoc
// @Summary 检查用户名是否已存在
// @Tags Users
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} Response
// @Router /api/users/{username}/exists [get]
func (h *Handler) userExists(c *gin.Context) {
	username := c.Param("username")

	exists, err := h.directory.UserExists(c.Request.Context(), username)
	if err != nil {
		h.log.Error("failed to check user existence",
			zap.String("username", username),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgUserExistsCheckFailed)
		return
	}
	Success(c, gin.H{"exists": exists})
}

// createUser godoc
// @Summary 创建托管用户
// @Description 创建平台用户并加入托管组，可选在主邮箱域名下创建默认邮箱
// @Tags Users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "用户参数"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/users [post]
func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if req.Username == "" || req.DisplayName == "" || req.Password == "" || req.Email == "" {
		BadRequest(c, "username、displayName、password、email 均为必填项")
		return
	}
	if req.FallbackEmail != "" && req.FallbackEmail == req.Email {
		BadRequest(c, "备用邮箱不能与主邮箱相同")
		return
	}

	ctx := c.Request.Context()

	user, err := h.api.CreateUser(ctx, hostapi.CreateUserRequest{
		Username:      req.Username,
		DisplayName:   req.DisplayName,
		Email:         req.Email,
		Password:      req.Password,
		FallbackEmail: req.FallbackEmail,
	})
	if err != nil {
		h.log.Error("failed to create user", zap.String("username", req.Username), zap.Error(err))
		respondServiceError(c, err, MsgUserCreateFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Created user '%s' (ID: %s)", req.Username, user.ID))
	h.storePassword(req.Username, req.Email, req.Password)
	h.metrics.UsersCreated.Inc()

	if err := h.directory.AddUserToGroup(ctx, user.ID); err != nil {
		h.log.Error("failed to add user to managed group",
			zap.String("userId", user.ID),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgUserCreateFailed)
		return
	}
	h.recordAudit(fmt.Sprintf("Added user '%s' to managed group", req.Username))

	if req.CreateMailbox {
		primaryDomain := emailDomain(req.Email)
		if primaryDomain == "" {
			BadRequest(c, "无法创建默认邮箱：主邮箱缺少有效域名")
			return
		}

		mailboxName := req.MailboxName
		if mailboxName == "" {
			mailboxName = req.Username
		}

		if _, err := h.mailboxes.CreateMailbox(ctx, primaryDomain, mailboxName, user.ID, 0); err != nil {
			h.log.Error("failed to create default mailbox",
				zap.String("mailbox", mailboxName+"@"+primaryDomain),
				zap.Error(err),
			)
			respondServiceError(c, err, MsgMailboxCreateFailed)
			return
		}
		h.recordAudit(fmt.Sprintf("Created default mailbox '%s@%s' for '%s'", mailboxName, primaryDomain, req.Username))
		h.metrics.MailboxesCreated.Inc()
	}

	Created(c, user)
}

// updateUser godoc
// @Summary 更新用户信息
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "用户ID"
// @Param request body updateUserRequest true "用户信息"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	userID := c.Param("id")

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	if req.DisplayName == "" || req.Email == "" {
		BadRequest(c, "displayName、email 均为必填项")
		return
	}

	err := h.api.UpdateUser(c.Request.Context(), userID, hostapi.UpdateUserRequest{
		DisplayName:   req.DisplayName,
		Email:         req.Email,
		FallbackEmail: req.FallbackEmail,
	})
	if err != nil {
		h.log.Error("failed to update user", zap.String("userId", userID), zap.Error(err))
		respondServiceError(c, err, MsgUserUpdateFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Updated user info for ID '%s'", userID))
	Success(c, gin.H{"success": true})
}

// deleteUser godoc
// @Summary 删除用户
// @Description 高危操作，额外要求 X-Master-Password 请求头
// @Tags Users
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 502 {object} Response
// @Router /api/users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	userID := c.Param("id")

	if err := h.api.DeleteUser(c.Request.Context(), userID); err != nil {
		h.log.Error("failed to delete user", zap.String("userId", userID), zap.Error(err))
		respondServiceError(c, err, MsgUserDeleteFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Deleted user with ID '%s'", userID))
	h.metrics.UsersDeleted.Inc()
	Success(c, gin.H{"success": true})
}

// resetPassword godoc
// @Summary 生成密码重置链接
// @Tags Users
// @Produce json
// @Param id path string true "用户ID"
// @Success 200 {object} Response
// @Failure 502 {object} Response
// @Router /api/users/{id}/reset-password [post]
func (h *Handler) resetPassword(c *gin.Context) {
	userID := c.Param("id")

	link, err := h.api.PasswordResetLink(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to generate password reset link",
			zap.String("userId", userID),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgPasswordResetFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Generated password reset link for user ID '%s'", userID))
	Success(c, gin.H{"passwordResetLink": link})
}

// setUserActive godoc
// @Summary 启用或停用账户
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "用户ID"
// @Param request body setActiveRequest true "状态"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/users/{id}/active [put]
func (h *Handler) setUserActive(c *gin.Context) {
	userID := c.Param("id")

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		BadRequest(c, "active 必须是布尔值")
		return
	}

	if err := h.api.SetUserActive(c.Request.Context(), userID, *req.Active); err != nil {
		h.log.Error("failed to update active state",
			zap.String("userId", userID),
			zap.Error(err),
		)
		respondServiceError(c, err, MsgActiveUpdateFailed)
		return
	}

	action := "Disabled"
	if *req.Active {
		action = "Enabled"
	}
	h.recordAudit(fmt.Sprintf("%s user with ID '%s'", action, userID))
	Success(c, gin.H{"success": true})
}

// setPassword godoc
// @Summary 直接设置账户密码
// @Description 同时把明文凭证写入留存库供管理员找回
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "用户ID"
// @Param request body setPasswordRequest true "密码"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/users/{id}/password [post]
func (h *Handler) setPassword(c *gin.Context) {
	userID := c.Param("id")

	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}
	if req.Password == "" {
		BadRequest(c, "password 为必填项")
		return
	}

	if err := h.api.SetPassword(c.Request.Context(), userID, req.Password); err != nil {
		h.log.Error("failed to set password", zap.String("userId", userID), zap.Error(err))
		respondServiceError(c, err, MsgPasswordSetFailed)
		return
	}

	h.recordAudit(fmt.Sprintf("Set password for user with ID '%s'", userID))
	h.storePassword(req.Username, req.Email, req.Password)
	Success(c, gin.H{"success": true})
}

func emailDomain(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return ""
	}
	return domain
}
