package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mailpanel/backend/internal/hostapi"
	"mailpanel/backend/internal/service"
	"mailpanel/backend/internal/storage"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	service.ErrManagedGroupNotFound: "配置的托管组在主机平台上不存在",
	service.ErrMalformedGroup:       "主机平台返回的组数据不完整",
	service.ErrNoValidDomains:       "未配置任何邮件域名",
	service.ErrDomainNotAllowed:     "域名不在配置的邮件域名内",
	storage.ErrPasswordNotFound:     "凭证记录不存在",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}

// respondServiceError 将业务错误映射为合适的 HTTP 响应。
//
// 上游主机 API 的失败对外表现为 502，本地业务校验失败为 400，
// 其余归为 500。
func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, service.ErrDomainNotAllowed),
		errors.Is(err, service.ErrNoValidDomains):
		BadRequest(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrManagedGroupNotFound),
		errors.Is(err, service.ErrMalformedGroup):
		BadGateway(c, GetErrorMessage(err))
	default:
		var apiErr *hostapi.APIError
		if errors.As(err, &apiErr) {
			BadGateway(c, MsgUpstreamError+": "+apiErr.Message)
			return
		}
		InternalError(c, fallbackMsg)
	}
}

// 通用错误消息
const (
	MsgInvalidRequest   = "请求参数格式错误"
	MsgRequestBodyEmpty = "请求体不能为空"

	MsgUserListFailed        = "获取用户列表失败"
	MsgUserCreateFailed      = "创建用户失败"
	MsgUserUpdateFailed      = "更新用户信息失败"
	MsgUserDeleteFailed      = "删除用户失败"
	MsgUserExistsCheckFailed = "检查用户是否存在失败"
	MsgPasswordResetFailed   = "生成密码重置链接失败"
	MsgPasswordSetFailed     = "设置密码失败"
	MsgActiveUpdateFailed    = "更新账户状态失败"

	MsgMailboxListFailed   = "获取邮箱列表失败"
	MsgMailboxCreateFailed = "创建邮箱失败"
	MsgMailboxDeleteFailed = "删除邮箱失败"
	MsgMailboxCheckFailed  = "检查邮箱状态失败"

	MsgAuditListFailed    = "获取审计日志失败"
	MsgPasswordListFailed = "获取凭证记录失败"

	MsgDiscoveryFailed = "获取主机 API 根信息失败"
	MsgUpstreamError   = "主机平台请求失败"
)
