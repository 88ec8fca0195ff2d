package httptransport

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/health"
	"mailpanel/backend/internal/hostapi"
	"mailpanel/backend/internal/middleware"
	"mailpanel/backend/internal/monitoring"
	"mailpanel/backend/internal/service"
)

// Handler 聚合所有 HTTP 处理逻辑。
type Handler struct {
	api       hostapi.API
	directory *service.DirectoryService
	mailboxes *service.MailboxService
	audit     *service.AuditService
	metrics   *monitoring.Metrics
	log       *zap.Logger
	brandName string
}

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config           *config.Config
	API              hostapi.API
	DirectoryService *service.DirectoryService
	MailboxService   *service.MailboxService
	AuditService     *service.AuditService
	HealthChecker    *health.HealthChecker
	Metrics          *monitoring.Metrics
	Logger           *zap.Logger
}

// recordAudit 写审计记录，失败只记日志不影响主流程。
func (h *Handler) recordAudit(action string) {
	if err := h.audit.Record(action); err != nil {
		h.log.Error("failed to record audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}
	h.metrics.AuditEntriesTotal.Inc()
}

// storePassword 留存明文凭证，失败只记日志不影响主流程。
func (h *Handler) storePassword(username, email, password string) {
	if username == "" {
		return
	}
	if err := h.audit.StorePassword(username, email, password); err != nil {
		h.log.Error("failed to store password record",
			zap.String("username", username),
			zap.Error(err),
		)
	}
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger, deps.Metrics))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.HTTPMetrics(deps.Metrics))

	// 管理面板只收小请求体
	router.Use(middleware.RequestSizeLimit(1 * 1024 * 1024))

	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderAuditKey, middleware.HeaderMasterPassword},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// 允许所有来源时需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	handler := &Handler{
		api:       deps.API,
		directory: deps.DirectoryService,
		mailboxes: deps.MailboxService,
		audit:     deps.AuditService,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		brandName: deps.Config.Panel.BrandName,
	}

	// Swagger 文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查与指标（不走面板认证）
	router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveHandler()))
	router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyHandler()))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// 管理 API：整组走 Basic Auth
	api := router.Group("/api")
	api.Use(middleware.BasicAuth(&deps.Config.Dashboard, deps.Logger, deps.Metrics))
	{
		userRoutes := api.Group("/users")
		{
			userRoutes.GET("", handler.listUsers)
			userRoutes.POST("", handler.createUser)
			userRoutes.GET("/:username/exists", handler.userExists)
			userRoutes.PUT("/:id", handler.updateUser)
			userRoutes.DELETE("/:id", middleware.RequireMasterPassword(deps.Config.Dashboard.MasterPassword), handler.deleteUser)
			userRoutes.POST("/:id/reset-password", handler.resetPassword)
			userRoutes.PUT("/:id/active", handler.setUserActive)
			userRoutes.POST("/:id/password", handler.setPassword)
		}

		mailboxRoutes := api.Group("/mailboxes")
		{
			mailboxRoutes.GET("", handler.listMailboxes)
			mailboxRoutes.POST("", handler.createMailbox)
			mailboxRoutes.GET("/user/:userId", handler.listMailboxesForUser)
			mailboxRoutes.DELETE("/:domain/:name", handler.deleteMailbox)
			mailboxRoutes.GET("/:domain/:name/exists", handler.mailboxExists)
		}

		logRoutes := api.Group("/logs")
		logRoutes.Use(middleware.RequireAuditKey(deps.Config.Dashboard.AuditKey))
		{
			logRoutes.GET("", handler.listAuditLogs)
			logRoutes.GET("/passwords", handler.listStoredPasswords)
			logRoutes.GET("/passwords/:username", handler.getStoredPassword)
		}

		api.GET("/config", handler.getConfig)
		api.GET("/discovery", handler.discovery)
	}

	// 前端静态资源：非 API 路径全部落到静态目录，支持 SPA 回退
	registerStatic(router, deps.Config.Static.Dir)

	return router
}

// registerStatic 注册前端静态资源服务。
//
// 目录不存在时跳过注册，面板退化为纯 API 服务。
func registerStatic(router *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			NotFound(c, "接口不存在")
			return
		}

		requested := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}

		// SPA 路由回退到入口页
		c.File(filepath.Join(dir, "index.html"))
	})
}
