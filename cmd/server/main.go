package main

// @title MailPanel Backend API
// @version 1.0.0
// @description 邮件托管平台管理面板后端 API 文档
// @contact.name API Support
// @contact.email support@example.com
// @BasePath /
// @schemes http https
// @securityDefinitions.basic BasicAuth
// @description 面板 Basic Auth 账号
// @securityDefinitions.apikey AuditKey
// @in header
// @name X-Audit-Key
// @description 审计日志访问密钥
// @securityDefinitions.apikey MasterPassword
// @in header
// @name X-Master-Password
// @description 删除用户所需的主密码

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailpanel/backend/internal/config"
	"mailpanel/backend/internal/health"
	"mailpanel/backend/internal/hostapi"
	"mailpanel/backend/internal/logger"
	"mailpanel/backend/internal/monitoring"
	"mailpanel/backend/internal/service"
	"mailpanel/backend/internal/storage"
	badgerstore "mailpanel/backend/internal/storage/badger"
	"mailpanel/backend/internal/storage/memory"
	redisstore "mailpanel/backend/internal/storage/redis"
	sqlstore "mailpanel/backend/internal/storage/sql"
	httptransport "mailpanel/backend/internal/transport/http"
)

// main 是管理面板后端服务的程序入口。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      28,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()
	log.Info("starting mailpanel server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.String("host_api", cfg.HostAPI.BaseURL),
		zap.String("managed_group", cfg.Panel.GroupName),
	)

	// 初始化审计存储层
	store, err := initializeStorage(cfg, log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize storage: %v", err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	// 初始化监控系统
	metrics := monitoring.NewMetrics()

	// 初始化宿主平台 API 客户端
	api := hostapi.New(cfg.HostAPI.BaseURL, cfg.HostAPI.Token,
		hostapi.WithTimeout(cfg.HostAPI.Timeout),
		hostapi.WithObserver(metrics.RecordUpstreamRequest),
	)

	// 初始化健康检查
	healthChecker := health.NewHealthChecker(store, api)

	// 初始化服务层
	directoryService := service.NewDirectoryService(api, &cfg.Panel, log)
	mailboxService := service.NewMailboxService(api, directoryService, &cfg.Panel, log)
	auditService := service.NewAuditService(store, log)

	// 预热受管组 ID 缓存；失败只告警，请求时会重试解析
	warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := directoryService.ResolveManagedGroupID(warmupCtx); err != nil {
		log.Warn("managed group not resolved at startup, will retry on demand",
			zap.String("group", cfg.Panel.GroupName),
			zap.Error(err),
		)
	}
	cancelWarmup()

	// 创建 HTTP 路由
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:           cfg,
		API:              api,
		DirectoryService: directoryService,
		MailboxService:   mailboxService,
		AuditService:     auditService,
		HealthChecker:    healthChecker,
		Metrics:          metrics,
		Logger:           log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动 HTTP 服务器
	go func() {
		log.Info("panel server listening", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server stopped cleanly")
	}
}

// initializeStorage 根据配置选择审计存储后端
func initializeStorage(cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "memory":
		log.Info("using memory storage (development mode)")
		return memory.NewStore(), nil
	case "badger":
		log.Info("using badger storage", zap.String("path", cfg.Storage.Path))
		return badgerstore.NewStore(cfg.Storage.Path)
	case "redis":
		log.Info("using redis storage", zap.String("address", cfg.Redis.Address))
		return redisstore.NewStore(&cfg.Redis)
	case "mysql", "postgres":
		log.Info("using sql storage", zap.String("driver", cfg.Storage.Type))
		return sqlstore.NewStore(
			cfg.Storage.Type,
			cfg.Storage.DSN,
			cfg.Storage.MaxOpenConns,
			cfg.Storage.MaxIdleConns,
			cfg.Storage.ConnMaxLifetime,
		)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
