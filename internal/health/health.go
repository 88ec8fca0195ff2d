package health

import (
	"context"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"

	"mailpanel/backend/internal/hostapi"
	"mailpanel/backend/internal/storage"
)

// HealthChecker 健康检查器
//
// liveness 只检查进程本身；readiness 额外验证存储与上游主机 API 可达。
type HealthChecker struct {
	health healthcheck.Handler
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(store storage.Store, api hostapi.API) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
	}

	hc.health.AddReadinessCheck("storage", func() error {
		return store.Health()
	})

	hc.health.AddReadinessCheck("host-api", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := api.APIRoot(ctx)
		return err
	})

	return hc
}

// LiveHandler 返回存活检查处理器
func (hc *HealthChecker) LiveHandler() http.HandlerFunc {
	return hc.health.LiveEndpoint
}

// ReadyHandler 返回就绪检查处理器
func (hc *HealthChecker) ReadyHandler() http.HandlerFunc {
	return hc.health.ReadyEndpoint
}
