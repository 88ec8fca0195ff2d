package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 上游主机 API 指标
	UpstreamRequestsTotal *prometheus.CounterVec

	// 业务指标
	UsersCreated      prometheus.Counter
	UsersDeleted      prometheus.Counter
	MailboxesCreated  prometheus.Counter
	MailboxesDeleted  prometheus.Counter
	AuditEntriesTotal prometheus.Counter

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	// 认证指标
	AuthFailuresTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailpanel_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mailpanel_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		UpstreamRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailpanel_upstream_requests_total",
				Help: "Total number of host API requests",
			},
			[]string{"method", "status_code"},
		),

		UsersCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_users_created_total",
				Help: "Total number of users created through the panel",
			},
		),

		UsersDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_users_deleted_total",
				Help: "Total number of users deleted through the panel",
			},
		),

		MailboxesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_mailboxes_created_total",
				Help: "Total number of mailboxes created through the panel",
			},
		),

		MailboxesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_mailboxes_deleted_total",
				Help: "Total number of mailboxes deleted through the panel",
			},
		),

		AuditEntriesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_audit_entries_total",
				Help: "Total number of audit entries recorded",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mailpanel_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_panics_total",
				Help: "Total number of recovered panics",
			},
		),

		AuthFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mailpanel_auth_failures_total",
				Help: "Total number of failed dashboard authentication attempts",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordUpstreamRequest 记录宿主主机 API 请求指标
func (m *Metrics) RecordUpstreamRequest(method string, statusCode int) {
	m.UpstreamRequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordError 记录错误指标
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic 指标
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordAuthFailure 记录认证失败指标
func (m *Metrics) RecordAuthFailure() {
	m.AuthFailuresTotal.Inc()
}

// Handler 返回 Prometheus 指标处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
