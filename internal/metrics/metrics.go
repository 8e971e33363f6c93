// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 各サービス層から利用する。
type MetricsCollector interface {
	RecordRegistration()
	RecordLogin()
	RecordHabitCompletion()
	RecordNotificationEmitted()
	RecordHTTPStatus(statusCode int)
	RecordDashboardLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations        prometheus.Counter
	logins               prometheus.Counter
	habitCompletions     prometheus.Counter
	notificationsEmitted prometheus.Counter
	httpStatus           *prometheus.CounterVec
	dashboardLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitflow_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitflow_logins_total",
			Help: "ログイン成功の合計数",
		}),
		habitCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitflow_habit_completions_total",
			Help: "習慣完了記録の合計数",
		}),
		notificationsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habitflow_notifications_emitted_total",
			Help: "停滞チェックで発行されたモチベーション通知の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "habitflow_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		dashboardLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "habitflow_dashboard_latency_seconds",
			Help:    "ダッシュボード集約のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.habitCompletions,
		c.notificationsEmitted,
		c.httpStatus,
		c.dashboardLatency,
	)

	return c
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordHabitCompletion は習慣完了を記録する。
func (c *Collector) RecordHabitCompletion() {
	c.habitCompletions.Inc()
}

// RecordNotificationEmitted はモチベーション通知の発行を記録する。
func (c *Collector) RecordNotificationEmitted() {
	c.notificationsEmitted.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordDashboardLatency はダッシュボード集約のレイテンシを記録する。
func (c *Collector) RecordDashboardLatency(duration time.Duration) {
	c.dashboardLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
