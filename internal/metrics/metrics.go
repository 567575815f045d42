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
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordValidationFailure(entity string)
	RecordEntityCreated(entity string)
	RecordLoginAttempt(success bool)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	validationFail    *prometheus.CounterVec
	entitiesCreated   *prometheus.CounterVec
	loginAttempts     *prometheus.CounterVec
	sessionsCleanedUp prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "メソッド・ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		validationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_validation_failures_total",
			Help: "エンティティ別のバリデーション失敗数",
		}, []string{"entity"}),
		entitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_entities_created_total",
			Help: "エンティティ別の作成数",
		}, []string{"entity"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_login_attempts_total",
			Help: "結果別のログイン試行数",
		}, []string{"result"}),
		sessionsCleanedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_sessions_cleaned_total",
			Help: "クリーンアップジョブで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.validationFail,
		c.entitiesCreated,
		c.loginAttempts,
		c.sessionsCleanedUp,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはURLパラメータを含まないルートパターンを渡す。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordValidationFailure はバリデーション失敗を記録する。
func (c *Collector) RecordValidationFailure(entity string) {
	c.validationFail.WithLabelValues(entity).Inc()
}

// RecordEntityCreated はエンティティの作成を記録する。
func (c *Collector) RecordEntityCreated(entity string) {
	c.entitiesCreated.WithLabelValues(entity).Inc()
}

// RecordLoginAttempt はログイン試行の結果を記録する。
func (c *Collector) RecordLoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.loginAttempts.WithLabelValues(result).Inc()
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleanedUp.Add(float64(count))
}

// Nop は何も記録しないMetricsCollector。メトリクスが不要なテストやCLIで使用する。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordValidationFailure(string)                       {}
func (Nop) RecordEntityCreated(string)                           {}
func (Nop) RecordLoginAttempt(bool)                              {}
func (Nop) RecordSessionsCleaned(int64)                          {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
