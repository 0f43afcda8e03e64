// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果ラベル
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid_credentials"
	ResultError    = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービス、ミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordLogin(kind string, result string)
	RecordRegistration(kind string, created bool)
	RecordHTTPStatus(statusCode int)
	RecordAuthLatency(duration time.Duration)
	RecordSessionsCleaned(count int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins          *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	authLatency     prometheus.Histogram
	sessionsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postboard_logins_total",
			Help: "認証試行の合計数（クレデンシャル種別・結果別）",
		}, []string{"kind", "result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postboard_registrations_total",
			Help: "登録要求の合計数（新規作成か既存返却か）",
		}, []string{"kind", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		authLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "postboard_auth_latency_seconds",
			Help:    "認証処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "postboard_sessions_cleaned_total",
			Help: "削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.httpStatus,
		c.authLatency,
		c.sessionsCleaned,
	)

	return c
}

// RecordLogin は認証試行の結果を記録する。
func (c *Collector) RecordLogin(kind string, result string) {
	c.logins.WithLabelValues(kind, result).Inc()
}

// RecordRegistration は登録結果を記録する。
func (c *Collector) RecordRegistration(kind string, created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	c.registrations.WithLabelValues(kind, outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordAuthLatency は認証処理のレイテンシを記録する。
func (c *Collector) RecordAuthLatency(duration time.Duration) {
	c.authLatency.Observe(duration.Seconds())
}

// RecordSessionsCleaned は削除したセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。メトリクス未設定時に使用する。
type NopCollector struct{}

func (NopCollector) RecordLogin(string, string)      {}
func (NopCollector) RecordRegistration(string, bool) {}
func (NopCollector) RecordHTTPStatus(int)            {}
func (NopCollector) RecordAuthLatency(time.Duration) {}
func (NopCollector) RecordSessionsCleaned(int64)     {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
