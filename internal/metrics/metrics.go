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
// ハンドラー層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(statusCode int, duration time.Duration)
	RecordExternalCallSuccess()
	RecordExternalCallFailure()
	RecordLogin()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	externalSuccess prometheus.Counter
	externalFail    prometheus.Counter
	logins          prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apibase_http_requests_total",
			Help: "ステータスコード別のHTTPリクエスト数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "apibase_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		externalSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apibase_external_call_success_total",
			Help: "外部APIデモ呼び出し成功の合計数",
		}),
		externalFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apibase_external_call_fail_total",
			Help: "外部APIデモ呼び出し失敗の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apibase_logins_total",
			Help: "OAuthログイン完了の合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.requestLatency,
		c.externalSuccess,
		c.externalFail,
		c.logins,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.requestLatency.Observe(duration.Seconds())
}

// RecordExternalCallSuccess は外部API呼び出し成功を記録する。
func (c *Collector) RecordExternalCallSuccess() {
	c.externalSuccess.Inc()
}

// RecordExternalCallFailure は外部API呼び出し失敗を記録する。
func (c *Collector) RecordExternalCallFailure() {
	c.externalFail.Inc()
}

// RecordLogin はOAuthログイン完了を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector実装。テスト用。
type NopCollector struct{}

func (NopCollector) RecordHTTPRequest(statusCode int, duration time.Duration) {}
func (NopCollector) RecordExternalCallSuccess()                               {}
func (NopCollector) RecordExternalCallFailure()                               {}
func (NopCollector) RecordLogin()                                             {}

// compile-time interface check
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
