// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// HTTPリクエストの結果と外部検索APIの成否を記録する。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	registrations  prometheus.Counter
	logins         prometheus.Counter
	searchSuccess  prometheus.Counter
	searchFail     prometheus.Counter
	searchLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fittrack_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fittrack_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fittrack_registrations_total",
			Help: "会員登録成功の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fittrack_logins_total",
			Help: "ログイン成功の合計数",
		}),
		searchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fittrack_search_success_total",
			Help: "エクササイズ検索成功の合計数",
		}),
		searchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fittrack_search_fail_total",
			Help: "エクササイズ検索の上流障害の合計数",
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fittrack_search_latency_seconds",
			Help:    "エクササイズ検索APIのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.registrations,
		c.logins,
		c.searchSuccess,
		c.searchFail,
		c.searchLatency,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordRegistration は会員登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordSearchSuccess は検索成功を記録する。
func (c *Collector) RecordSearchSuccess() {
	c.searchSuccess.Inc()
}

// RecordSearchFailure は検索の上流障害を記録する。
func (c *Collector) RecordSearchFailure() {
	c.searchFail.Inc()
}

// RecordSearchLatency は検索APIのレイテンシを記録する。
func (c *Collector) RecordSearchLatency(duration time.Duration) {
	c.searchLatency.Observe(duration.Seconds())
}

// Handler はメトリクス公開用のHTTPハンドラーを返す。
// GET /metrics
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
