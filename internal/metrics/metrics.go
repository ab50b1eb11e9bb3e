// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果のラベル値
const (
	LoginResultSuccess = "success"
	LoginResultFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証・リポジトリ・セッション層やHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordLogin(result string)
	RecordRecordAdded(collection string)
	RecordRecordUpdated(collection string)
	RecordDecodeFailure(key string)
	SetNotifications(kind string, count int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins         *prometheus.CounterVec
	recordsAdded   *prometheus.CounterVec
	recordsUpdated *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	notifications  *prometheus.GaugeVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// コンパイル時にインターフェース実装を検証する。
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesnav_logins_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		recordsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesnav_records_added_total",
			Help: "コレクション別の追加レコード数",
		}, []string{"collection"}),
		recordsUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesnav_records_updated_total",
			Help: "コレクション別の更新レコード数",
		}, []string{"collection"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesnav_store_decode_failures_total",
			Help: "ストア値のデコード失敗数（空コレクションとして扱った回数）",
		}, []string{"key"}),
		notifications: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "salesnav_notifications",
			Help: "直近に導出された種別ごとの通知数",
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesnav_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salesnav_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.recordsAdded,
		c.recordsUpdated,
		c.decodeFailures,
		c.notifications,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordRecordAdded はレコード追加を記録する。
func (c *Collector) RecordRecordAdded(collection string) {
	c.recordsAdded.WithLabelValues(collection).Inc()
}

// RecordRecordUpdated はレコード更新を記録する。
func (c *Collector) RecordRecordUpdated(collection string) {
	c.recordsUpdated.WithLabelValues(collection).Inc()
}

// RecordDecodeFailure はストア値のデコード失敗を記録する。
func (c *Collector) RecordDecodeFailure(key string) {
	c.decodeFailures.WithLabelValues(key).Inc()
}

// SetNotifications は種別ごとの通知数を設定する。
func (c *Collector) SetNotifications(kind string, count int) {
	c.notifications.WithLabelValues(kind).Set(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// NopCollector は何も記録しないMetricsCollector。
// CLIの単発コマンドやテストで使用する。
type NopCollector struct{}

func (NopCollector) RecordLogin(string)                 {}
func (NopCollector) RecordRecordAdded(string)           {}
func (NopCollector) RecordRecordUpdated(string)         {}
func (NopCollector) RecordDecodeFailure(string)         {}
func (NopCollector) SetNotifications(string, int)       {}
func (NopCollector) RecordHTTPStatus(int)               {}
func (NopCollector) RecordRequestLatency(time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
