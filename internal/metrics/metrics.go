// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// サービス層とバックエンドクライアントから利用する。
type Recorder interface {
	RecordSignUp(success bool)
	RecordSignIn(success bool)
	RecordSessionDestroyed()
	RecordBackendRequest(endpoint string, statusCode int, duration time.Duration)
	RecordProfileUpsert()
	RecordProfileDelete()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signup           *prometheus.CounterVec
	signin           *prometheus.CounterVec
	sessionDestroyed prometheus.Counter
	backendRequests  *prometheus.CounterVec
	backendLatency   prometheus.Histogram
	profileUpserts   prometheus.Counter
	profileDeletes   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_signup_total",
			Help: "サインアップ試行の合計数（結果別）",
		}, []string{"result"}),
		signin: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_signin_total",
			Help: "サインイン試行の合計数（結果別）",
		}, []string{"result"}),
		sessionDestroyed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerfolio_sessions_destroyed_total",
			Help: "破棄されたセッションの合計数",
		}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careerfolio_backend_requests_total",
			Help: "バックエンドAPI呼び出しの合計数（エンドポイント・ステータス別）",
		}, []string{"endpoint", "status_code"}),
		backendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "careerfolio_backend_latency_seconds",
			Help:    "バックエンドAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		profileUpserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerfolio_profile_upserts_total",
			Help: "プロフィールUPSERTの合計数",
		}),
		profileDeletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careerfolio_profile_deletes_total",
			Help: "プロフィール削除の合計数",
		}),
	}

	reg.MustRegister(
		c.signup,
		c.signin,
		c.sessionDestroyed,
		c.backendRequests,
		c.backendLatency,
		c.profileUpserts,
		c.profileDeletes,
	)

	return c
}

// RecordSignUp はサインアップ試行の結果を記録する。
func (c *Collector) RecordSignUp(success bool) {
	c.signup.WithLabelValues(resultLabel(success)).Inc()
}

// RecordSignIn はサインイン試行の結果を記録する。
func (c *Collector) RecordSignIn(success bool) {
	c.signin.WithLabelValues(resultLabel(success)).Inc()
}

// RecordSessionDestroyed はセッション破棄を記録する。
func (c *Collector) RecordSessionDestroyed() {
	c.sessionDestroyed.Inc()
}

// RecordBackendRequest はバックエンドAPI呼び出しの結果とレイテンシを記録する。
// statusCodeが0の場合はネットワークレベルの失敗として "error" ラベルを付与する。
func (c *Collector) RecordBackendRequest(endpoint string, statusCode int, duration time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	c.backendRequests.WithLabelValues(endpoint, status).Inc()
	c.backendLatency.Observe(duration.Seconds())
}

// RecordProfileUpsert はプロフィールUPSERTを記録する。
func (c *Collector) RecordProfileUpsert() {
	c.profileUpserts.Inc()
}

// RecordProfileDelete はプロフィール削除を記録する。
func (c *Collector) RecordProfileDelete() {
	c.profileDeletes.Inc()
}

// resultLabel は成功・失敗をラベル文字列に変換する。
func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Nop は何も記録しないRecorder。テストおよびメトリクス無効時に使用する。
type Nop struct{}

func (Nop) RecordSignUp(success bool)                                                  {}
func (Nop) RecordSignIn(success bool)                                                  {}
func (Nop) RecordSessionDestroyed()                                                    {}
func (Nop) RecordBackendRequest(endpoint string, statusCode int, d time.Duration)      {}
func (Nop) RecordProfileUpsert()                                                       {}
func (Nop) RecordProfileDelete()                                                       {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsと/healthzを提供するHTTPハンドラーを返す。
// ユーザー向けルーティングとは別リスナーで公開することを想定している。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
