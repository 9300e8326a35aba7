package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "furom"

// Registry 进程内指标注册表
var Registry = prometheus.NewRegistry()

var (
	expAdjustments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exp_adjustments_total",
		Help:      "经验值变动次数（按原因）",
	}, []string{"reason"})

	expApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exp_applied_points_total",
		Help:      "实际变动的经验值绝对量（按方向）",
	}, []string{"direction"})

	votes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "投票操作次数",
	}, []string{"target_kind", "outcome"})

	submissionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_transitions_total",
		Help:      "审核状态迁移次数",
	}, []string{"kind", "action"})

	httpRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		expAdjustments,
		expApplied,
		votes,
		submissionTransitions,
		httpRequests,
	)
}

// ObserveExpAdjustment 记录一次经验值变动
func ObserveExpAdjustment(reason string, applied int) {
	expAdjustments.WithLabelValues(reason).Inc()
	switch {
	case applied > 0:
		expApplied.WithLabelValues("gain").Add(float64(applied))
	case applied < 0:
		expApplied.WithLabelValues("loss").Add(float64(-applied))
	}
}

// ObserveVote 记录一次投票结果（created / flipped / retracted）
func ObserveVote(targetKind, outcome string) {
	votes.WithLabelValues(targetKind, outcome).Inc()
}

// ObserveSubmissionTransition 记录审核状态迁移
func ObserveSubmissionTransition(kind, action string) {
	submissionTransitions.WithLabelValues(kind, action).Inc()
}

// ObserveHTTPRequest 记录请求耗时
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler 指标导出 HTTP 处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
