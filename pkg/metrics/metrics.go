// Package metrics 提供 Prometheus helper，包含 HTTP 与定价业务的 counter/histogram
package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/optionpricing/pkg/logger"
)

const namespace = "optionpricing"

// Metrics 指标集合，nil 接收者上的记录方法为空操作
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 定价请求计数（instrument, model, result）
	PricingRequestsTotal *prometheus.CounterVec
	// 定价耗时
	PricingDuration *prometheus.HistogramVec
	// 定价错误按错误码计数
	PricingErrorsTotal *prometheus.CounterVec

	// 组合风险计算耗时
	PortfolioRiskDuration prometheus.Histogram
	// outbox 投递结果计数
	OutboxMessagesTotal *prometheus.CounterVec
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	subsystem := strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		PricingRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pricing_requests_total",
			Help:      "Total option pricing requests",
		}, []string{"instrument", "model", "result"}),
		PricingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pricing_duration_seconds",
			Help:      "Price plus greeks computation time in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"instrument", "model"}),
		PricingErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pricing_errors_total",
			Help:      "Pricing failures by error code",
		}, []string{"code"}),

		PortfolioRiskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "portfolio_risk_duration_seconds",
			Help:      "Portfolio risk computation time in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		OutboxMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_messages_total",
			Help:      "Outbox messages relayed to kafka by result",
		}, []string{"result"}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PricingRequestsTotal,
		m.PricingDuration,
		m.PricingErrorsTotal,
		m.PortfolioRiskDuration,
		m.OutboxMessagesTotal,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// Handler 返回 Prometheus 抓取端点
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPricing 记录一次定价，code 为空表示成功
func (m *Metrics) RecordPricing(instrument, model, code string, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if code != "" {
		result = "failure"
		m.PricingErrorsTotal.WithLabelValues(code).Inc()
	}
	m.PricingRequestsTotal.WithLabelValues(instrument, model, result).Inc()
	m.PricingDuration.WithLabelValues(instrument, model).Observe(duration.Seconds())
}

// RecordPortfolioRisk 记录组合风险计算耗时
func (m *Metrics) RecordPortfolioRisk(duration time.Duration) {
	if m == nil {
		return
	}
	m.PortfolioRiskDuration.Observe(duration.Seconds())
}

// RecordOutbox 记录 outbox 投递结果
func (m *Metrics) RecordOutbox(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.OutboxMessagesTotal.WithLabelValues(result).Add(float64(n))
}
