package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 订单核心指标
var (
	// OrdersCreated 成功落库的订单数，按创建路径区分（direct / webhook）
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawlina",
		Name:      "orders_created_total",
		Help:      "Number of orders inserted into the ledger, by creation path.",
	}, []string{"path"})

	// OrdersDeduped 命中去重返回已有订单的次数
	OrdersDeduped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawlina",
		Name:      "orders_deduped_total",
		Help:      "Number of order submissions resolved to an existing order.",
	}, []string{"path"})

	// CheckoutSessions 支付会话创建结果
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawlina",
		Name:      "checkout_sessions_total",
		Help:      "Number of payment checkout sessions, by outcome.",
	}, []string{"outcome"})

	// WebhookEvents 支付网关回调事件处理结果
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawlina",
		Name:      "gateway_webhook_events_total",
		Help:      "Number of payment gateway webhook events, by outcome.",
	}, []string{"outcome"})

	// NotificationsSent 通知发送结果
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawlina",
		Name:      "notifications_total",
		Help:      "Number of outbound notifications, by outcome.",
	}, []string{"outcome"})

	// HTTPRequests 按路由与状态码的请求计数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawlina",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration 请求时延分布
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pawlina",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// 回调事件 outcome 取值
const (
	WebhookOutcomeProcessed        = "processed"
	WebhookOutcomeIgnored          = "ignored"
	WebhookOutcomeInvalidSignature = "invalid_signature"
	WebhookOutcomeReplayed         = "replayed"
	WebhookOutcomeError            = "error"
)
