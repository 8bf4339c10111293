package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookAdmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txwebhook_admissions_total",
		Help: "Webhook deliveries that reached the idempotency guard, labelled by outcome (accepted|duplicate|error).",
	}, []string{"outcome"})

	WebhookValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwebhook_validation_failures_total",
		Help: "Webhook deliveries rejected before admission.",
	})

	AckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "txwebhook_ack_duration_seconds",
		Help:    "Time spent on the synchronous validate and admit path.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	TransactionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txwebhook_transactions_completed_total",
		Help: "Terminal transitions persisted by the background processor, labelled by status.",
	}, []string{"status"})

	TransitionsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwebhook_transitions_abandoned_total",
		Help: "Transactions left PROCESSING because the terminal update could not be persisted.",
	})

	UpdateRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwebhook_processor_update_retries_total",
		Help: "Retried attempts of the terminal status update.",
	})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "txwebhook_processing_duration_seconds",
		Help:    "Background processing time from dispatch to terminal transition.",
		Buckets: []float64{.1, .5, 1, 5, 10, 30, 45, 60, 120},
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txwebhook_processor_queue_depth",
		Help: "Jobs waiting in the background processor queue.",
	})

	QueueOverflow = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwebhook_processor_overflow_total",
		Help: "Dispatches parked outside the queue because it was full.",
	})

	StaleProcessing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txwebhook_transactions_stale_processing",
		Help: "PROCESSING transactions older than the stale threshold at the last check.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "txwebhook_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route pattern and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
