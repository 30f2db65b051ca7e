package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	MetricsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Notifications accepted by the outbound provider, by channel",
	}, []string{"channel"})
	MetricsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Notifications the outbound provider rejected or could not address, by channel",
	}, []string{"channel"})
	MetricsDispatchTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_dispatch_seconds",
		Help:    "Time spent in a single channel send",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	MetricsTriggerEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trigger_events_total",
		Help: "Record-change events handled by the worker, by type and result",
	}, []string{"type", "result"})
	MetricsBulkReminders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_reminders_total",
		Help: "Bulk reminder invocations, by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		MetricsSent,
		MetricsFailed,
		MetricsDispatchTime,
		MetricsTriggerEvents,
		MetricsBulkReminders,
	)
}
