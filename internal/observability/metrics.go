package observability

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderflow"

// Metrics holds the Prometheus collectors for pipeline runs, dispatch and the ops server.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	recordsProcessedTotal  *prometheus.CounterVec
	recordsInvalidTotal    *prometheus.CounterVec
	duplicatesDroppedTotal *prometheus.CounterVec
	violationsTotal        *prometheus.CounterVec

	notificationsSentTotal    *prometheus.CounterVec
	notificationsFailedTotal  *prometheus.CounterVec
	notificationsSkippedTotal *prometheus.CounterVec
	notificationSendDuration  *prometheus.HistogramVec
	workerInflight            *prometheus.GaugeVec
	retryScheduledTotal       *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		recordsProcessedTotal:  counterVec("records_processed_total", "Records that entered validation after cleaning.", "dataset"),
		recordsInvalidTotal:    counterVec("records_invalid_total", "Records rejected with at least one violation.", "dataset"),
		duplicatesDroppedTotal: counterVec("duplicates_dropped_total", "Records dropped as duplicates of an earlier business key.", "dataset"),
		violationsTotal:        counterVec("violations_total", "Rule violations by dataset and rule category.", "dataset", "category"),

		notificationsSentTotal:    counterVec("notifications_sent_total", "Notifications delivered.", "channel"),
		notificationsFailedTotal:  counterVec("notifications_failed_total", "Notifications that ended failed.", "channel", "reason"),
		notificationsSkippedTotal: counterVec("notifications_skipped_total", "Notifications skipped for lack of a usable destination.", "channel"),
		notificationSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "notification_send_duration_seconds",
				Help:      "Duration of single send attempts in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
		workerInflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worker_inflight",
				Help:      "Notification tasks currently held by a dispatch worker.",
			},
			[]string{"channel"},
		),
		retryScheduledTotal: counterVec("retry_scheduled_total", "Send attempts followed by a backoff and another attempt.", "channel"),

		httpRequestsTotal: counterVec("http_requests_total", "Ops server requests by method, path and status.", "method", "path", "status"),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Ops server request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.recordsProcessedTotal,
		m.recordsInvalidTotal,
		m.duplicatesDroppedTotal,
		m.violationsTotal,
		m.notificationsSentTotal,
		m.notificationsFailedTotal,
		m.notificationsSkippedTotal,
		m.notificationSendDuration,
		m.workerInflight,
		m.retryScheduledTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveValidation records one pipeline run. violations is keyed by rule category.
func (m *Metrics) ObserveValidation(dataset string, processed, invalid, duplicates int, violations map[string]int) {
	if m == nil {
		return
	}
	dataset = normalizeLabel(dataset)

	m.recordsProcessedTotal.WithLabelValues(dataset).Add(float64(processed))
	m.recordsInvalidTotal.WithLabelValues(dataset).Add(float64(invalid))
	m.duplicatesDroppedTotal.WithLabelValues(dataset).Add(float64(duplicates))
	for category, n := range violations {
		m.violationsTotal.WithLabelValues(dataset, normalizeLabel(category)).Add(float64(n))
	}
}

func (m *Metrics) IncNotificationSent(channel string) {
	if m == nil {
		return
	}
	m.notificationsSentTotal.WithLabelValues(normalizeLabel(channel)).Inc()
}

func (m *Metrics) IncNotificationFailed(channel, reason string) {
	if m == nil {
		return
	}
	m.notificationsFailedTotal.WithLabelValues(normalizeLabel(channel), normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncNotificationSkipped(channel string) {
	if m == nil {
		return
	}
	m.notificationsSkippedTotal.WithLabelValues(normalizeLabel(channel)).Inc()
}

func (m *Metrics) ObserveNotificationSendDuration(channel string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.notificationSendDuration.WithLabelValues(normalizeLabel(channel)).Observe(seconds)
}

func (m *Metrics) IncWorkerInFlight(channel string) {
	if m == nil {
		return
	}
	m.workerInflight.WithLabelValues(normalizeLabel(channel)).Inc()
}

func (m *Metrics) DecWorkerInFlight(channel string) {
	if m == nil {
		return
	}
	m.workerInflight.WithLabelValues(normalizeLabel(channel)).Dec()
}

func (m *Metrics) IncRetryScheduled(channel string) {
	if m == nil {
		return
	}
	m.retryScheduledTotal.WithLabelValues(normalizeLabel(channel)).Inc()
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
