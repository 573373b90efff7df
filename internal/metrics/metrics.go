// Package metrics defines the Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Webhook metrics
	WebhookEventsTotal     *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Outbound send metrics
	SendsTotal *prometheus.CounterVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Response cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	CacheSize        prometheus.Gauge

	// Media metrics
	MediaBytesTotal    *prometheus.CounterVec
	MediaFailuresTotal *prometheus.CounterVec

	// Ticket metrics
	TicketsCreatedTotal prometheus.Counter
	SheetMirrorTotal    *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// Dedup metrics
	DuplicateMessagesTotal prometheus.Counter

	// Archive metrics
	ArchiveUploadsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered.
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		WebhookEventsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_webhook_events_total",
				Help: "Total webhook messages by type and status",
			},
			[]string{"message_type", "status"}, // status: success, error, dropped, duplicate
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nochgpt_webhook_duration_seconds",
				Help:    "Message processing duration in seconds by message type",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"message_type"},
		),

		SendsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_sends_total",
				Help: "Total outbound WhatsApp sends by kind and status",
			},
			[]string{"kind", "status"}, // kind: text, buttons
		),

		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_llm_requests_total",
				Help: "Total completion provider calls by operation and status",
			},
			[]string{"operation", "status"}, // operation: chat, translate, vision, transcribe, summarize
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nochgpt_llm_duration_seconds",
				Help:    "Completion provider call duration in seconds by operation",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "nochgpt_cache_hits_total",
				Help: "Total response cache hits",
			},
		),

		CacheMissesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "nochgpt_cache_misses_total",
				Help: "Total response cache misses",
			},
		),

		CacheSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "nochgpt_cache_entries",
				Help: "Current number of response cache entries",
			},
		),

		MediaBytesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_media_bytes_total",
				Help: "Total attachment bytes downloaded by media kind",
			},
			[]string{"kind"}, // kind: audio, image, document
		),

		MediaFailuresTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_media_failures_total",
				Help: "Total media pipeline failures by kind and reason",
			},
			[]string{"kind", "reason"}, // reason: download, too_large, transcribe, vision, extract
		),

		TicketsCreatedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "nochgpt_tickets_created_total",
				Help: "Total handoff tickets created",
			},
		),

		SheetMirrorTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_sheet_mirror_total",
				Help: "Total ticket mirror POSTs by status",
			},
			[]string{"status"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_rate_limiter_dropped_total",
				Help: "Total messages dropped by rate limiter type",
			},
			[]string{"limiter_type"}, // limiter_type: sender, global
		),

		DuplicateMessagesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "nochgpt_duplicate_messages_total",
				Help: "Total webhook messages skipped as already processed",
			},
		),

		ArchiveUploadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nochgpt_archive_uploads_total",
				Help: "Total snapshot archive uploads by status",
			},
			[]string{"status"},
		),
	}
}

// RecordWebhookEvent records a processed webhook message.
func (m *Metrics) RecordWebhookEvent(messageType, status string, duration float64) {
	m.WebhookEventsTotal.WithLabelValues(messageType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(messageType).Observe(duration)
}

// RecordSend records an outbound send attempt.
func (m *Metrics) RecordSend(kind, status string) {
	m.SendsTotal.WithLabelValues(kind, status).Inc()
}

// RecordLLMRequest records a completion provider call.
func (m *Metrics) RecordLLMRequest(operation, status string, duration float64) {
	m.LLMRequestsTotal.WithLabelValues(operation, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordCacheHit records a response cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a response cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// SetCacheSize updates the cache size gauge.
func (m *Metrics) SetCacheSize(n int) {
	m.CacheSize.Set(float64(n))
}

// RecordMediaBytes records downloaded attachment bytes.
func (m *Metrics) RecordMediaBytes(kind string, n int64) {
	m.MediaBytesTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordMediaFailure records a media pipeline failure.
func (m *Metrics) RecordMediaFailure(kind, reason string) {
	m.MediaFailuresTotal.WithLabelValues(kind, reason).Inc()
}

// RecordTicketCreated records a new handoff ticket.
func (m *Metrics) RecordTicketCreated() {
	m.TicketsCreatedTotal.Inc()
}

// RecordSheetMirror records a ticket mirror POST outcome.
func (m *Metrics) RecordSheetMirror(status string) {
	m.SheetMirrorTotal.WithLabelValues(status).Inc()
}

// RecordRateLimiterDrop records a message dropped by a rate limiter.
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordDuplicateMessage records a deduplicated webhook message.
func (m *Metrics) RecordDuplicateMessage() {
	m.DuplicateMessagesTotal.Inc()
}

// RecordArchiveUpload records a snapshot upload outcome.
func (m *Metrics) RecordArchiveUpload(status string) {
	m.ArchiveUploadsTotal.WithLabelValues(status).Inc()
}
