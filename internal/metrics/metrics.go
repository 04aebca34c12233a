package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	PipelineQueriesTotal    *prometheus.CounterVec
	PipelineDurationSeconds *prometheus.HistogramVec

	// Upstream fetch metrics
	FetchRequestsTotal   *prometheus.CounterVec
	FetchDurationSeconds *prometheus.HistogramVec

	// LLM metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMFallbacksTotal  *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Retrieval metrics
	RetrievalQueriesTotal *prometheus.CounterVec
	IndexDocuments        prometheus.Gauge

	// WebSocket metrics
	ActiveConnections prometheus.Gauge
	StreamEventsTotal prometheus.Counter

	// Room metrics
	RoomMessagesTotal *prometheus.CounterVec
	RoomUsers         *prometheus.GaugeVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		PipelineQueriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_pipeline_queries_total",
				Help: "Total number of pipeline queries by intent and status",
			},
			[]string{"intent", "status"}, // status: success, error
		),

		PipelineDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sfubot_pipeline_duration_seconds",
				Help:    "Pipeline response duration in seconds by intent",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"intent"},
		),

		FetchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_fetch_requests_total",
				Help: "Total number of upstream fetch requests by target and status",
			},
			[]string{"target", "status"}, // target: course_api, corpus
		),

		FetchDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sfubot_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds by target",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"target"},
		),

		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_llm_requests_total",
				Help: "Total number of LLM requests by provider and status",
			},
			[]string{"provider", "status"},
		),

		LLMFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_llm_fallbacks_total",
				Help: "Total number of fallbacks from primary to secondary LLM provider",
			},
			[]string{"from", "to"},
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sfubot_llm_duration_seconds",
				Help:    "LLM request duration in seconds by provider",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		RetrievalQueriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_retrieval_queries_total",
				Help: "Total number of index queries by outcome",
			},
			[]string{"outcome"}, // outcome: answered, low_relevance, not_ready, error
		),

		IndexDocuments: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "sfubot_index_documents",
				Help: "Number of chunks in the document index",
			},
		),

		ActiveConnections: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "sfubot_ws_active_connections",
				Help: "Number of open WebSocket connections",
			},
		),

		StreamEventsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "sfubot_ws_stream_events_total",
				Help: "Total number of stream partials sent over WebSocket",
			},
		),

		RoomMessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_room_messages_total",
				Help: "Total number of room messages by room and status",
			},
			[]string{"room", "status"}, // status: delivered, rejected
		),

		RoomUsers: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sfubot_room_users",
				Help: "Number of users currently in each room",
			},
			[]string{"room"},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfubot_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"},
		),
	}
}
