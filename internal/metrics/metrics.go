// Package metrics provides Prometheus metrics for the NoSpendy service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	// HTTP performance
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	expensesRecorded        prometheus.Counter
	streakUpdates           prometheus.Counter
	streakConflicts         prometheus.Counter
	badgesAwarded           prometheus.Counter
	leaderboardComputations prometheus.Counter
	leaderboardCacheHits    prometheus.Counter
	challengesCompleted     prometheus.Counter
	monthlyResets           prometheus.Counter
	dailyRowsPruned         prometheus.Counter

	// Messaging
	publishFailures prometheus.Counter

	// Error tracking
	errorsByComponent *prometheus.CounterVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry registers metrics on a specific registry instead of the default.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.registry = reg
	}
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "nospendy",
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.expensesRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "expenses_recorded_total",
		Help:      "Total number of expenses recorded",
	})

	m.streakUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "streak_updates_total",
		Help:      "Total number of streak state advances",
	})

	m.streakConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "streak_conflicts_total",
		Help:      "Total number of streak version conflicts that required a retry",
	})

	m.badgesAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "badges_awarded_total",
		Help:      "Total number of badges awarded",
	})

	m.leaderboardComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_computations_total",
		Help:      "Total number of leaderboard rankings computed",
	})

	m.leaderboardCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_cache_hits_total",
		Help:      "Total number of leaderboard requests served from cache",
	})

	m.challengesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "challenges_completed_total",
		Help:      "Total number of challenges settled with a winner decided",
	})

	m.monthlyResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "monthly_resets_total",
		Help:      "Total number of monthly spending resets performed",
	})

	m.dailyRowsPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "daily_rows_pruned_total",
		Help:      "Total number of daily spending cache rows pruned",
	})

	m.publishFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "publish_failures_total",
		Help:      "Total number of failed activity message publishes",
	})

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordExpense increments the expenses recorded counter.
func RecordExpense() {
	globalManager.expensesRecorded.Inc()
}

// RecordStreakUpdate increments the streak updates counter.
func RecordStreakUpdate() {
	globalManager.streakUpdates.Inc()
}

// RecordStreakConflict increments the streak conflict counter.
func RecordStreakConflict() {
	globalManager.streakConflicts.Inc()
}

// RecordBadgeAwarded adds to the badges awarded counter.
func RecordBadgeAwarded(count int) {
	globalManager.badgesAwarded.Add(float64(count))
}

// RecordLeaderboardComputation increments the leaderboard computations counter.
func RecordLeaderboardComputation() {
	globalManager.leaderboardComputations.Inc()
}

// RecordLeaderboardCacheHit increments the leaderboard cache hit counter.
func RecordLeaderboardCacheHit() {
	globalManager.leaderboardCacheHits.Inc()
}

// RecordChallengeCompleted increments the challenges completed counter.
func RecordChallengeCompleted() {
	globalManager.challengesCompleted.Inc()
}

// RecordMonthlyReset increments the monthly resets counter.
func RecordMonthlyReset() {
	globalManager.monthlyResets.Inc()
}

// RecordDailyRowsPruned adds to the pruned daily rows counter.
func RecordDailyRowsPruned(count int64) {
	globalManager.dailyRowsPruned.Add(float64(count))
}

// RecordPublishFailure increments the publish failure counter.
func RecordPublishFailure() {
	globalManager.publishFailures.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
