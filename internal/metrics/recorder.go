package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"lunch-menu-planner/internal/shared"
)

// Recorder observes planning attempts. It updates the Prometheus collectors
// and, when a store is set, appends each attempt to the SQLite log.
type Recorder struct {
	attempts   *prometheus.CounterVec
	violations *prometheus.CounterVec
	tokens     *prometheus.CounterVec
	latency    *prometheus.HistogramVec

	store  *Store
	logger *zap.Logger
}

// NewRecorder creates a Recorder and registers its collectors with reg.
// store and logger may be nil.
func NewRecorder(reg prometheus.Registerer, store *Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_planner_attempts_total",
			Help: "Menu proposals by proposer and outcome",
		}, []string{"proposer", "outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_planner_violations_total",
			Help: "Rejected menu proposals by violated rule",
		}, []string{"rule"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "menu_planner_tokens_total",
			Help: "Language model tokens spent on proposals",
		}, []string{"proposer", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "menu_planner_proposal_seconds",
			Help:    "Time spent drafting one proposal",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"proposer"}),
		store:  store,
		logger: logger,
	}
	reg.MustRegister(r.attempts, r.violations, r.tokens, r.latency)
	return r
}

// ObserveAttempt implements planner.AttemptObserver.
func (r *Recorder) ObserveAttempt(rep shared.AttemptReport) {
	proposer := rep.Meta.AgentName
	r.attempts.WithLabelValues(proposer, rep.Outcome).Inc()
	if rep.Rule != "" {
		r.violations.WithLabelValues(rep.Rule).Inc()
	}
	if u := rep.Meta.Usage; u.PromptTokens+u.CompletionTokens > 0 {
		r.tokens.WithLabelValues(proposer, "prompt").Add(float64(u.PromptTokens))
		r.tokens.WithLabelValues(proposer, "completion").Add(float64(u.CompletionTokens))
	}
	r.latency.WithLabelValues(proposer).Observe(rep.Meta.Latency.Seconds())

	if r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.store.RecordAttempt(ctx, rep); err != nil {
		r.logger.Warn("failed to record planning attempt", zap.Error(err))
	}
}
