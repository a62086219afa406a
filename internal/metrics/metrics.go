package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"qabot/internal/models"
)

var unansweredDesc = prometheus.NewDesc(
	"qabot_unanswered_questions",
	"Number of questions recorded in the unanswered_questions table",
	nil,
	nil,
)

// UnansweredCounter reads the persisted unanswered-question count.
type UnansweredCounter interface {
	CountUnansweredQuestions(ctx context.Context) (int64, error)
}

// UnansweredCollector is a custom Prometheus collector that reads the
// unanswered-question count from the database on each scrape.
type UnansweredCollector struct {
	db      UnansweredCounter
	timeout time.Duration
}

// NewUnansweredCollector creates a collector backed by db.
func NewUnansweredCollector(db UnansweredCounter) *UnansweredCollector {
	return &UnansweredCollector{db: db, timeout: 5 * time.Second}
}

// Describe sends the metric descriptor to the channel.
func (c *UnansweredCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- unansweredDesc
}

// Collect queries the database and emits the count as a gauge.
func (c *UnansweredCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.db.CountUnansweredQuestions(ctx)
	if err != nil {
		slog.Error("failed to collect unanswered question metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(unansweredDesc, prometheus.GaugeValue, float64(n))
}

// Metrics holds the chat counters. It implements chat.Observer.
type Metrics struct {
	answers     *prometheus.CounterVec
	score       prometheus.Histogram
	writeErrors prometheus.Counter
}

// New creates the chat metrics and registers them with reg.
// A nil db skips the unanswered-question collector.
func New(reg prometheus.Registerer, db UnansweredCounter) *Metrics {
	m := &Metrics{
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qabot_answers_total",
			Help: "Total answered messages by outcome",
		}, []string{"outcome"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qabot_lookup_score",
			Help:    "Similarity score of matched questions",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1},
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qabot_fallback_write_errors_total",
			Help: "Total failures to record an unanswered question",
		}),
	}

	reg.MustRegister(m.answers, m.score, m.writeErrors)
	if db != nil {
		reg.MustRegister(NewUnansweredCollector(db))
	}
	return m
}

// ObserveAnswer counts one reply by outcome and records its match score.
// Unknown outcomes are counted as errors to keep the label set fixed.
func (m *Metrics) ObserveAnswer(outcome string, score float64) {
	if !models.IsValidOutcome(outcome) {
		outcome = models.OutcomeError
	}
	m.answers.WithLabelValues(outcome).Inc()
	if score > 0 {
		m.score.Observe(score)
	}
}

// ObserveRecordError counts one failed fallback write.
func (m *Metrics) ObserveRecordError() {
	m.writeErrors.Inc()
}

// RegisterDigestPending exposes the number of questions waiting for the next digest.
func RegisterDigestPending(reg prometheus.Registerer, pending func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "qabot_digest_pending",
		Help: "Unanswered questions queued for the next digest email",
	}, func() float64 {
		return float64(pending())
	}))
}
