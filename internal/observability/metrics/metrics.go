package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for interview turns and LLM usage.
type EngineMetrics struct {
	turnsTotal       *prometheus.CounterVec
	evaluationsTotal *prometheus.CounterVec
	fallbackTotal    *prometheus.CounterVec
	verdictsTotal    *prometheus.CounterVec
	llmLatency       *prometheus.HistogramVec
	sessionsStarted  prometheus.Counter
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "engine",
			Name:      "turns_total",
			Help:      "Turns processed, by phase the turn entered and its outcome",
		}, []string{"phase", "outcome"}),
		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "evaluator",
			Name:      "evaluations_total",
			Help:      "Field evaluations by field type, source and sufficiency",
		}, []string{"field_type", "source", "sufficient"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "llm",
			Name:      "fallback_total",
			Help:      "LLM results replaced by deterministic fallbacks",
		}, []string{"operation", "reason"}),
		verdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "confirmation",
			Name:      "verdicts_total",
			Help:      "Confirmation classifications by verdict and source",
		}, []string{"verdict", "source"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "interview",
			Subsystem: "llm",
			Name:      "request_seconds",
			Help:      "Latency of LLM completion calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "interview",
			Subsystem: "engine",
			Name:      "sessions_started_total",
			Help:      "Interview sessions created",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.evaluationsTotal, m.fallbackTotal, m.verdictsTotal, m.llmLatency, m.sessionsStarted)
	return m
}

func (m *EngineMetrics) ObserveTurn(phase, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(phase, outcome).Inc()
}

func (m *EngineMetrics) ObserveEvaluation(fieldType, source string, sufficient bool) {
	if m == nil {
		return
	}
	label := "false"
	if sufficient {
		label = "true"
	}
	m.evaluationsTotal.WithLabelValues(fieldType, source, label).Inc()
}

func (m *EngineMetrics) ObserveFallback(operation, reason string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(operation, reason).Inc()
}

func (m *EngineMetrics) ObserveVerdict(verdict, source string) {
	if m == nil {
		return
	}
	m.verdictsTotal.WithLabelValues(verdict, source).Inc()
}

func (m *EngineMetrics) ObserveLLMLatency(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(operation, status).Observe(seconds)
}

func (m *EngineMetrics) ObserveSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}
