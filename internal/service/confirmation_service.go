package service

import (
	"context"
	"strings"

	"interviewbot/internal/llm"
	"interviewbot/internal/logger"
	"interviewbot/internal/model"
	"interviewbot/internal/observability/metrics"
)

const (
	classifyTemperature = 0.1
	classifyMaxTokens   = 50
)

const classifierSystemPrompt = `The user was shown a summary of their interview answers and asked to confirm it.
Classify their reply. Respond with exactly one word:
ACCEPT if they confirm the summary is correct,
REJECT if they want to change something,
UNCLEAR otherwise.`

// ConfirmationService classifies replies to the confirmation summary.
// The lexicon decides when exactly one side matches; a negated accept phrase
// does not count as accepting. Otherwise the model is asked, and any model
// failure yields unclear.
type ConfirmationService struct {
	client  llm.Client
	model   string
	metrics *metrics.EngineMetrics
	log     *logger.Logger
}

func NewConfirmationService(client llm.Client, modelName string, m *metrics.EngineMetrics, log *logger.Logger) *ConfirmationService {
	if client == nil {
		client = llm.Disabled{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ConfirmationService{client: client, model: modelName, metrics: m, log: log}
}

// Classify returns accept, reject or unclear for a confirmation reply
func (s *ConfirmationService) Classify(ctx context.Context, utterance string) model.ConfirmationVerdict {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return s.observe(model.VerdictUnclear, "lexicon")
	}

	accept, reject := confirmAccept.Match(text), confirmReject.Match(text)
	if accept && negatedAccept.Match(text) {
		// "that isn't correct" must never finalize on the lexicon alone
		accept = false
	}
	switch {
	case accept && !reject:
		return s.observe(model.VerdictAccept, "lexicon")
	case reject && !accept:
		return s.observe(model.VerdictReject, "lexicon")
	}

	reply, err := s.client.Complete(ctx, llm.Request{
		Operation:   "classify",
		Model:       s.model,
		System:      classifierSystemPrompt,
		Prompt:      "User reply: " + text,
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil {
		s.log.Warn("confirmation classification unavailable", "error", err)
		s.metrics.ObserveFallback("classify", "unavailable")
		return s.observe(model.VerdictUnclear, "fallback")
	}

	verdict, ok := parseClassification(reply)
	if !ok {
		s.log.Warn("confirmation classification unparsable", "reply_len", len(reply))
		s.metrics.ObserveFallback("classify", "unparsable")
		return s.observe(model.VerdictUnclear, "fallback")
	}
	return s.observe(verdict, "llm")
}

func (s *ConfirmationService) observe(v model.ConfirmationVerdict, source string) model.ConfirmationVerdict {
	s.metrics.ObserveVerdict(string(v), source)
	return v
}

// parseClassification accepts a reply naming exactly one of the three labels
func parseClassification(reply string) (model.ConfirmationVerdict, bool) {
	upper := strings.ToUpper(reply)
	found := []model.ConfirmationVerdict{}
	for label, verdict := range map[string]model.ConfirmationVerdict{
		"ACCEPT":  model.VerdictAccept,
		"REJECT":  model.VerdictReject,
		"UNCLEAR": model.VerdictUnclear,
	} {
		if strings.Contains(upper, label) {
			found = append(found, verdict)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}
