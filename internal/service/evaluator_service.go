package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"interviewbot/internal/llm"
	"interviewbot/internal/logger"
	"interviewbot/internal/model"
	"interviewbot/internal/observability/metrics"
)

const (
	evaluateTemperature = 0.3
	evaluateMaxTokens   = 200

	// score given when the model says SUFFICIENT without a number
	defaultSufficientScore = 7

	minStringChars = 2
	minStoryChars  = 10
	minStoryWords  = 3
	minYesNoChars  = 10
)

const (
	feedbackYesNo  = "Please answer with 'yes' or 'no'."
	feedbackDetail = "Please provide a more detailed response."
)

// EvaluatorService judges whether an utterance answers a field and extracts its value.
// When the model is unavailable or its reply cannot be read, it falls back to
// deterministic length and lexicon checks so the interview keeps moving.
type EvaluatorService struct {
	client  llm.Client
	model   string
	metrics *metrics.EngineMetrics
	log     *logger.Logger
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService(client llm.Client, modelName string, m *metrics.EngineMetrics, log *logger.Logger) *EvaluatorService {
	if client == nil {
		client = llm.Disabled{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &EvaluatorService{client: client, model: modelName, metrics: m, log: log}
}

// Evaluate makes exactly one completion call per utterance. Empty input is
// rejected before any call is made.
func (s *EvaluatorService) Evaluate(ctx context.Context, field model.Field, utterance string, recent []model.Message) (*model.EvaluationResult, error) {
	answer := strings.TrimSpace(utterance)
	if answer == "" {
		return nil, ErrInvalidUtterance
	}

	reply, err := s.client.Complete(ctx, llm.Request{
		Operation:   "evaluate",
		Model:       s.model,
		System:      evaluatorSystemPrompt,
		Prompt:      buildEvaluationPrompt(field, answer, recent),
		Temperature: evaluateTemperature,
		MaxTokens:   evaluateMaxTokens,
	})
	if err != nil {
		reason := "unavailable"
		if errors.Is(err, llm.ErrMalformed) {
			reason = "malformed"
		}
		return s.fallback(field, answer, reason, err), nil
	}

	verdict := parseVerdict(reply)
	if verdict.kind == verdictUnparsable {
		return s.fallback(field, answer, "unparsable", llm.ErrMalformed), nil
	}

	result := &model.EvaluationResult{Source: model.SourceLLM}
	if verdict.kind == verdictSufficient {
		result.Sufficient = true
		result.Score = defaultSufficientScore
		result.ExtractedValue = normalizeValue(field, verdict.value, answer)
	} else {
		result.Feedback = verdict.feedback
		if result.Feedback == nil {
			fb := defaultFeedback(field.Type)
			result.Feedback = &fb
		}
	}
	if verdict.score != nil {
		result.Score = *verdict.score
	}
	result.Score = model.ClampScore(result.Score)

	s.metrics.ObserveEvaluation(string(field.Type), string(result.Source), result.Sufficient)
	return result, nil
}

func (s *EvaluatorService) fallback(field model.Field, answer, reason string, cause error) *model.EvaluationResult {
	s.log.Warn("evaluation fell back to heuristic", "field", field.Name, "reason", reason, "error", cause)
	s.metrics.ObserveFallback("evaluate", reason)

	result := fallbackEvaluate(field, answer)
	s.metrics.ObserveEvaluation(string(field.Type), string(result.Source), result.Sufficient)
	return result
}

// fallbackEvaluate is the deterministic judgement used without a model
func fallbackEvaluate(field model.Field, answer string) *model.EvaluationResult {
	result := &model.EvaluationResult{Source: model.SourceFallback}

	if field.Type == model.FieldTypeYesNo {
		if yn, ok := yesNo(answer); ok {
			result.Sufficient = true
			result.Score = model.NeutralScore
			result.ExtractedValue = &yn
			return result
		}
	}

	if meetsMinimum(field.Type, answer) {
		value := answer
		result.Sufficient = true
		result.Score = model.NeutralScore
		result.ExtractedValue = &value
		return result
	}

	fb := defaultFeedback(field.Type)
	result.Score = model.MinScore
	result.Feedback = &fb
	return result
}

func meetsMinimum(fieldType model.FieldType, answer string) bool {
	chars := utf8.RuneCountInString(answer)
	switch fieldType {
	case model.FieldTypeStory:
		return chars >= minStoryChars && len(strings.Fields(answer)) >= minStoryWords
	case model.FieldTypeYesNo:
		return chars >= minYesNoChars
	default:
		return chars >= minStringChars
	}
}

func defaultFeedback(fieldType model.FieldType) string {
	if fieldType == model.FieldTypeYesNo {
		return feedbackYesNo
	}
	return feedbackDetail
}

// normalizeValue picks the stored value for a sufficient answer
func normalizeValue(field model.Field, extracted *string, answer string) *string {
	value := answer
	if extracted != nil && *extracted != "" {
		value = *extracted
	}
	if field.Type == model.FieldTypeYesNo {
		if yn, ok := yesNo(value); ok {
			value = yn
		}
	}
	return &value
}

const evaluatorSystemPrompt = `You evaluate answers given during a structured interview.
Decide whether the answer sufficiently addresses the question and extract the answer's value.
Respond with a single JSON object and nothing else:
{"verdict": "SUFFICIENT" or "INSUFFICIENT", "score": 0-10, "value": "<extracted value or null>", "feedback": "<short guidance when insufficient, else null>"}`

func buildEvaluationPrompt(field model.Field, answer string, recent []model.Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", field.Prompt)
	fmt.Fprintf(&b, "Field: %s (%s)\n", field.Name, field.Type)
	b.WriteString("Criteria: ")
	switch field.Type {
	case model.FieldTypeYesNo:
		b.WriteString("the answer must be a clear yes or no. Extract \"yes\" or \"no\".\n")
	case model.FieldTypeStory:
		b.WriteString("the answer must tell a short story with some detail (what happened, how, why). One-word or one-line answers are insufficient. Extract a concise summary.\n")
	default:
		b.WriteString("any direct factual answer is sufficient. Extract only the value itself (for example the name, not the sentence).\n")
	}

	if len(recent) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, m := range recent {
			fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Text)
		}
	}

	fmt.Fprintf(&b, "\nAnswer to evaluate: %s\n", answer)
	return b.String()
}
