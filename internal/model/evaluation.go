package model

// Score bounds for field_scores
const (
	MinScore     = 0
	MaxScore     = 10
	NeutralScore = 5
)

// EvaluationSource records which path produced an evaluation
type EvaluationSource string

const (
	SourceLLM        EvaluationSource = "llm"
	SourceFallback   EvaluationSource = "fallback"
	SourceReaffirmed EvaluationSource = "reaffirmed"
)

// EvaluationResult is the evaluator's verdict for one field and one utterance.
// Only Sufficient gates the state transition; Score and Feedback are advisory.
type EvaluationResult struct {
	Sufficient     bool             `json:"sufficient"`
	Score          int              `json:"score"`
	ExtractedValue *string          `json:"extractedValue"`
	Feedback       *string          `json:"feedback,omitempty"`
	Source         EvaluationSource `json:"source"`
}

// ClampScore forces a score into [MinScore, MaxScore]
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ConfirmationVerdict is the classification of a reply during confirmation
type ConfirmationVerdict string

const (
	VerdictAccept  ConfirmationVerdict = "accept"
	VerdictReject  ConfirmationVerdict = "reject"
	VerdictUnclear ConfirmationVerdict = "unclear"
)
