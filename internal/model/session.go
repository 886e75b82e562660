package model

import "time"

// Phase is the lifecycle phase of an interview session
type Phase string

const (
	PhaseCollecting           Phase = "COLLECTING"
	PhaseAwaitingConfirmation Phase = "AWAITING_CONFIRMATION"
	PhaseCompleted            Phase = "COMPLETED"
)

// Sender identifies who wrote a conversation log entry
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry in the conversation log
type Message struct {
	Sender Sender    `json:"sender" bson:"sender"`
	Text   string    `json:"text" bson:"text"`
	At     time.Time `json:"at" bson:"at"`
}

// Session is one respondent's progress through a template
type Session struct {
	ID                string             `json:"id" bson:"_id"`
	TemplateID        string             `json:"templateId" bson:"templateId"`
	Phase             Phase              `json:"phase" bson:"phase"`
	CurrentFieldIndex int                `json:"currentFieldIndex" bson:"currentFieldIndex"`
	ConversationLog   []Message          `json:"conversationLog" bson:"conversationLog"`
	ExtractedValues   map[string]*string `json:"extractedValues" bson:"extractedValues"`
	FieldScores       map[string]int     `json:"fieldScores" bson:"fieldScores"`
	IsCompleted       bool               `json:"isCompleted" bson:"isCompleted"`

	// Revising is set by the revise reject policy: once the targeted field is
	// answered again, fields that still hold a value are skipped.
	Revising bool `json:"revising,omitempty" bson:"revising,omitempty"`

	SessionData map[string]*string `json:"sessionData,omitempty" bson:"sessionData,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// NewSession creates a session at the first field with empty state
func NewSession(id, templateID string, now time.Time) *Session {
	return &Session{
		ID:                id,
		TemplateID:        templateID,
		Phase:             PhaseCollecting,
		CurrentFieldIndex: 0,
		ConversationLog:   []Message{},
		ExtractedValues:   map[string]*string{},
		FieldScores:       map[string]int{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Append adds an entry to the conversation log
func (s *Session) Append(sender Sender, text string, at time.Time) {
	s.ConversationLog = append(s.ConversationLog, Message{Sender: sender, Text: text, At: at})
}

// RecentLog returns a copy of the last n log entries
func (s *Session) RecentLog(n int) []Message {
	if n <= 0 || len(s.ConversationLog) == 0 {
		return nil
	}
	start := len(s.ConversationLog) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(s.ConversationLog)-start)
	copy(out, s.ConversationLog[start:])
	return out
}

// HasValue reports whether a non-null value has been extracted for the field
func (s *Session) HasValue(field string) bool {
	v, ok := s.ExtractedValues[field]
	return ok && v != nil
}

// ExtractedCopy returns a shallow copy of the extracted values
func (s *Session) ExtractedCopy() map[string]*string {
	out := make(map[string]*string, len(s.ExtractedValues))
	for k, v := range s.ExtractedValues {
		if v == nil {
			out[k] = nil
			continue
		}
		val := *v
		out[k] = &val
	}
	return out
}

// ScoresCopy returns a copy of the field scores
func (s *Session) ScoresCopy() map[string]int {
	out := make(map[string]int, len(s.FieldScores))
	for k, v := range s.FieldScores {
		out[k] = v
	}
	return out
}
