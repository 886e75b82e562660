package model

// ChatRequest is the body of a submitted turn
type ChatRequest struct {
	Message string `json:"message"`
}

// TurnResponse is returned for every processed turn
type TurnResponse struct {
	Response             string             `json:"response"`
	IsComplete           bool               `json:"isComplete"`
	AwaitingConfirmation bool               `json:"awaitingConfirmation"`
	ExtractedData        map[string]*string `json:"extractedData,omitempty"` // only once awaiting confirmation or completed
	FieldScores          map[string]int     `json:"fieldScores"`
	SessionData          map[string]*string `json:"sessionData,omitempty"`
}

// StartResponse is returned when an interview is started
type StartResponse struct {
	Session *Session `json:"session"`
	Message string   `json:"message"`
}

// Progress is the read-only status view of a session
type Progress struct {
	SessionID          string  `json:"sessionId"`
	Phase              Phase   `json:"phase"`
	CurrentQuestion    int     `json:"currentQuestion"`
	TotalQuestions     int     `json:"totalQuestions"`
	ProgressPercentage float64 `json:"progressPercentage"`
	IsCompleted        bool    `json:"isCompleted"`
}

// TurnEvent is published to live feed watchers after each processed turn
type TurnEvent struct {
	SessionID string   `json:"sessionId"`
	Phase     Phase    `json:"phase"`
	Response  string   `json:"response"`
	Progress  Progress `json:"progress"`
}
