package service

// Live feed event types
const (
	EventTurnProcessed      = "turn_processed"
	EventInterviewCompleted = "interview_completed"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
}
