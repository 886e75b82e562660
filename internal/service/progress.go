package service

import (
	"math"

	"interviewbot/internal/model"
)

// Progress derives the status view of a session. current_question is 1-based
// and capped at total; the percentage is 100 outside the collecting phase.
func Progress(session *model.Session, total int) model.Progress {
	p := model.Progress{
		SessionID:      session.ID,
		Phase:          session.Phase,
		TotalQuestions: total,
		IsCompleted:    session.IsCompleted,
	}

	if session.Phase != model.PhaseCollecting {
		p.CurrentQuestion = total
		p.ProgressPercentage = 100
		return p
	}

	p.CurrentQuestion = session.CurrentFieldIndex + 1
	if p.CurrentQuestion > total {
		p.CurrentQuestion = total
	}
	if total > 0 {
		p.ProgressPercentage = math.Round(100 * float64(session.CurrentFieldIndex) / float64(total))
	}
	return p
}
