package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"interviewbot/internal/cache"
	"interviewbot/internal/config"
	"interviewbot/internal/logger"
	"interviewbot/internal/model"
	"interviewbot/internal/observability/metrics"
	"interviewbot/internal/repository"
)

const (
	closingMessage  = "Perfect! Thank you for confirming. Your interview is now complete."
	terminalMessage = "This interview has already been completed."
	emptyMessage    = "Please provide an answer so we can continue."
	unclearMessage  = "I want to make sure I have everything right. Please reply \"yes\" if the summary above is correct, or tell me what needs to be changed."
	genericReask    = "I need a little more information to answer this one."
	restartMessage  = "No problem, let's go through your answers again. Reply \"keep\" to any question whose answer is already right."
	reviseMessage   = "No problem, let's update that."

	summaryIntro    = "Thank you for sharing all that information! Let me summarize what I've gathered:"
	summaryQuestion = "Does this look accurate? Please confirm if this is correct, or let me know what needs to be changed."
	notProvided     = "(not provided)"
)

// InterviewOptions tunes the conversation engine
type InterviewOptions struct {
	// ContextWindow is how many recent log entries are passed to the evaluator
	ContextWindow int
	RejectPolicy  string
}

// InterviewService drives the per-session state machine: it collects fields
// one at a time, asks for confirmation, and finalizes the session.
type InterviewService struct {
	templates   *TemplateService
	sessions    cache.SessionCache
	archive     repository.SessionRepo
	evaluator   *EvaluatorService
	classifier  *ConfirmationService
	locker      SessionLocker
	broadcaster Broadcaster
	metrics     *metrics.EngineMetrics
	log         *logger.Logger
	opts        InterviewOptions

	now   func() time.Time
	newID func() string
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	templates *TemplateService,
	sessions cache.SessionCache,
	archive repository.SessionRepo,
	evaluator *EvaluatorService,
	classifier *ConfirmationService,
	locker SessionLocker,
	opts InterviewOptions,
	m *metrics.EngineMetrics,
	log *logger.Logger,
) *InterviewService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if log == nil {
		log = logger.NewNop()
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = 6
	}
	if opts.RejectPolicy != config.RejectRevise {
		opts.RejectPolicy = config.RejectRestart
	}
	return &InterviewService{
		templates:  templates,
		sessions:   sessions,
		archive:    archive,
		evaluator:  evaluator,
		classifier: classifier,
		locker:     locker,
		metrics:    m,
		log:        log,
		opts:       opts,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start creates a session for the template and returns the first prompt
func (s *InterviewService) Start(ctx context.Context, templateID string) (*model.StartResponse, error) {
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(tpl.Fields) == 0 {
		return nil, fmt.Errorf("%w: template %s has no fields", model.ErrInvalidTemplate, templateID)
	}

	now := s.now()
	session := model.NewSession(s.newID(), tpl.ID, now)
	message := tpl.Fields[0].Prompt
	session.Append(model.SenderAssistant, message, now)

	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.ObserveSessionStarted()
	s.log.Info("interview started", "session_id", session.ID, "template_id", tpl.ID)
	return &model.StartResponse{Session: session, Message: message}, nil
}

// GetSession returns the full session, falling back to the archive for completed sessions
func (s *InterviewService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.loadSession(ctx, sessionID)
}

// Status returns the progress view of a session
func (s *InterviewService) Status(ctx context.Context, sessionID string) (*model.Progress, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fields, err := s.templates.Fields(ctx, session.TemplateID)
	if err != nil {
		return nil, err
	}
	p := Progress(session, len(fields))
	return &p, nil
}

// SubmitTurn processes one user utterance. Turns for the same session are
// serialized by the locker; the session is read, advanced and written inside the lock.
func (s *InterviewService) SubmitTurn(ctx context.Context, sessionID, utterance string) (*model.TurnResponse, error) {
	release, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionBusy, err)
	}
	defer release()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Phase == model.PhaseCompleted {
		s.metrics.ObserveTurn(string(session.Phase), "terminal")
		return s.respond(session, terminalMessage), nil
	}

	tpl, err := s.templates.Get(ctx, session.TemplateID)
	if err != nil {
		return nil, err
	}

	answer := strings.TrimSpace(utterance)
	if answer == "" {
		s.metrics.ObserveTurn(string(session.Phase), "empty")
		return s.respond(session, emptyMessage), nil
	}

	phase := session.Phase
	now := s.now()
	session.Append(model.SenderUser, answer, now)

	var reply, outcome string
	switch session.Phase {
	case model.PhaseAwaitingConfirmation:
		reply, outcome = s.confirm(ctx, session, tpl, answer, now)
	default:
		reply, outcome = s.collect(ctx, session, tpl, answer)
	}

	session.Append(model.SenderAssistant, reply, now)
	session.UpdatedAt = now
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.ObserveTurn(string(phase), outcome)
	s.log.Info("turn processed", "session_id", session.ID, "phase", session.Phase, "outcome", outcome, "field_index", session.CurrentFieldIndex)

	if session.Phase == model.PhaseCompleted {
		s.archiveSession(ctx, session)
	}
	s.publish(session, tpl, reply)

	return s.respond(session, reply), nil
}

// collect evaluates the answer for the current field and advances on a sufficient answer
func (s *InterviewService) collect(ctx context.Context, session *model.Session, tpl *model.Template, answer string) (string, string) {
	if session.CurrentFieldIndex >= len(tpl.Fields) {
		session.Phase = model.PhaseAwaitingConfirmation
		session.CurrentFieldIndex = len(tpl.Fields)
		return summaryMessage(tpl, session), "summary"
	}
	field := tpl.Fields[session.CurrentFieldIndex]

	var result *model.EvaluationResult
	if session.HasValue(field.Name) && isKeepPhrase(answer) {
		value := *session.ExtractedValues[field.Name]
		result = &model.EvaluationResult{
			Sufficient:     true,
			Score:          session.FieldScores[field.Name],
			ExtractedValue: &value,
			Source:         model.SourceReaffirmed,
		}
	} else {
		var err error
		result, err = s.evaluator.Evaluate(ctx, field, answer, session.RecentLog(s.opts.ContextWindow))
		if err != nil {
			return emptyMessage, "empty"
		}
	}

	if !result.Sufficient {
		feedback := genericReask
		if result.Feedback != nil && *result.Feedback != "" {
			feedback = *result.Feedback
		}
		return feedback + "\n\n" + promptFor(field, session), "retry"
	}

	session.ExtractedValues[field.Name] = result.ExtractedValue
	session.FieldScores[field.Name] = model.ClampScore(result.Score)

	next := s.nextIndex(session, tpl, session.CurrentFieldIndex+1)
	session.CurrentFieldIndex = next
	if next < len(tpl.Fields) {
		if result.Source == model.SourceReaffirmed {
			return promptFor(tpl.Fields[next], session), "reaffirmed"
		}
		return promptFor(tpl.Fields[next], session), "advanced"
	}

	session.Phase = model.PhaseAwaitingConfirmation
	session.Revising = false
	return summaryMessage(tpl, session), "summary"
}

// nextIndex returns from, or while revising, the first field at or after from without a value
func (s *InterviewService) nextIndex(session *model.Session, tpl *model.Template, from int) int {
	if !session.Revising {
		return from
	}
	for i := from; i < len(tpl.Fields); i++ {
		if !session.HasValue(tpl.Fields[i].Name) {
			return i
		}
	}
	return len(tpl.Fields)
}

// confirm classifies a reply to the summary
func (s *InterviewService) confirm(ctx context.Context, session *model.Session, tpl *model.Template, answer string, now time.Time) (string, string) {
	switch s.classifier.Classify(ctx, answer) {
	case model.VerdictAccept:
		session.Phase = model.PhaseCompleted
		session.IsCompleted = true
		session.SessionData = session.ExtractedCopy()
		session.CompletedAt = &now
		return closingMessage, "completed"

	case model.VerdictReject:
		session.Phase = model.PhaseCollecting
		if s.opts.RejectPolicy == config.RejectRevise {
			session.CurrentFieldIndex = targetField(tpl, answer)
			session.Revising = true
			return reviseMessage + "\n\n" + promptFor(tpl.Fields[session.CurrentFieldIndex], session), "rejected"
		}
		session.CurrentFieldIndex = 0
		session.Revising = false
		return restartMessage + "\n\n" + promptFor(tpl.Fields[0], session), "rejected"
	}
	return unclearMessage, "unclear"
}

func (s *InterviewService) loadSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session != nil {
		return session, nil
	}
	if s.archive != nil {
		session, err = s.archive.GetByID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load archived session: %w", err)
		}
		if session != nil {
			return session, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *InterviewService) archiveSession(ctx context.Context, session *model.Session) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Upsert(ctx, session); err != nil {
		s.log.Error("failed to archive completed session", "session_id", session.ID, "error", err)
	}
}

func (s *InterviewService) publish(session *model.Session, tpl *model.Template, reply string) {
	if s.broadcaster == nil {
		return
	}
	event := model.TurnEvent{
		SessionID: session.ID,
		Phase:     session.Phase,
		Response:  reply,
		Progress:  Progress(session, len(tpl.Fields)),
	}
	s.broadcaster.BroadcastToSession(session.ID, EventTurnProcessed, event)
	if session.Phase == model.PhaseCompleted {
		s.broadcaster.BroadcastToSession(session.ID, EventInterviewCompleted, event)
	}
}

func (s *InterviewService) respond(session *model.Session, reply string) *model.TurnResponse {
	resp := &model.TurnResponse{
		Response:             reply,
		IsComplete:           session.IsCompleted,
		AwaitingConfirmation: session.Phase == model.PhaseAwaitingConfirmation,
		FieldScores:          session.ScoresCopy(),
		SessionData:          session.SessionData,
	}
	if session.Phase != model.PhaseCollecting {
		resp.ExtractedData = session.ExtractedCopy()
	}
	return resp
}

// promptFor asks a field, showing the current answer when one is already stored
func promptFor(field model.Field, session *model.Session) string {
	if !session.HasValue(field.Name) {
		return field.Prompt
	}
	return fmt.Sprintf("%s\n\n(Current answer: %s)", field.Prompt, *session.ExtractedValues[field.Name])
}

func summaryMessage(tpl *model.Template, session *model.Session) string {
	var b strings.Builder
	b.WriteString(summaryIntro)
	b.WriteString("\n\n")
	for _, f := range tpl.Fields {
		value := notProvided
		if session.HasValue(f.Name) {
			value = *session.ExtractedValues[f.Name]
		}
		fmt.Fprintf(&b, "• **%s**: %s\n", model.DisplayName(f.Name), value)
	}
	b.WriteString("\n")
	b.WriteString(summaryQuestion)
	return b.String()
}

var promptStopwords = map[string]bool{
	"about": true, "would": true, "could": true, "there": true, "their": true,
	"which": true, "where": true, "these": true, "those": true, "please": true,
}

// targetField picks the field a rejection talks about: first by field name
// words, then by longer prompt words. Defaults to the first field.
func targetField(tpl *model.Template, reply string) int {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(reply), notWordRune) {
		words[w] = true
	}

	for i, f := range tpl.Fields {
		for _, w := range strings.FieldsFunc(strings.ToLower(f.Name), notWordRune) {
			if len(w) >= 3 && words[w] {
				return i
			}
		}
	}
	for i, f := range tpl.Fields {
		for _, w := range strings.FieldsFunc(strings.ToLower(f.Prompt), notWordRune) {
			if len(w) >= 5 && !promptStopwords[w] && words[w] {
				return i
			}
		}
	}
	return 0
}

func notWordRune(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
}
