package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"interviewbot/internal/llm"
	"interviewbot/internal/model"
)

// stubLLM answers completions through handler and counts calls
type stubLLM struct {
	mu       sync.Mutex
	calls    int
	requests []llm.Request
	handler  func(req llm.Request) (string, error)
}

func (s *stubLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.requests = append(s.requests, req)
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		return "", llm.ErrUnavailable
	}
	return handler(req)
}

func (s *stubLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func failingLLM() *stubLLM {
	return &stubLLM{handler: func(llm.Request) (string, error) { return "", llm.ErrUnavailable }}
}

// answerOf pulls the evaluated answer out of an evaluation prompt
func answerOf(req llm.Request) string {
	const marker = "Answer to evaluate: "
	idx := strings.LastIndex(req.Prompt, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(req.Prompt[idx+len(marker):])
}

// memSessions stores sessions as JSON so callers never share pointers with the store
type memSessions struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemSessions() *memSessions {
	return &memSessions{data: map[string][]byte{}}
}

func (m *memSessions) Set(_ context.Context, session *model.Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[session.ID] = b
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	b, ok := m.data[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type memTemplates map[string]*model.Template

func (m memTemplates) GetByID(_ context.Context, id string) (*model.Template, error) {
	return m[id], nil
}

func (m memTemplates) ListActive(context.Context) ([]*model.Template, error) {
	out := []*model.Template{}
	for _, t := range m {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type memArchive struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	err      error
}

func newMemArchive() *memArchive {
	return &memArchive{sessions: map[string]*model.Session{}}
}

func (a *memArchive) Upsert(_ context.Context, session *model.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	cp := *session
	a.sessions[session.ID] = &cp
	return nil
}

func (a *memArchive) GetByID(_ context.Context, id string) (*model.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[id], nil
}

type recordedEvent struct {
	sessionID string
	msgType   string
	payload   interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{sessionID: sessionID, msgType: msgType, payload: payload})
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("lock backend down")
}
