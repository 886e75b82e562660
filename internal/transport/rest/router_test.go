package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewbot/internal/cache"
	"interviewbot/internal/llm"
	"interviewbot/internal/model"
	"interviewbot/internal/observability/metrics"
	"interviewbot/internal/service"
	"interviewbot/internal/transport/ws"
)

type staticTemplates map[string]*model.Template

func (s staticTemplates) GetByID(_ context.Context, id string) (*model.Template, error) {
	return s[id], nil
}

func (s staticTemplates) ListActive(context.Context) ([]*model.Template, error) {
	out := []*model.Template{}
	for _, t := range s {
		out = append(out, t)
	}
	return out, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	templates := staticTemplates{"onboarding": {
		ID:       "onboarding",
		Name:     "Onboarding",
		IsActive: true,
		Fields: []model.Field{
			{Name: "name", Prompt: "What is your name?", Type: model.FieldTypeString},
			{Name: "city", Prompt: "Which city do you live in?", Type: model.FieldTypeString},
		},
	}}

	reg := prometheus.NewRegistry()
	m := metrics.NewEngineMetrics(reg)
	templateSvc := service.NewTemplateService(cache.NewTemplateCache(rdb, templates, time.Minute), templates)
	interviewSvc := service.NewInterviewService(
		templateSvc,
		cache.NewSessionCache(rdb, time.Hour),
		nil,
		service.NewEvaluatorService(llm.Disabled{}, "", m, nil),
		service.NewConfirmationService(llm.Disabled{}, "", m, nil),
		cache.NewTurnLock(rdb, time.Minute, time.Second),
		service.InterviewOptions{},
		m,
		nil,
	)
	hub := ws.NewHub(nil)
	t.Cleanup(hub.Close)
	interviewSvc.SetBroadcaster(hub)

	srv := httptest.NewServer(NewRouter(&Container{
		InterviewService: interviewSvc,
		TemplateService:  templateSvc,
		WSHub:            hub,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestInterviewFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	var start model.StartResponse
	require.Equal(t, http.StatusCreated, doJSON(t, "POST", srv.URL+"/v1/interviews/start/onboarding", "", &start))
	assert.Equal(t, "What is your name?", start.Message)
	id := start.Session.ID
	require.NotEmpty(t, id)

	chatURL := srv.URL + "/v1/interviews/sessions/" + id + "/chat"

	var turn model.TurnResponse
	require.Equal(t, http.StatusOK, doJSON(t, "POST", chatURL, `{"message":"Jordan"}`, &turn))
	assert.Equal(t, "Which city do you live in?", turn.Response)
	assert.Nil(t, turn.ExtractedData)

	var progress model.Progress
	require.Equal(t, http.StatusOK, doJSON(t, "GET", srv.URL+"/v1/interviews/sessions/"+id+"/status", "", &progress))
	assert.Equal(t, 2, progress.CurrentQuestion)
	assert.Equal(t, 50.0, progress.ProgressPercentage)

	turn = model.TurnResponse{}
	require.Equal(t, http.StatusOK, doJSON(t, "POST", chatURL, `{"message":"Lisbon"}`, &turn))
	assert.True(t, turn.AwaitingConfirmation)
	assert.Equal(t, "Lisbon", *turn.ExtractedData["city"])

	turn = model.TurnResponse{}
	require.Equal(t, http.StatusOK, doJSON(t, "POST", chatURL, `{"message":"yes, looks good"}`, &turn))
	assert.True(t, turn.IsComplete)
	assert.Equal(t, "Jordan", *turn.SessionData["name"])

	var session model.Session
	require.Equal(t, http.StatusOK, doJSON(t, "GET", srv.URL+"/v1/interviews/sessions/"+id, "", &session))
	assert.Equal(t, model.PhaseCompleted, session.Phase)
	assert.Len(t, session.ConversationLog, 7)
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, doJSON(t, "POST", srv.URL+"/v1/interviews/start/missing", "", &body))
	assert.Equal(t, "template not found", body["error"])

	assert.Equal(t, http.StatusNotFound, doJSON(t, "GET", srv.URL+"/v1/interviews/sessions/nope/status", "", &body))
	assert.Equal(t, http.StatusNotFound, doJSON(t, "POST", srv.URL+"/v1/interviews/sessions/nope/chat", `{"message":"hi"}`, &body))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, "POST", srv.URL+"/v1/interviews/sessions/nope/chat", `{"message":`, &body))
	assert.Equal(t, http.StatusNotFound, doJSON(t, "GET", srv.URL+"/v1/templates/missing", "", &body))
}

func TestTemplatesHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]string
	require.Equal(t, http.StatusOK, doJSON(t, "GET", srv.URL+"/health", "", &health))
	assert.Equal(t, "ok", health["status"])

	var list struct {
		Templates []model.Template `json:"templates"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, "GET", srv.URL+"/v1/templates", "", &list))
	require.Len(t, list.Templates, 1)
	assert.Equal(t, "onboarding", list.Templates[0].ID)

	var tpl model.Template
	require.Equal(t, http.StatusOK, doJSON(t, "GET", srv.URL+"/v1/templates/onboarding", "", &tpl))
	assert.Len(t, tpl.Fields, 2)

	require.Equal(t, http.StatusCreated, doJSON(t, "POST", srv.URL+"/v1/interviews/start/onboarding", "", nil))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "interview_engine_sessions_started_total 1")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest("OPTIONS", srv.URL+"/v1/interviews/start/onboarding", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
