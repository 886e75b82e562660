package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"interviewbot/internal/logger"
	"interviewbot/internal/model"
	"interviewbot/internal/service"
)

// InterviewHandler handles interview session endpoints
type InterviewHandler struct {
	interviewSvc *service.InterviewService
	log          *logger.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(interviewSvc *service.InterviewService, log *logger.Logger) *InterviewHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &InterviewHandler{interviewSvc: interviewSvc, log: log}
}

// Start handles POST /v1/interviews/start/{templateId}
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.interviewSvc.Start(r.Context(), mux.Vars(r)["templateId"])
	if err != nil {
		h.logFailure("start interview", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetSession handles GET /v1/interviews/sessions/{sessionId}
func (h *InterviewHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.GetSession(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.logFailure("get session", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Chat handles POST /v1/interviews/sessions/{sessionId}/chat
func (h *InterviewHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.interviewSvc.SubmitTurn(r.Context(), mux.Vars(r)["sessionId"], req.Message)
	if err != nil {
		h.logFailure("submit turn", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status handles GET /v1/interviews/sessions/{sessionId}/status
func (h *InterviewHandler) Status(w http.ResponseWriter, r *http.Request) {
	progress, err := h.interviewSvc.Status(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		h.logFailure("session status", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *InterviewHandler) logFailure(op string, err error) {
	h.log.Warn("request failed", "op", op, "error", err)
}
