package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"interviewbot/internal/logger"
	"interviewbot/internal/service"
	"interviewbot/internal/transport/rest/handler"
	"interviewbot/internal/transport/rest/middleware"
	"interviewbot/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	InterviewService *service.InterviewService
	TemplateService  *service.TemplateService
	WSHub            *ws.Hub
	Logger           *logger.Logger

	// MetricsHandler serves /metrics; defaults to the global Prometheus registry
	MetricsHandler http.Handler
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	log := c.Logger
	if log == nil {
		log = logger.NewNop()
	}
	metricsHandler := c.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := mux.NewRouter()

	// Initialize handlers
	interviewHandler := handler.NewInterviewHandler(c.InterviewService, log)
	templateHandler := handler.NewTemplateHandler(c.TemplateService)
	wsHandler := ws.NewHandler(c.WSHub, c.InterviewService, c.AllowedOrigins, log)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLogger(log))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", metricsHandler).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/templates", templateHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/templates/{templateId}", templateHandler.Get).Methods("GET", "OPTIONS")

	v1.HandleFunc("/interviews/start/{templateId}", interviewHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/sessions/{sessionId}", interviewHandler.GetSession).Methods("GET", "OPTIONS")
	v1.HandleFunc("/interviews/sessions/{sessionId}/chat", interviewHandler.Chat).Methods("POST", "OPTIONS")
	v1.HandleFunc("/interviews/sessions/{sessionId}/status", interviewHandler.Status).Methods("GET", "OPTIONS")

	// WebSocket live feed
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	allowedOrigins = strings.TrimSpace(allowedOrigins)
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
