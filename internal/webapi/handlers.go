package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/scoring"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// maxScoreRequestBytes caps the size of a scoring request body.
const maxScoreRequestBytes = 1 << 20

// Scorer produces a verdict for a transcript.
type Scorer interface {
	Score(ctx context.Context, transcript models.Transcript, scenario models.Scenario) (*models.ScoreResult, error)
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	scorer          Scorer
	defaultScenario models.Scenario
	logger          *slog.Logger
}

// NewHandlers creates a new Handlers. An empty defaultScenario falls back to
// models.DefaultScenario.
func NewHandlers(scorer Scorer, defaultScenario models.Scenario, logger *slog.Logger) *Handlers {
	if defaultScenario == "" {
		defaultScenario = models.DefaultScenario
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{scorer: scorer, defaultScenario: defaultScenario, logger: logger}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleScore scores the posted transcript. Every call issues exactly one
// judge request; nothing is cached or deduplicated.
func (h *Handlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScoreRequestBytes)

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	scenario := h.defaultScenario
	if req.Scenario != "" {
		parsed, err := models.ParseScenario(req.Scenario)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		scenario = parsed
	}

	result, err := h.scorer.Score(r.Context(), req.Messages, scenario)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scoring.ErrJudgeInvocation) || errors.Is(err, scoring.ErrMalformedResponse) {
			status = http.StatusBadGateway
		}
		h.logger.Error("scoring failed", "scenario", scenario, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ScoreResponse{Score: result})
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/score", h.HandleScore)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
