package webapi

import "github.com/mentorinc/rolecoach/internal/models"

// ScoreRequest is the body of POST /api/score.
type ScoreRequest struct {
	Messages models.Transcript `json:"messages"`
	// Scenario accepts the full tag or its short code; empty selects the
	// server's default scenario.
	Scenario string `json:"scenario,omitempty"`
}

// ScoreResponse wraps the judge's verdict.
type ScoreResponse struct {
	Score *models.ScoreResult `json:"score"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
