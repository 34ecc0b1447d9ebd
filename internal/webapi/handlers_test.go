package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mentorinc/rolecoach/internal/judge"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/scoring"
)

// fakeScorer implements Scorer for testing.
type fakeScorer struct {
	mu       sync.Mutex
	result   *models.ScoreResult
	err      error
	calls    int
	scenario models.Scenario
	turns    models.Transcript
}

func (f *fakeScorer) Score(_ context.Context, transcript models.Transcript, scenario models.Scenario) (*models.ScoreResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.scenario = scenario
	f.turns = transcript
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeScorer) seen() (int, models.Scenario, models.Transcript) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.scenario, f.turns
}

func newServer(t *testing.T, scorer Scorer, defaultScenario models.Scenario) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewHandlers(scorer, defaultScenario, nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postScore(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/score", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(&fakeScorer{}, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	h.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Version == "" {
		t.Error("expected non-empty version")
	}
}

func TestHandleScore_Success(t *testing.T) {
	improve := "Acknowledge the client's concern first."
	scorer := &fakeScorer{result: &models.ScoreResult{Score: 80, Explanation: "Clear", ToImprove: &improve}}
	srv := newServer(t, scorer, "")

	resp := postScore(t, srv, `{
		"messages": [
			{"role": "system", "content": "setup"},
			{"role": "user", "content": "Hello"},
			{"role": "assistant", "content": "Hi"}
		],
		"scenario": "pm"
	}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var body ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Score == nil || body.Score.Score != 80 {
		t.Fatalf("unexpected score: %+v", body.Score)
	}
	if body.Score.ToImprove == nil || *body.Score.ToImprove != improve {
		t.Errorf("toImprove = %v, want %q", body.Score.ToImprove, improve)
	}
	_, scenario, turns := scorer.seen()
	if scenario != models.ScenarioPeopleManager {
		t.Errorf("scenario = %q, want people-manager", scenario)
	}
	if len(turns) != 3 {
		t.Errorf("expected the full transcript to reach the scorer, got %d turns", len(turns))
	}
}

func TestHandleScore_NullToImproveIsPreserved(t *testing.T) {
	scorer := &fakeScorer{result: &models.ScoreResult{Score: 100, Explanation: "Flawless"}}
	srv := newServer(t, scorer, "")

	resp := postScore(t, srv, `{"messages": []}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var raw map[string]map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	v, ok := raw["score"]["toImprove"]
	if !ok {
		t.Fatal("toImprove key missing from response")
	}
	if v != nil {
		t.Errorf("toImprove = %v, want null", v)
	}
}

func TestHandleScore_DefaultScenario(t *testing.T) {
	tests := []struct {
		name     string
		def      models.Scenario
		expected models.Scenario
	}{
		{"built-in default", "", models.ScenarioRelationshipManager},
		{"configured default", models.ScenarioPeopleManager, models.ScenarioPeopleManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fakeScorer{result: &models.ScoreResult{Score: 50, Explanation: "ok"}}
			srv := newServer(t, scorer, tt.def)

			resp := postScore(t, srv, `{"messages": [{"role": "user", "content": "hi"}]}`)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if _, scenario, _ := scorer.seen(); scenario != tt.expected {
				t.Errorf("scenario = %q, want %q", scenario, tt.expected)
			}
		})
	}
}

func TestHandleScore_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"messages": [`},
		{"unknown scenario", `{"messages": [], "scenario": "sales-coach"}`},
		{"messages wrong type", `{"messages": "hello"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fakeScorer{}
			srv := newServer(t, scorer, "")

			resp := postScore(t, srv, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatal(err)
			}
			if errResp.Code != http.StatusBadRequest || errResp.Error == "" {
				t.Errorf("unexpected error body: %+v", errResp)
			}
			if calls, _, _ := scorer.seen(); calls != 0 {
				t.Errorf("scorer should not be called, got %d calls", calls)
			}
		})
	}
}

func TestHandleScore_ScorerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"judge unreachable", fmt.Errorf("%w: %w", scoring.ErrJudgeInvocation, errors.New("connection refused")), http.StatusBadGateway},
		{"malformed verdict", fmt.Errorf("%w: not json", scoring.ErrMalformedResponse), http.StatusBadGateway},
		{"other failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, &fakeScorer{err: tt.err}, "")

			resp := postScore(t, srv, `{"messages": []}`)
			if resp.StatusCode != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, resp.StatusCode)
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatal(err)
			}
			if errResp.Code != tt.expected {
				t.Errorf("error code = %d, want %d", errResp.Code, tt.expected)
			}
		})
	}
}

func TestHandleScore_MethodNotAllowed(t *testing.T) {
	srv := newServer(t, &fakeScorer{}, "")

	resp, err := http.Get(srv.URL + "/api/score")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHandleScore_WithMockJudge(t *testing.T) {
	mock := judge.NewMockJudge(`{"score":{"score":80,"explanation":"Clear and empathetic","toImprove":null}}`)
	srv := newServer(t, scoring.NewScorer(mock), "")

	resp := postScore(t, srv, `{"messages": [{"role": "user", "content": "How can I help?"}], "scenario": "rm"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body ScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Score.Score != 80 || body.Score.Explanation != "Clear and empathetic" || body.Score.ToImprove != nil {
		t.Errorf("unexpected verdict: %+v", body.Score)
	}
	if mock.Calls() != 1 {
		t.Errorf("expected exactly one judge call, got %d", mock.Calls())
	}
}

func TestHandleScore_MalformedJudgeOutput(t *testing.T) {
	mock := judge.NewMockJudge("Sorry, I can't help.")
	srv := newServer(t, scoring.NewScorer(mock), "")

	resp := postScore(t, srv, `{"messages": []}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed origin", func(t *testing.T) {
		handler := CORSMiddleware(inner, "http://localhost:5173")
		req := httptest.NewRequest(http.MethodPost, "/api/score", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
			t.Errorf("Allow-Methods = %q, want POST", got)
		}
	})

	t.Run("disallowed origin", func(t *testing.T) {
		handler := CORSMiddleware(inner, "http://localhost:5173")
		req := httptest.NewRequest(http.MethodPost, "/api/score", nil)
		req.Header.Set("Origin", "http://evil.test")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no Allow-Origin header, got %q", got)
		}
	})

	t.Run("no origins configured", func(t *testing.T) {
		handler := CORSMiddleware(inner)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no Allow-Origin header, got %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		handler := CORSMiddleware(inner, "http://localhost:5173")
		req := httptest.NewRequest(http.MethodOptions, "/api/score", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	})
}
