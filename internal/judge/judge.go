// Package judge invokes the language model that grades role-play transcripts.
//
// A judge receives a single instruction, sent as the only system message, and
// returns the raw text the model produced. Interpreting that text is the
// caller's job.
package judge

import (
	"context"
	"fmt"
)

//go:generate go tool mockgen -destination mock_client.go -package judge . Client

// Engine names a judge backend.
type Engine string

const (
	EngineOpenAI  Engine = "openai"
	EngineCopilot Engine = "copilot"
	EngineMock    Engine = "mock"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTemperature keeps the judge close to the rubric.
	DefaultTemperature = 0.3
)

// Client is a chat-completion style judge.
type Client interface {
	// Complete sends instruction as the sole system message and returns the
	// model's raw text output.
	Complete(ctx context.Context, instruction string, temperature float64) (string, error)
}

// Config selects and configures a judge backend.
type Config struct {
	Engine  Engine
	Model   string
	APIKey  string
	BaseURL string

	// MockResponse is returned verbatim by the mock engine.
	MockResponse string
}

// New builds the judge backend named by cfg.Engine.
func New(cfg Config) (Client, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	switch cfg.Engine {
	case EngineOpenAI, "":
		j, err := NewOpenAI(OpenAIConfig{
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return j, nil
	case EngineCopilot:
		return NewCopilot(cfg.Model, nil), nil
	case EngineMock:
		return NewMockJudge(cfg.MockResponse), nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid judge engine", cfg.Engine)
	}
}
