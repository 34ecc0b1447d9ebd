// Package scoring grades a role-play transcript with a language model judge.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mentorinc/rolecoach/internal/judge"
	"github.com/mentorinc/rolecoach/internal/models"
	"github.com/mentorinc/rolecoach/internal/utils"
)

var (
	// ErrJudgeInvocation means the judge could not be reached or failed to answer.
	ErrJudgeInvocation = errors.New("judge invocation failed")

	// ErrMalformedResponse means the judge answered with something other than
	// a valid verdict document.
	ErrMalformedResponse = errors.New("malformed judge response")
)

// Scorer turns transcripts into judge verdicts. It is safe for concurrent use;
// every call to [Scorer.Score] makes exactly one judge call.
type Scorer struct {
	judge       judge.Client
	temperature float64
	logger      *slog.Logger
}

// Option configures a [Scorer].
type Option func(*Scorer)

// WithTemperature overrides [judge.DefaultTemperature].
func WithTemperature(temperature float64) Option {
	return func(s *Scorer) { s.temperature = temperature }
}

// WithLogger sets the logger used to record verdicts.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) { s.logger = logger }
}

// NewScorer creates a Scorer that grades with j.
func NewScorer(j judge.Client, opts ...Option) *Scorer {
	s := &Scorer{
		judge:       j,
		temperature: judge.DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Instruction returns the judge instruction for transcript without sending it.
func (s *Scorer) Instruction(transcript models.Transcript, scenario models.Scenario) (string, error) {
	if scenario == "" {
		scenario = models.DefaultScenario
	}
	return BuildInstruction(RenderTranscript(transcript, scenario), scenario)
}

// Score grades transcript under scenario. An empty scenario means
// [models.DefaultScenario]. Transcripts without judged turns are still sent.
func (s *Scorer) Score(ctx context.Context, transcript models.Transcript, scenario models.Scenario) (*models.ScoreResult, error) {
	if scenario == "" {
		scenario = models.DefaultScenario
	}

	instruction, err := s.Instruction(transcript, scenario)
	if err != nil {
		return nil, err
	}

	raw, err := s.judge.Complete(ctx, instruction, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJudgeInvocation, err)
	}

	result, err := ParseVerdict(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "Judge returned an unusable verdict", "raw", utils.Truncate(raw), "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transcript scored",
		"scenario", scenario,
		"turns", len(transcript.Judged()),
		"score", result.Score,
		"perfect", result.Perfect())

	return result, nil
}
