package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/mentorinc/rolecoach/internal/utils"
)

// copilotSession is the part of [*copilot.Session] the judge uses.
type copilotSession interface {
	On(handler copilot.SessionEventHandler) func()
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)
}

// copilotClient is the part of [*copilot.Client] the judge uses.
type copilotClient interface {
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)
	Stop() error
}

// newCopilotClientFn creates the underlying copilot client. Tests replace it.
type newCopilotClientFn func(options *copilot.ClientOptions) copilotClient

type copilotJudge struct {
	model     string
	newClient newCopilotClientFn
}

// NewCopilot creates a judge that grades through a GitHub Copilot session,
// using the logged in user's credentials. A nil newClient uses the real SDK.
func NewCopilot(model string, newClient newCopilotClientFn) *copilotJudge {
	if newClient == nil {
		newClient = newCopilotClient
	}
	return &copilotJudge{model: model, newClient: newClient}
}

// Complete implements [Client]. Copilot sessions do not expose sampling
// temperature, so temperature is only logged.
func (j *copilotJudge) Complete(ctx context.Context, instruction string, temperature float64) (string, error) {
	client := j.newClient(&copilot.ClientOptions{
		AutoStart:       utils.Ptr(true),
		AutoRestart:     utils.Ptr(true),
		UseLoggedInUser: utils.Ptr(true),
		LogLevel:        "error",
	})

	defer func() {
		if err := client.Stop(); err != nil {
			slog.ErrorContext(ctx, "error stopping copilot client for judge", "error", err)
		}
	}()

	session, err := client.CreateSession(ctx, &copilot.SessionConfig{
		Model:     j.model,
		Streaming: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start copilot session: %w", err)
	}

	unregister := session.On(utils.JudgeEventToSlog)
	defer unregister()

	slog.DebugContext(ctx, "Sending judge instruction over copilot", "model", j.model, "temperature", temperature)

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: instruction,
		Mode:   "enqueue",
	})
	if err != nil {
		return "", fmt.Errorf("failed to send judge instruction: %w", err)
	}

	if resp == nil || resp.Data.Content == nil {
		return "", errors.New("copilot judge returned no content")
	}

	return *resp.Data.Content, nil
}

func newCopilotClient(options *copilot.ClientOptions) copilotClient {
	return &copilotClientWrapper{inner: copilot.NewClient(options)}
}

type copilotClientWrapper struct {
	inner *copilot.Client
}

func (w *copilotClientWrapper) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	sess, err := w.inner.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (w *copilotClientWrapper) Stop() error {
	return w.inner.Stop()
}
