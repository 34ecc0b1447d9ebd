package judge

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockJudgeResponse is what the mock judge returns when no response is configured.
const MockJudgeResponse = `{"score":{"score":75,"explanation":"Mock judge: the replies were polite and on topic.","toImprove":"Mock judge: ask one more clarifying question before proposing a solution."}}`

// MockJudge returns a fixed response without contacting any model. It is used
// for offline runs and demos.
type MockJudge struct {
	response string
	calls    atomic.Int64
}

// NewMockJudge creates a mock judge. An empty response uses [MockJudgeResponse].
func NewMockJudge(response string) *MockJudge {
	if response == "" {
		response = MockJudgeResponse
	}
	return &MockJudge{response: response}
}

// Complete implements [Client].
func (m *MockJudge) Complete(ctx context.Context, instruction string, temperature float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("mock judge: %w", err)
	}
	m.calls.Add(1)
	return m.response, nil
}

// Calls reports how many times Complete succeeded.
func (m *MockJudge) Calls() int {
	return int(m.calls.Load())
}
