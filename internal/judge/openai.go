package judge

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mentorinc/rolecoach/internal/utils"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures the OpenAI chat completions judge.
type OpenAIConfig struct {
	Model  string
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a proxy or a test server.
	BaseURL string
}

type openAIJudge struct {
	model  string
	client openai.Client
}

// NewOpenAI creates a judge backed by the OpenAI chat completions API.
// Retries are disabled: a failed call is reported to the caller as-is.
func NewOpenAI(cfg OpenAIConfig) (*openAIJudge, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai judge requires an API key (set OPENAI_API_KEY)")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &openAIJudge{
		model:  model,
		client: openai.NewClient(opts...),
	}, nil
}

// Complete implements [Client].
func (j *openAIJudge) Complete(ctx context.Context, instruction string, temperature float64) (string, error) {
	completion, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("judge returned no choices")
	}

	content := completion.Choices[0].Message.Content
	slog.DebugContext(ctx, "Judge completion received", "model", completion.Model, "content", utils.Truncate(content))
	return content, nil
}
