package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotelbot/internal/config"
	"hotelbot/internal/logger"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.uber.org/zap"
)

// ErrEmptyCompletion is returned when the model answers with no choices or no text
var ErrEmptyCompletion = errors.New("language model returned an empty completion")

// OpenAIClient handles OpenAI-compatible chat completions
type OpenAIClient struct {
	client openai.Client
	model  string
	log    *zap.SugaredLogger
}

// NewOpenAIClient creates a client for any OpenAI-compatible base URL.
// SDK retries are disabled: one blocking round trip per request.
func NewOpenAIClient(cfg *config.OpenAIConfig, log *zap.SugaredLogger) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.APIBase != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBase))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	log.Infow("Language model client configured",
		"base_url", cfg.APIBase,
		"model", cfg.ChatModel,
		"api_key", logger.Mask(cfg.APIKey),
	)

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.ChatModel,
		log:    log,
	}
}

// Complete sends prompt as a single user message at temperature 0 and returns the trimmed reply text
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Warnw("Language model request rejected", "status", apiErr.StatusCode, "error", err)
			return "", fmt.Errorf("completion request failed with status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
