package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIClient struct {
	client *openai.Client
	opts   Options
	log    *zap.Logger
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(opts Options, log *zap.Logger) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is not set (API_survey or OPENAI_API_KEY)")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
		log:    log.Named("llm"),
	}, nil
}

func (c *OpenAIClient) AnswerChoice(ctx context.Context, messages []openai.ChatCompletionMessage) (int, error) {
	content, err := c.answer(ctx, messages)
	if err != nil {
		return 0, err
	}
	return ParseChoice(content)
}

func (c *OpenAIClient) AnswerText(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	return c.answer(ctx, messages)
}

func (c *OpenAIClient) answer(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	c.log.Debug("Answer request", zap.String("model", c.opts.AnswerModel), zap.Int("messages", len(messages)))

	return c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.opts.AnswerModel,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
	})
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// ParseChoice reads a reply like " 2\n" as an option number.
func ParseChoice(content string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return 0, fmt.Errorf("expected an option number, got %q", content)
	}
	return n, nil
}
