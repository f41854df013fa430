package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func (c *OpenAIClient) Summarize(ctx context.Context, questionHTML, answer string) (string, error) {
	summary, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.opts.SummaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(summaryUserTemplate, questionHTML, answer)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}

	c.log.Info("Answer summary", zap.String("summary", summary))
	return summary, nil
}
