package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("no response choices")

// Client answers survey questions on behalf of a respondent.
type Client interface {
	// AnswerChoice expects the model to reply with a bare option number.
	AnswerChoice(ctx context.Context, messages []openai.ChatCompletionMessage) (int, error)
	AnswerText(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
	// Summarize condenses a given answer into one assistant turn for the thread.
	Summarize(ctx context.Context, questionHTML, answer string) (string, error)
}

type Options struct {
	APIKey       string
	BaseURL      string
	AnswerModel  string
	SummaryModel string
	Temperature  float32
	TopP         float32
}

func DefaultOptions() Options {
	return Options{
		AnswerModel:  openai.GPT4o,
		SummaryModel: openai.GPT4oMini,
		Temperature:  0.5,
		TopP:         0.5,
	}
}
