package survey

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nbenliogludev/go-survey-agent/internal/capture"
)

// Conversation is the message thread sent to the model for one respondent.
type Conversation struct {
	messages []openai.ChatCompletionMessage
}

func NewConversation(system string) *Conversation {
	return &Conversation{
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
		},
	}
}

func (c *Conversation) Push(m openai.ChatCompletionMessage) {
	c.messages = append(c.messages, m)
}

func (c *Conversation) PushUser(parts []openai.ChatMessagePart) {
	c.Push(openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: slices.Clone(parts),
	})
}

func (c *Conversation) PushAssistant(text string) {
	c.Push(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: text,
	})
}

// Pop drops the last message; the system message is never removed.
func (c *Conversation) Pop() (openai.ChatCompletionMessage, bool) {
	if len(c.messages) <= 1 {
		return openai.ChatCompletionMessage{}, false
	}
	last := c.messages[len(c.messages)-1]
	c.messages = c.messages[:len(c.messages)-1]
	return last, true
}

func (c *Conversation) Messages() []openai.ChatCompletionMessage {
	return slices.Clone(c.messages)
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// Save overwrites path with the thread in chat-completions JSON form.
func (c *Conversation) Save(path string) error {
	raw, err := json.MarshalIndent(c.messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create transcript dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func imagePart(b64 string) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: capture.DataURL("image/png", b64),
		},
	}
}

func textPart(text string) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: text,
	}
}
