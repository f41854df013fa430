package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type capturedRequest struct {
	Model       string                         `json:"model"`
	Temperature float64                        `json:"temperature"`
	TopP        float64                        `json:"top_p"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
}

type fakeAPI struct {
	mu       sync.Mutex
	replies  []string
	requests []capturedRequest
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}

	var req capturedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	var choices []openai.ChatCompletionChoice
	if len(f.replies) > 0 {
		choices = append(choices, openai.ChatCompletionChoice{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.replies[0]},
			FinishReason: openai.FinishReasonStop,
		})
		f.replies = f.replies[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Model:   req.Model,
		Choices: choices,
	})
}

func newTestClient(t *testing.T, api *fakeAPI) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	opts := DefaultOptions()
	opts.APIKey = "test-key"
	opts.BaseURL = srv.URL + "/v1"

	c, err := NewOpenAIClient(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func thread() []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "persona"},
		{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: "<select>...</select>"},
		}},
	}
}

func TestAnswerChoice(t *testing.T) {
	api := &fakeAPI{replies: []string{" 3\n"}}
	c := newTestClient(t, api)

	n, err := c.AnswerChoice(context.Background(), thread())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "gpt-4o", req.Model)
	assert.InDelta(t, 0.5, req.Temperature, 1e-6)
	assert.InDelta(t, 0.5, req.TopP, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "<select>...</select>", req.Messages[1].MultiContent[0].Text)
}

func TestAnswerChoice_NotANumber(t *testing.T) {
	c := newTestClient(t, &fakeAPI{replies: []string{"Option B"}})

	_, err := c.AnswerChoice(context.Background(), thread())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Option B"`)
}

func TestAnswerText(t *testing.T) {
	c := newTestClient(t, &fakeAPI{replies: []string{"I cycle to work most days."}})

	text, err := c.AnswerText(context.Background(), thread())
	require.NoError(t, err)
	assert.Equal(t, "I cycle to work most days.", text)
}

func TestSummarize(t *testing.T) {
	api := &fakeAPI{replies: []string{"The respondent picked option 2."}}
	c := newTestClient(t, api)

	summary, err := c.Summarize(context.Background(), "<div>Q</div>", "2")
	require.NoError(t, err)
	assert.Equal(t, "The respondent picked option 2.", summary)

	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "<div>Q</div> \n\n I answered this question with the following answer: 2", req.Messages[1].Content)
}

func TestNoChoices(t *testing.T) {
	c := newTestClient(t, &fakeAPI{})

	_, err := c.AnswerText(context.Background(), thread())
	assert.True(t, errors.Is(err, ErrNoChoices))
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(DefaultOptions(), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestParseChoice(t *testing.T) {
	for in, want := range map[string]int{"1": 1, " 4 ": 4, "12\n": 12, "-1": -1} {
		got, err := ParseChoice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "two", "2.", "'2'"} {
		_, err := ParseChoice(in)
		assert.Error(t, err, in)
	}
}
