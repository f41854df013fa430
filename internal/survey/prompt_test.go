package survey

import (
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-survey-agent/internal/browser"
)

func TestSystemPrompt(t *testing.T) {
	p := respondent
	p.StudentStatus = "Yes"

	prompt := SystemPrompt(p, "")

	for _, want := range []string{
		"34 year old Female born in Turkey with ethnicity Turkish who lives in Germany, Nordrhein-Westfalen.",
		"You are a student and your work status is: Full-time.",
		"- German state: Nordrhein-Westfalen",
		"- Student: You are a student",
		"only return the number of the answer you choose",
		"ONLY the html question provided",
	} {
		assert.Contains(t, prompt, want)
	}

	assert.Contains(t, SystemPrompt(p, "Bayern"), "- German state: Bayern")
}

func TestQuestionText(t *testing.T) {
	assert.Equal(t,
		"<select/> \n\n Answer this question as if you were the respondent. Only return your answer.",
		QuestionText("<select/>"))
}

func TestRulesFollowDetectionOrder(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 5)

	var kinds []string
	for _, r := range rules {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []string{"cbc_task", "select", "numeric", "response_column", "textarea"}, kinds)
	assert.Equal(t, ".question.numeric", rules[2].Selector)
	assert.Equal(t, browser.OuterHTML, rules[1].HTML)
	assert.Equal(t, browser.InnerHTML, rules[0].HTML)
}

func TestSortQuestions(t *testing.T) {
	in := []browser.Element{
		{ID: "a", Y: 200, X: 0},
		{ID: "b", Y: 100, X: 300},
		{ID: "c", Y: 100, X: 10},
		{ID: "d", Y: 100, X: 10},
	}
	out := SortQuestions(in)

	var ids []string
	for _, e := range out {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"c", "d", "b", "a"}, ids)
	assert.Equal(t, "a", in[0].ID, "input must not be reordered")
}

func TestConversation(t *testing.T) {
	c := NewConversation("persona")
	assert.Equal(t, 1, c.Len())

	_, ok := c.Pop()
	assert.False(t, ok, "system message stays")

	parts := []openai.ChatMessagePart{imagePart("AAAA"), textPart("q")}
	c.PushUser(parts)
	parts[1].Text = "mutated"

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "q", msgs[1].MultiContent[1].Text)
	assert.Equal(t, "data:image/png;base64,AAAA", msgs[1].MultiContent[0].ImageURL.URL)

	last, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, openai.ChatMessageRoleUser, last.Role)

	c.PushAssistant("summary")
	path := filepath.Join(t.TempDir(), "nested", "messages.json")
	require.NoError(t, c.Save(path))
	assert.FileExists(t, path)
}

func TestQuestionLabel(t *testing.T) {
	assert.Equal(t, "How old are you? years", questionLabel("<div><b>How old</b>\n are you? <input> years</div>"))
	assert.Equal(t, "Education", questionLabel(`<label>Education</label><select><option>Primary</option></select>`))

	long := "<p>" + strings.Repeat("word ", 40) + "</p>"
	label := questionLabel(long)
	assert.True(t, strings.HasSuffix(label, "..."))
	assert.Len(t, []rune(label), labelLimit+3)
}
