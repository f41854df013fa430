package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nbenliogludev/go-survey-agent/internal/config"
	"github.com/nbenliogludev/go-survey-agent/internal/profile"
	"github.com/nbenliogludev/go-survey-agent/internal/survey"
)

func TestRunnerOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Survey.State = "Bayern"
	cfg.LLM.QuestionFormat = survey.FormatMarkdown
	cfg.Timing.BetweenDelay = time.Minute

	opts := runnerOptions(cfg)
	assert.Equal(t, config.DefaultURL, opts.URL)
	assert.Equal(t, 3*time.Second, opts.LoadDelay)
	assert.Equal(t, time.Minute, opts.BetweenDelay)
	assert.Equal(t, "Bayern", opts.Survey.State)
	assert.Equal(t, "#next_button", opts.Survey.NextButton)
	assert.Equal(t, survey.FormatMarkdown, opts.Survey.SummaryFormat)
	assert.Equal(t, 10*time.Second, opts.Survey.NextTimeout)
}

func TestLLMAndBrowserOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = "k"
	cfg.Browser.Width = 0
	cfg.Browser.Flags = []string{"--lang=de-DE"}

	l := llmOptions(cfg)
	assert.Equal(t, "k", l.APIKey)
	assert.Equal(t, "gpt-4o", l.AnswerModel)
	assert.Equal(t, float32(0.5), l.TopP)

	b := browserOptions(cfg)
	assert.Equal(t, 1280, b.Width)
	assert.Equal(t, []string{"--lang=de-DE"}, b.Flags)
	assert.Equal(t, 60*time.Second, b.Timeout)
}

func TestProfilesCommand(t *testing.T) {
	t.Setenv("API_survey", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SURVEY_URL", "")

	dir := t.TempDir()
	data := filepath.Join(dir, "user_data.csv")
	require.NoError(t, os.WriteFile(data, []byte(
		"Age;Sex;Country_of_birth;Ethnicity;Country_of_residence;Student_status;Employment_status\n"+
			"34;Female;Germany;White;Germany;No;Full-time\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"profiles", "--config", filepath.Join(dir, "none.yaml"), "--profiles", data})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "age=34 sex=Female")
	assert.Contains(t, out.String(), "1 profiles")
}

func TestLogProfileHead_AtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	profiles := make([]profile.Profile, 7)
	for i := range profiles {
		profiles[i] = profile.Profile{Age: fmt.Sprint(20 + i), Sex: "Male"}
	}
	logProfileHead(zap.New(core), "user_data.csv", profiles)

	loaded := logs.FilterMessage("Loaded respondent profiles").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(7), loaded[0].ContextMap()["count"])

	rows := logs.FilterMessage("Profile").All()
	require.Len(t, rows, 5)
	assert.Contains(t, rows[0].ContextMap()["profile"], "age=20 sex=Male")
}
