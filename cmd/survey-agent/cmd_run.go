package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-survey-agent/internal/browser"
	"github.com/nbenliogludev/go-survey-agent/internal/capture"
	"github.com/nbenliogludev/go-survey-agent/internal/config"
	"github.com/nbenliogludev/go-survey-agent/internal/llm"
	"github.com/nbenliogludev/go-survey-agent/internal/profile"
	"github.com/nbenliogludev/go-survey-agent/internal/runner"
	"github.com/nbenliogludev/go-survey-agent/internal/survey"
)

var (
	profilesPath string
	surveyURL    string
	backend      string
	headless     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill the survey for every profile in the data file",
	RunE:  runSurveys,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Validate the profile file and print its rows",
	RunE:  printProfiles,
}

func init() {
	for _, c := range []*cobra.Command{runCmd, profilesCmd} {
		c.Flags().StringVar(&profilesPath, "profiles", "", "Path to the respondent profile file")
	}
	runCmd.Flags().StringVar(&surveyURL, "url", "", "Survey start URL")
	runCmd.Flags().StringVar(&backend, "backend", "", "Browser backend (chromedp, playwright)")
	runCmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")
}

func runSurveys(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	profiles, err := profile.Load(cfg.Profiles.Path, cfg.Profiles.Delimiter)
	if err != nil {
		return err
	}
	logProfileHead(logger, cfg.Profiles.Path, profiles)

	client, err := llm.NewOpenAIClient(llmOptions(cfg), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	browserOpts := browserOptions(cfg)
	open := func() (browser.Driver, error) {
		return browser.Open(cfg.Browser.Backend, browserOpts)
	}

	r := runner.New(open, client, capture.New(logger, cfg.Timing.ScrollSettle), logger, runnerOptions(cfg))
	if err := r.Run(ctx, profiles); err != nil {
		if errors.Is(err, runner.ErrInterrupted) {
			logger.Warn("Stopped before all respondents were processed")
			return nil
		}
		return err
	}
	return nil
}

func logProfileHead(log *zap.Logger, path string, profiles []profile.Profile) {
	log.Info("Loaded respondent profiles", zap.String("path", path), zap.Int("count", len(profiles)))
	for i, p := range profile.Head(profiles, 5) {
		log.Info("Profile", zap.Int("row", i+1), zap.Stringer("profile", p))
	}
}

func printProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	profiles, err := profile.Load(cfg.Profiles.Path, cfg.Profiles.Delimiter)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, p := range profiles {
		fmt.Fprintf(out, "%d\t%s\n", i+1, p)
	}
	fmt.Fprintf(out, "%d profiles\n", len(profiles))
	return nil
}

func llmOptions(cfg *config.Config) llm.Options {
	opts := llm.DefaultOptions()
	opts.APIKey = cfg.LLM.APIKey
	opts.BaseURL = cfg.LLM.BaseURL
	if cfg.LLM.AnswerModel != "" {
		opts.AnswerModel = cfg.LLM.AnswerModel
	}
	if cfg.LLM.SummaryModel != "" {
		opts.SummaryModel = cfg.LLM.SummaryModel
	}
	opts.Temperature = cfg.LLM.Temperature
	opts.TopP = cfg.LLM.TopP
	return opts
}

func browserOptions(cfg *config.Config) browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	if cfg.Browser.Width > 0 && cfg.Browser.Height > 0 {
		opts.Width, opts.Height = cfg.Browser.Width, cfg.Browser.Height
	}
	opts.UserDataDir = cfg.Browser.UserDataDir
	opts.Flags = cfg.Browser.Flags
	if cfg.Browser.Timeout > 0 {
		opts.Timeout = cfg.Browser.Timeout
	}
	return opts
}

func runnerOptions(cfg *config.Config) runner.Options {
	s := survey.DefaultOptions()
	if cfg.Survey.State != "" {
		s.State = cfg.Survey.State
	}
	if cfg.Survey.ScreenshotPrefix != "" {
		s.ScreenshotPrefix = cfg.Survey.ScreenshotPrefix
	}
	if cfg.Survey.StitchedDir != "" {
		s.StitchedDir = cfg.Survey.StitchedDir
	}
	if cfg.Survey.Transcript != "" {
		s.Transcript = cfg.Survey.Transcript
	}
	if cfg.Survey.NextButton != "" {
		s.NextButton = cfg.Survey.NextButton
	}
	s.SummaryFormat = cfg.LLM.QuestionFormat
	s.AnswerDelay = cfg.Timing.AnswerDelay
	s.NextTimeout = cfg.Timing.NextTimeout
	s.PageDelay = cfg.Timing.PageDelay

	return runner.Options{
		URL:          cfg.Survey.URL,
		LoadDelay:    cfg.Timing.LoadDelay,
		BetweenDelay: cfg.Timing.BetweenDelay,
		Survey:       s,
	}
}
