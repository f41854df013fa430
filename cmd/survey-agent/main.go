package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nbenliogludev/go-survey-agent/internal/config"
)

var (
	// Global flags
	configPath string
	debug      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "survey-agent",
	Short: "Fill a web survey once per synthetic respondent",
	Long: `survey-agent reads respondent profiles from a delimited file and, for
each one, opens a fresh browser, captures every survey page and lets a
vision-capable chat model answer the questions in character.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var cfg zap.Config
		if debug {
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg = zap.NewProductionConfig()
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "survey.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd, profilesCmd)
}

// loadConfig applies command-line overrides on top of the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("profiles") {
		cfg.Profiles.Path = profilesPath
	}
	if flags.Changed("url") {
		cfg.Survey.URL = surveyURL
	}
	if flags.Changed("backend") {
		cfg.Browser.Backend = backend
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
