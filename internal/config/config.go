package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultURL = "https://sustainabilityde.sawtoothsoftware.com/"

// Config holds all survey-agent configuration.
type Config struct {
	Survey   SurveyConfig   `yaml:"survey"`
	Profiles ProfilesConfig `yaml:"profiles"`
	LLM      LLMConfig      `yaml:"llm"`
	Browser  BrowserConfig  `yaml:"browser"`
	Timing   TimingConfig   `yaml:"timing"`
}

type SurveyConfig struct {
	URL              string `yaml:"url"`
	State            string `yaml:"state"`
	Transcript       string `yaml:"transcript"`
	ScreenshotPrefix string `yaml:"screenshot_prefix"`
	StitchedDir      string `yaml:"stitched_dir"`
	NextButton       string `yaml:"next_button"`
}

type ProfilesConfig struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
}

// LLMConfig configures the completion API.
type LLMConfig struct {
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	AnswerModel  string  `yaml:"answer_model"`
	SummaryModel string  `yaml:"summary_model"`
	Temperature  float32 `yaml:"temperature"`
	TopP         float32 `yaml:"top_p"`
	// html or markdown; only affects what the summary model sees.
	QuestionFormat string `yaml:"question_format"`
}

type BrowserConfig struct {
	Backend     string        `yaml:"backend"` // chromedp, playwright
	Headless    bool          `yaml:"headless"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	UserDataDir string        `yaml:"user_data_dir"`
	Flags       []string      `yaml:"flags"`
	Timeout     time.Duration `yaml:"timeout"`
}

type TimingConfig struct {
	LoadDelay    time.Duration `yaml:"load_delay"`
	ScrollSettle time.Duration `yaml:"scroll_settle"`
	AnswerDelay  time.Duration `yaml:"answer_delay"`
	NextTimeout  time.Duration `yaml:"next_timeout"`
	PageDelay    time.Duration `yaml:"page_delay"`
	BetweenDelay time.Duration `yaml:"between_delay"`
}

func DefaultConfig() *Config {
	return &Config{
		Survey: SurveyConfig{
			URL:              DefaultURL,
			State:            "Nordrhein-Westfalen",
			Transcript:       "messages.json",
			ScreenshotPrefix: "screenshots/screenshot",
			StitchedDir:      "stitched",
			NextButton:       "#next_button",
		},
		Profiles: ProfilesConfig{
			Path:      "user_data.csv",
			Delimiter: ";",
		},
		LLM: LLMConfig{
			AnswerModel:    "gpt-4o",
			SummaryModel:   "gpt-4o-mini",
			Temperature:    0.5,
			TopP:           0.5,
			QuestionFormat: "html",
		},
		Browser: BrowserConfig{
			Backend: "chromedp",
			Width:   1280,
			Height:  900,
			Timeout: 60 * time.Second,
		},
		Timing: TimingConfig{
			LoadDelay:    3 * time.Second,
			ScrollSettle: 2 * time.Second,
			AnswerDelay:  time.Second,
			NextTimeout:  10 * time.Second,
			PageDelay:    time.Second,
			BetweenDelay: 3 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("API_survey"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if url := os.Getenv("SURVEY_URL"); url != "" {
		c.Survey.URL = url
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is empty (set API_survey or OPENAI_API_KEY)"))
	}
	if c.Survey.URL == "" {
		errs = append(errs, errors.New("survey.url is empty"))
	}
	if len([]rune(c.Profiles.Delimiter)) != 1 {
		errs = append(errs, fmt.Errorf("profiles.delimiter must be one character, got %q", c.Profiles.Delimiter))
	}
	switch c.Browser.Backend {
	case "chromedp", "playwright":
	default:
		errs = append(errs, fmt.Errorf("browser.backend %q is not supported", c.Browser.Backend))
	}
	switch c.LLM.QuestionFormat {
	case "", "html", "markdown":
	default:
		errs = append(errs, fmt.Errorf("llm.question_format %q is not supported", c.LLM.QuestionFormat))
	}
	return errors.Join(errs...)
}
