// Package runner fills the survey once per respondent profile, each in a
// fresh browser session.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-survey-agent/internal/browser"
	"github.com/nbenliogludev/go-survey-agent/internal/capture"
	"github.com/nbenliogludev/go-survey-agent/internal/llm"
	"github.com/nbenliogludev/go-survey-agent/internal/profile"
	"github.com/nbenliogludev/go-survey-agent/internal/survey"
)

var ErrInterrupted = errors.New("execution interrupted")

// DriverFactory opens a new browser session.
type DriverFactory func() (browser.Driver, error)

type Options struct {
	URL          string
	LoadDelay    time.Duration
	BetweenDelay time.Duration
	Survey       survey.Options
}

type Runner struct {
	open     DriverFactory
	llm      llm.Client
	capture  *capture.Capturer
	log      *zap.Logger
	opts     Options
	reporter *Reporter
	sleep    func(time.Duration)
}

func New(open DriverFactory, c llm.Client, capturer *capture.Capturer, log *zap.Logger, opts Options) *Runner {
	return &Runner{
		open:    open,
		llm:     c,
		capture: capturer,
		log:     log.Named("runner"),
		opts:    opts,
		sleep:   time.Sleep,
	}
}

// Run fills the survey for every profile in order and stops at the first error.
func (r *Runner) Run(ctx context.Context, profiles []profile.Profile) (err error) {
	start := time.Now()
	r.reporter = NewReporter(r.log)
	defer func() {
		r.reporter.Report(start, err)
	}()

	for i, p := range profiles {
		if ctx.Err() != nil {
			return ErrInterrupted
		}

		runID := uuid.NewString()
		res, fillErr := r.runOne(ctx, i, runID, p)
		r.reporter.Respondent(i+1, runID, res, fillErr)
		if fillErr != nil {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			return fmt.Errorf("respondent %d: %w", i+1, fillErr)
		}

		r.log.Info("Survey completed for user", zap.Int("user", i+1), zap.String("run_id", runID))

		if i < len(profiles)-1 {
			r.log.Info("Waiting before starting the next survey", zap.Duration("delay", r.opts.BetweenDelay))
			r.sleep(r.opts.BetweenDelay)
		}
	}

	return nil
}

func (r *Runner) runOne(ctx context.Context, index int, runID string, p profile.Profile) (*survey.Result, error) {
	log := r.log.With(zap.Int("user", index+1), zap.String("run_id", runID))

	d, err := r.open()
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	defer d.Close()

	if err := d.Navigate(r.opts.URL); err != nil {
		return nil, err
	}
	r.sleep(r.opts.LoadDelay)

	filler, err := survey.NewFiller(d, r.llm, r.capture, log, r.opts.Survey)
	if err != nil {
		return nil, err
	}
	return filler.Fill(ctx, p)
}
