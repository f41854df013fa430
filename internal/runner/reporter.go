package runner

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-survey-agent/internal/survey"
)

type respondentOutcome struct {
	index     int
	runID     string
	pages     int
	questions int
	err       error
}

// Reporter collects per-respondent outcomes and logs a final execution report.
type Reporter struct {
	log      *zap.Logger
	outcomes []respondentOutcome
}

func NewReporter(log *zap.Logger) *Reporter {
	return &Reporter{log: log.Named("report")}
}

func (r *Reporter) Respondent(index int, runID string, res *survey.Result, err error) {
	o := respondentOutcome{index: index, runID: runID, err: err}
	if res != nil {
		o.pages = res.Pages
		o.questions = res.Questions
	}
	r.outcomes = append(r.outcomes, o)
}

func (r *Reporter) Completed() int {
	n := 0
	for _, o := range r.outcomes {
		if o.err == nil {
			n++
		}
	}
	return n
}

func (r *Reporter) Report(start time.Time, err error) {
	duration := time.Since(start).Truncate(time.Millisecond)

	for _, o := range r.outcomes {
		fields := []zap.Field{
			zap.Int("user", o.index),
			zap.String("run_id", o.runID),
			zap.Int("pages", o.pages),
			zap.Int("questions", o.questions),
		}
		if o.err != nil {
			fields = append(fields, zap.Error(o.err))
		}
		r.log.Info("Respondent", fields...)
	}

	summary := []zap.Field{
		zap.Duration("duration", duration),
		zap.Int("completed", r.Completed()),
		zap.String("exit_reason", exitReason(err)),
	}
	if err != nil {
		r.log.Error("Execution report", append(summary, zap.Error(err))...)
		return
	}
	r.log.Info("Execution report", summary...)
}

func exitReason(err error) string {
	switch {
	case err == nil:
		return "all respondents completed"
	case errors.Is(err, ErrInterrupted):
		return "interrupted by user (Ctrl+C)"
	default:
		return "aborted on error"
	}
}
