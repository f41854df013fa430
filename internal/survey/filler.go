package survey

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-survey-agent/internal/browser"
	"github.com/nbenliogludev/go-survey-agent/internal/capture"
	"github.com/nbenliogludev/go-survey-agent/internal/llm"
	"github.com/nbenliogludev/go-survey-agent/internal/profile"
)

type Options struct {
	State            string
	ScreenshotPrefix string
	StitchedDir      string
	Transcript       string
	NextButton       string
	SummaryFormat    string
	AnswerDelay      time.Duration
	NextTimeout      time.Duration
	PageDelay        time.Duration
}

func DefaultOptions() Options {
	return Options{
		State:            DefaultState,
		ScreenshotPrefix: filepath.Join("screenshots", "screenshot"),
		StitchedDir:      "stitched",
		Transcript:       "messages.json",
		NextButton:       "#next_button",
		SummaryFormat:    FormatHTML,
		AnswerDelay:      time.Second,
		NextTimeout:      10 * time.Second,
		PageDelay:        time.Second,
	}
}

// Result describes one completed respondent run.
type Result struct {
	Pages     int
	Questions int
	// Screenshots of the last captured page.
	Screenshots []string
}

// Filler walks a survey page by page for one respondent.
type Filler struct {
	driver  browser.Driver
	llm     llm.Client
	capture *capture.Capturer
	log     *zap.Logger
	opts    Options
	format  *questionFormatter
	sleep   func(time.Duration)
}

func NewFiller(d browser.Driver, c llm.Client, capturer *capture.Capturer, log *zap.Logger, opts Options) (*Filler, error) {
	format, err := newQuestionFormatter(opts.SummaryFormat)
	if err != nil {
		return nil, err
	}
	return &Filler{
		driver:  d,
		llm:     c,
		capture: capturer,
		log:     log.Named("survey"),
		opts:    opts,
		format:  format,
		sleep:   time.Sleep,
	}, nil
}

func (f *Filler) Fill(ctx context.Context, p profile.Profile) (*Result, error) {
	f.log.Info("Starting survey for user",
		zap.String("age", p.Age),
		zap.String("gender", p.Sex),
		zap.String("country_of_origin", p.CountryOfBirth),
		zap.String("ethnicity", p.Ethnicity),
		zap.String("country", p.CountryOfResidence),
		zap.String("student", p.StudentText()),
		zap.String("work_status", p.EmploymentStatus),
	)

	conv := NewConversation(SystemPrompt(p, f.opts.State))
	res := &Result{}

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Pages = page + 1

		if err := f.fillPage(ctx, conv, page, res); err != nil {
			return res, fmt.Errorf("page %d: %w", page, err)
		}

		if err := conv.Save(f.opts.Transcript); err != nil {
			return res, err
		}

		err := f.driver.ClickWhenReady(f.opts.NextButton, f.opts.NextTimeout)
		if errors.Is(err, browser.ErrNotFound) {
			f.log.Error("Next button not found", zap.Int("page", page))
			break
		}
		if err != nil {
			return res, fmt.Errorf("page %d: click next: %w", page, err)
		}

		f.sleep(f.opts.PageDelay)
		f.log.Info("Page completed", zap.Int("page", page+1))
	}

	return res, nil
}

func (f *Filler) fillPage(ctx context.Context, conv *Conversation, page int, res *Result) error {
	shots, err := f.capture.Scroll(f.driver, f.opts.ScreenshotPrefix)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	res.Screenshots = shots

	stitched := filepath.Join(f.opts.StitchedDir, fmt.Sprintf("survey_screenshot_%d.png", page))
	if err := f.capture.Stitch(shots, stitched); err != nil {
		return err
	}

	elems, err := f.driver.Collect(Rules())
	if err != nil {
		return fmt.Errorf("collect questions: %w", err)
	}
	questions := SortQuestions(elems)

	b64, err := capture.EncodeFile(stitched)
	if err != nil {
		return err
	}
	content := []openai.ChatMessagePart{imagePart(b64)}
	f.log.Debug("Screenshot added to API messages")
	f.log.Info("Total questions found", zap.Int("count", len(questions)))

	if len(questions) == 0 {
		conv.PushUser(content)
		f.log.Info("No questions found, screenshot added to messages")
		return nil
	}

	// Only the first question on a page carries the screenshot.
	for _, q := range questions {
		content = append(content, textPart(QuestionText(q.HTML)))
		if err := f.answer(ctx, conv, q, content); err != nil {
			return err
		}
		content = nil
		res.Questions++
	}
	return nil
}

func (f *Filler) answer(ctx context.Context, conv *Conversation, q browser.Element, content []openai.ChatMessagePart) error {
	kind := Kind(q.Kind)
	qt, ok := lookupType(kind)
	if !ok {
		return fmt.Errorf("unsupported question kind %q", q.Kind)
	}

	log := f.log.With(zap.String("kind", q.Kind))
	log.Info("Question", zap.String("label", questionLabel(q.HTML)))
	log.Debug("HTML question", zap.String("html", q.HTML))

	conv.PushUser(content)
	msgs := conv.Messages()
	log.Debug("Messages before", zap.Any("messages", msgs))

	var (
		choice int
		answer string
		err    error
	)
	switch qt.reply {
	case replyChoice:
		choice, err = f.llm.AnswerChoice(ctx, msgs)
		answer = strconv.Itoa(choice)
	default:
		answer, err = f.llm.AnswerText(ctx, msgs)
	}
	if err != nil {
		return fmt.Errorf("answer %s question: %w", kind, err)
	}
	log.Info("Answer", zap.String("answer", answer))

	conv.Pop()

	question, err := f.format.render(q.HTML)
	if err != nil {
		return err
	}
	summary, err := f.llm.Summarize(ctx, question, answer)
	if err != nil {
		return fmt.Errorf("summarize %s answer: %w", kind, err)
	}
	conv.PushAssistant(summary)

	if err := f.apply(q, kind, choice, answer); err != nil {
		return fmt.Errorf("apply %s answer %q: %w", kind, answer, err)
	}
	log.Info("Answer applied in browser")

	f.sleep(f.opts.AnswerDelay)
	return nil
}

func (f *Filler) apply(q browser.Element, kind Kind, choice int, answer string) error {
	switch kind {
	case KindCBCTask:
		return f.driver.ClickNth(q.Ref()+" "+taskSelectButton, choice-1)
	case KindSelect:
		return f.driver.SelectValue(q.Ref(), strconv.Itoa(choice))
	case KindNumeric:
		return f.driver.Type(q.Ref()+" input", answer)
	case KindResponseColumn:
		return f.driver.Click(q.Ref())
	case KindTextarea:
		return f.driver.Type(q.Ref(), answer)
	default:
		return fmt.Errorf("no action for kind %q", kind)
	}
}
