// Package surveytest provides in-memory stand-ins for the browser and the
// completion API so the survey loop can be exercised without either.
package surveytest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nbenliogludev/go-survey-agent/internal/browser"
)

// Page is one survey page as the fake driver serves it.
type Page struct {
	Elements []browser.Element
	// Last pages have no next button.
	Last bool
	// Options lists valid <select> values per element ID.
	Options map[string][]string
	// Buttons counts .task_select_button children per element ID.
	Buttons map[string]int
}

type Action struct {
	Op       string
	Selector string
	Value    string
}

// Driver is a scripted browser.Driver.
type Driver struct {
	mu        sync.Mutex
	Pages     []Page
	page      int
	Actions   []Action
	URL       string
	Closed    bool
	ClickErr  error
	Navigated []string
}

var _ browser.Driver = (*Driver)(nil)

func NewDriver(pages ...Page) *Driver {
	return &Driver{Pages: pages}
}

func (d *Driver) current() Page {
	if d.page < len(d.Pages) {
		return d.Pages[d.page]
	}
	return Page{Last: true}
}

func (d *Driver) record(op, selector, value string) {
	d.Actions = append(d.Actions, Action{Op: op, Selector: selector, Value: value})
}

func (d *Driver) Navigate(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.URL = url
	d.Navigated = append(d.Navigated, url)
	return nil
}

func (d *Driver) Screenshot() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Driver) ScrollByViewport() error { return nil }

func (d *Driver) ScrollOffset() (float64, error) { return 0, nil }

func (d *Driver) Collect(rules []browser.Rule) ([]browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]browser.Element(nil), d.current().Elements...), nil
}

func (d *Driver) Click(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ClickErr != nil {
		return d.ClickErr
	}
	d.record("click", selector, "")
	return nil
}

func (d *Driver) ClickNth(selector string, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := refID(selector)
	if n, ok := d.current().Buttons[id]; ok && (index < 0 || index >= n) {
		return fmt.Errorf("index %d out of range for %q (%d matches)", index, selector, n)
	}
	d.record("click_nth", selector, fmt.Sprint(index))
	return nil
}

func (d *Driver) SelectValue(selector, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if opts, ok := d.current().Options[refID(selector)]; ok {
		found := false
		for _, o := range opts {
			if o == value {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: option %q in %q", browser.ErrNotFound, value, selector)
		}
	}
	d.record("select", selector, value)
	return nil
}

func (d *Driver) Type(selector, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("type", selector, text)
	return nil
}

func (d *Driver) ClickWhenReady(selector string, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current().Last {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
	}
	d.record("next", selector, "")
	d.page++
	return nil
}

func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
}

// refID extracts the ordinal from selectors built by browser.Element.Ref.
func refID(selector string) string {
	prefix := `[` + browser.QuestionAttr + `="`
	if !strings.HasPrefix(selector, prefix) {
		return ""
	}
	rest := selector[len(prefix):]
	if i := strings.Index(rest, `"`); i >= 0 {
		return rest[:i]
	}
	return ""
}

// Call is one recorded request to the fake model.
type Call struct {
	Method   string
	Messages []openai.ChatCompletionMessage
	Question string
	Answer   string
}

// LLM replies from queues; empty queues fall back to defaults.
type LLM struct {
	mu        sync.Mutex
	Choices   []int
	Texts     []string
	Calls     []Call
	ChoiceErr error
}

func (l *LLM) AnswerChoice(ctx context.Context, messages []openai.ChatCompletionMessage) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, Call{Method: "choice", Messages: messages})
	if l.ChoiceErr != nil {
		return 0, l.ChoiceErr
	}
	if len(l.Choices) == 0 {
		return 1, nil
	}
	n := l.Choices[0]
	l.Choices = l.Choices[1:]
	return n, nil
}

func (l *LLM) AnswerText(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, Call{Method: "text", Messages: messages})
	if len(l.Texts) == 0 {
		return "n/a", nil
	}
	s := l.Texts[0]
	l.Texts = l.Texts[1:]
	return s, nil
}

func (l *LLM) Summarize(ctx context.Context, questionHTML, answer string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls = append(l.Calls, Call{Method: "summary", Question: questionHTML, Answer: answer})
	return "summary of " + answer, nil
}

// CallsOf returns the recorded calls for one method.
func (l *LLM) CallsOf(method string) []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Call
	for _, c := range l.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}
