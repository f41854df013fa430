package browser

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a waited-for element never shows up.
var ErrNotFound = errors.New("element not found")

const (
	BackendChromedp   = "chromedp"
	BackendPlaywright = "playwright"
)

// Driver is the browser surface the survey loop works against.
// Selectors are CSS selectors; Element.Ref() yields one for collected elements.
type Driver interface {
	Navigate(url string) error
	Screenshot() ([]byte, error)
	ScrollByViewport() error
	ScrollOffset() (float64, error)
	Collect(rules []Rule) ([]Element, error)
	Click(selector string) error
	ClickNth(selector string, index int) error
	SelectValue(selector, value string) error
	Type(selector, text string) error
	ClickWhenReady(selector string, timeout time.Duration) error
	Close()
}

type Options struct {
	Headless    bool
	Width       int
	Height      int
	UserDataDir string
	Flags       []string
	Timeout     time.Duration
}

func DefaultOptions() Options {
	return Options{
		Headless: false,
		Width:    1280,
		Height:   900,
		Timeout:  60 * time.Second,
	}
}

// Open starts a browser on the named backend.
func Open(backend string, opts Options) (Driver, error) {
	switch backend {
	case "", BackendChromedp:
		return NewManager(opts)
	case BackendPlaywright:
		return NewPlaywrightManager(opts)
	default:
		return nil, fmt.Errorf("unknown browser backend %q", backend)
	}
}

func indexError(selector string, index, count int) error {
	return fmt.Errorf("index %d out of range for %q (%d matches)", index, selector, count)
}
