package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightManager drives a persistent Chromium context through playwright.
type PlaywrightManager struct {
	pw      *playwright.Playwright
	Context playwright.BrowserContext
	Page    playwright.Page
	// profile dir created for this session; removed on Close.
	tempDir string
}

var _ Driver = (*PlaywrightManager)(nil)

func NewPlaywrightManager(opts Options) (*PlaywrightManager, error) {
	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	userDataDir, tempDir, err := profileDir(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	args := append([]string{"--disable-blink-features=AutomationControlled"}, opts.Flags...)

	context, err := pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
		Args:     args,
	})
	if err != nil {
		_ = pw.Stop()
		removeDir(tempDir)
		return nil, err
	}

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = context.NewPage()
		if err != nil {
			_ = context.Close()
			_ = pw.Stop()
			removeDir(tempDir)
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(timeout.Milliseconds()))

	return &PlaywrightManager{
		pw:      pw,
		Context: context,
		Page:    page,
		tempDir: tempDir,
	}, nil
}

// profileDir returns the persistent-context directory. Without an explicit
// user_data_dir each session gets its own throwaway profile.
func profileDir(opts Options) (dir, temp string, err error) {
	if opts.UserDataDir != "" {
		return opts.UserDataDir, "", nil
	}
	temp, err = os.MkdirTemp("", "survey-pw-*")
	if err != nil {
		return "", "", fmt.Errorf("create profile dir: %w", err)
	}
	return temp, temp, nil
}

func removeDir(dir string) {
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
}

func (m *PlaywrightManager) Navigate(url string) error {
	if _, err := m.Page.Goto(url); err != nil {
		return fmt.Errorf("navigate to %s failed: %w", url, err)
	}
	return nil
}

func (m *PlaywrightManager) Screenshot() ([]byte, error) {
	buf, err := m.Page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

func (m *PlaywrightManager) ScrollByViewport() error {
	_, err := m.Page.Evaluate(scrollByViewportScript)
	return err
}

func (m *PlaywrightManager) ScrollOffset() (float64, error) {
	v, err := m.Page.Evaluate(scrollOffsetScript)
	if err != nil {
		return 0, fmt.Errorf("read scroll offset failed: %w", err)
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected number from js, got %T", v)
	}
}

func (m *PlaywrightManager) Collect(rules []Rule) ([]Element, error) {
	script, err := collectScript(rules)
	if err != nil {
		return nil, err
	}

	result, err := m.Page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}

	// Evaluate hands back generic maps; round-trip them into Elements.
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode js result: %w", err)
	}
	var elems []Element
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode js result: %w", err)
	}
	return elems, nil
}

func (m *PlaywrightManager) Click(selector string) error {
	return m.Page.Locator(selector).First().Click()
}

func (m *PlaywrightManager) ClickNth(selector string, index int) error {
	loc := m.Page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return fmt.Errorf("count %q failed: %w", selector, err)
	}
	if index < 0 || index >= count {
		return indexError(selector, index, count)
	}
	return loc.Nth(index).Click()
}

func (m *PlaywrightManager) SelectValue(selector, value string) error {
	n, err := m.Page.Locator(optionSelector(selector, value)).Count()
	if err != nil {
		return fmt.Errorf("count options in %q failed: %w", selector, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: option %q in %q", ErrNotFound, value, selector)
	}

	selected, err := m.Page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	if err != nil {
		return fmt.Errorf("select %q in %q failed: %w", value, selector, err)
	}
	if len(selected) == 0 {
		return fmt.Errorf("%w: option %q in %q", ErrNotFound, value, selector)
	}
	return nil
}

func (m *PlaywrightManager) Type(selector, text string) error {
	if err := m.Page.Locator(selector).First().PressSequentially(text); err != nil {
		return fmt.Errorf("type into %q failed: %w", selector, err)
	}
	return nil
}

func (m *PlaywrightManager) ClickWhenReady(selector string, timeout time.Duration) error {
	loc := m.Page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	if err != nil {
		return err
	}
	return loc.Click()
}

func (m *PlaywrightManager) Close() {
	if m.Context != nil {
		_ = m.Context.Close()
	}
	if m.pw != nil {
		_ = m.pw.Stop()
	}
	removeDir(m.tempDir)
}
