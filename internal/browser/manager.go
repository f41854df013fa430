package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Manager drives a Chrome tab over CDP.
type Manager struct {
	Ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

var _ Driver = (*Manager)(nil)

func NewManager(opts Options) (*Manager, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	for _, f := range opts.Flags {
		name, value := parseFlag(f)
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// First Run launches the browser.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome failed: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}

	return &Manager{
		Ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		timeout:     timeout,
	}, nil
}

// parseFlag splits "--name=value" into a chromedp flag; bare names become true.
func parseFlag(raw string) (string, interface{}) {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "-")
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return name, true
	}
	return name, value
}

func (m *Manager) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(m.Ctx, m.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (m *Manager) Navigate(url string) error {
	if err := m.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s failed: %w", url, err)
	}
	return nil
}

func (m *Manager) Screenshot() ([]byte, error) {
	var buf []byte
	if err := m.run(chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

func (m *Manager) ScrollByViewport() error {
	return m.run(chromedp.Evaluate(scrollByViewportScript, nil))
}

func (m *Manager) ScrollOffset() (float64, error) {
	var off float64
	if err := m.run(chromedp.Evaluate(scrollOffsetScript, &off)); err != nil {
		return 0, fmt.Errorf("read scroll offset failed: %w", err)
	}
	return off, nil
}

func (m *Manager) Collect(rules []Rule) ([]Element, error) {
	script, err := collectScript(rules)
	if err != nil {
		return nil, err
	}

	var elems []Element
	if err := m.run(chromedp.Evaluate(script, &elems)); err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}
	return elems, nil
}

func (m *Manager) Click(selector string) error {
	return m.run(chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		if err := chromedp.Nodes(selector, &nodes, chromedp.ByQuery).Do(ctx); err != nil {
			return fmt.Errorf("query %q failed: %w", selector, err)
		}
		return clickNode(ctx, nodes[0])
	}))
}

func (m *Manager) ClickNth(selector string, index int) error {
	return m.run(chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		if err := chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)).Do(ctx); err != nil {
			return fmt.Errorf("query %q failed: %w", selector, err)
		}
		if index < 0 || index >= len(nodes) {
			return indexError(selector, index, len(nodes))
		}
		return clickNode(ctx, nodes[index])
	}))
}

func clickNode(ctx context.Context, n *cdp.Node) error {
	if err := dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID).Do(ctx); err != nil {
		return fmt.Errorf("scroll into view failed: %w", err)
	}
	return chromedp.MouseClickNode(n).Do(ctx)
}

func (m *Manager) SelectValue(selector, value string) error {
	return m.run(chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		if err := chromedp.Nodes(selector, &nodes, chromedp.ByQuery).Do(ctx); err != nil {
			return fmt.Errorf("query %q failed: %w", selector, err)
		}

		obj, err := dom.ResolveNode().WithNodeID(nodes[0].NodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("resolve node failed: %w", err)
		}
		if obj == nil || obj.ObjectID == "" {
			return fmt.Errorf("object id is empty (node might be detached)")
		}

		res, exc, err := runtime.CallFunctionOn(selectScript(value)).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return fmt.Errorf("select script failed: %s", exc.Text)
		}
		if res == nil || string(res.Value) != "true" {
			return fmt.Errorf("%w: option %q in %q", ErrNotFound, value, selector)
		}
		return nil
	}))
}

func (m *Manager) Type(selector, text string) error {
	if err := m.run(chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("type into %q failed: %w", selector, err)
	}
	return nil
}

func (m *Manager) ClickWhenReady(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(m.Ctx, timeout)
	defer cancel()

	err := chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	if err != nil {
		return err
	}
	return m.Click(selector)
}

func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
}
