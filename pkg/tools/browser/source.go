package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/pagesmith/pagesmith/pkg/dispatch"
)

// Options configures the browser source.
type Options struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// ViewportWidth and ViewportHeight set the initial viewport.
	ViewportWidth  int
	ViewportHeight int

	// TimeoutMillis is the default timeout for page operations.
	TimeoutMillis float64
}

// Default browser settings.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultTimeoutMillis  = 30000.0
)

// Source is a dispatch.Source backed by a Playwright page.
type Source struct {
	mu      sync.Mutex
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	started bool
}

type toolFunc func(ctx context.Context, args map[string]any) (string, error)

// NewSource creates an unstarted source. Start must be called before the
// first invocation.
func NewSource(opts Options) *Source {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.TimeoutMillis == 0 {
		opts.TimeoutMillis = DefaultTimeoutMillis
	}
	return &Source{opts: opts}
}

// Start launches Playwright, the browser, and a page.
func (s *Source) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &s.opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.opts.ViewportWidth,
			Height: s.opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(s.opts.TimeoutMillis)

	s.pw = pw
	s.browser = browser
	s.page = page
	s.started = true
	return nil
}

// Close tears down the page, browser, and Playwright driver.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	_ = s.page.Close()
	_ = s.browser.Close()
	err := s.pw.Stop()
	s.started = false
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// Names enumerates the available tools in stable order.
func (s *Source) Names() []string {
	names := make([]string, 0, len(s.tools()))
	for name := range s.tools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool. Argument validation happens before any page
// access, so a malformed call fails fast with a caller error.
func (s *Source) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := s.tools()[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", dispatch.ErrUnknownTool, name)
	}
	return tool(ctx, args)
}

func (s *Source) tools() map[string]toolFunc {
	return map[string]toolFunc{
		"take_snapshot": s.takeSnapshot,
		"navigate_page": s.navigatePage,
		"click":         s.click,
		"fill":          s.fill,
		"fill_form":     s.fillForm,
		"press_key":     s.pressKey,
		"evaluate":      s.evaluate,
		"wait_for":      s.waitFor,
	}
}

func (s *Source) activePage() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil, fmt.Errorf("browser source not started")
	}
	return s.page, nil
}

// takeSnapshot returns an accessibility-tree text dump of the current page.
func (s *Source) takeSnapshot(ctx context.Context, args map[string]any) (string, error) {
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	snap, err := page.Locator("body").AriaSnapshot()
	if err == nil && strings.TrimSpace(snap) != "" {
		return snap, nil
	}

	// Some targets cannot produce an ARIA snapshot; render one from the
	// raw HTML instead so the caller always gets a structural dump.
	content, cerr := page.Content()
	if cerr != nil {
		if err != nil {
			return "", fmt.Errorf("snapshot failed: %w", err)
		}
		return "", fmt.Errorf("snapshot failed: %w", cerr)
	}
	return RenderAccessibilityText(content)
}

func (s *Source) navigatePage(ctx context.Context, args map[string]any) (string, error) {
	url, err := requireString(args, "url")
	if err != nil {
		return "", err
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	gotoOpts := playwright.PageGotoOptions{}
	if waitUntil := optionalString(args, "wait_until"); waitUntil != "" {
		state := playwright.WaitUntilState(waitUntil)
		gotoOpts.WaitUntil = &state
	}
	if _, err := page.Goto(url, gotoOpts); err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}
	return fmt.Sprintf("Navigated to %s", page.URL()), nil
}

func (s *Source) click(ctx context.Context, args map[string]any) (string, error) {
	selector, err := requireString(args, "selector")
	if err != nil {
		return "", err
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	clickOpts := playwright.PageClickOptions{}
	if button := optionalString(args, "button"); button != "" {
		b := playwright.MouseButton(button)
		clickOpts.Button = &b
	}
	if err := page.Click(selector, clickOpts); err != nil {
		return "", fmt.Errorf("click failed: %w", err)
	}
	return fmt.Sprintf("Clicked %s", selector), nil
}

func (s *Source) fill(ctx context.Context, args map[string]any) (string, error) {
	selector, err := requireString(args, "selector")
	if err != nil {
		return "", err
	}
	value, ok := args["value"].(string)
	if !ok {
		return "", fmt.Errorf("missing value")
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	if err := page.Fill(selector, value); err != nil {
		return "", fmt.Errorf("fill failed: %w", err)
	}
	return fmt.Sprintf("Filled %s", selector), nil
}

// fillForm fills several fields in one call. "fields" maps selectors to
// values; fields are filled in sorted selector order for determinism.
func (s *Source) fillForm(ctx context.Context, args map[string]any) (string, error) {
	raw, ok := args["fields"].(map[string]any)
	if !ok || len(raw) == 0 {
		return "", fmt.Errorf("missing fields")
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	selectors := make([]string, 0, len(raw))
	for sel := range raw {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)

	for _, sel := range selectors {
		value, ok := raw[sel].(string)
		if !ok {
			return "", fmt.Errorf("field %q: value must be a string", sel)
		}
		if err := page.Fill(sel, value); err != nil {
			return "", fmt.Errorf("fill %q failed: %w", sel, err)
		}
	}
	return fmt.Sprintf("Filled %d fields", len(selectors)), nil
}

func (s *Source) pressKey(ctx context.Context, args map[string]any) (string, error) {
	key, err := requireString(args, "key")
	if err != nil {
		return "", err
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	if err := page.Keyboard().Press(key); err != nil {
		return "", fmt.Errorf("press key failed: %w", err)
	}
	return fmt.Sprintf("Pressed %s", key), nil
}

func (s *Source) evaluate(ctx context.Context, args map[string]any) (string, error) {
	code, err := requireString(args, "code")
	if err != nil {
		return "", err
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	result, err := page.Evaluate(code)
	if err != nil {
		return "", fmt.Errorf("evaluate failed: %w", err)
	}
	if result == nil {
		return "undefined", nil
	}
	if str, ok := result.(string); ok {
		return str, nil
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result), nil
	}
	return string(encoded), nil
}

func (s *Source) waitFor(ctx context.Context, args map[string]any) (string, error) {
	selector, err := requireString(args, "selector")
	if err != nil {
		return "", err
	}
	page, err := s.activePage()
	if err != nil {
		return "", err
	}

	waitOpts := playwright.PageWaitForSelectorOptions{}
	if state := optionalString(args, "state"); state != "" {
		st := playwright.WaitForSelectorState(state)
		waitOpts.State = &st
	}
	if _, err := page.WaitForSelector(selector, waitOpts); err != nil {
		return "", fmt.Errorf("wait failed: %w", err)
	}
	return fmt.Sprintf("Found %s", selector), nil
}

func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

func optionalString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}
