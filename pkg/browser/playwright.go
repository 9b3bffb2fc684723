package browser

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// PlaywrightDriver implements Driver on top of Playwright-managed Chromium.
// A single driver is shared by all runs; each NewSession call launches an
// isolated browser instance.
type PlaywrightDriver struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	initialized bool
	logger      *zap.Logger
}

// NewPlaywrightDriver creates an uninitialized driver. Initialize must be
// called before the first session.
func NewPlaywrightDriver(logger *zap.Logger) *PlaywrightDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaywrightDriver{
		logger: logger.With(zap.String("component", "playwright")),
	}
}

// Initialize installs browser binaries if needed and starts the Playwright
// runtime. Safe to call more than once.
func (d *PlaywrightDriver) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	// Discard driver output so it cannot interleave with CLI/TUI output.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	d.pw = pw
	d.initialized = true
	return nil
}

// NewSession launches a fresh Chromium instance with its own context and page.
func (d *PlaywrightDriver) NewSession(opts SessionOptions) (Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, fmt.Errorf("playwright driver not initialized")
	}

	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultNavigationTimeout
	}

	browser, err := d.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--no-sandbox", "--disable-dev-shm-usage"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		UserAgent: playwright.String(opts.UserAgent),
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	d.logger.Debug("browser session launched",
		zap.Bool("headless", opts.Headless),
		zap.Int("viewport_w", opts.Viewport.Width),
		zap.Int("viewport_h", opts.Viewport.Height))

	return &playwrightSession{
		browser: browser,
		context: context,
		page:    &playwrightPage{page: page},
	}, nil
}

// Close stops the Playwright runtime. Sessions must be closed first.
func (d *PlaywrightDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized || d.pw == nil {
		return nil
	}
	d.initialized = false
	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type playwrightSession struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage
}

func (s *playwrightSession) Page() Page {
	return s.page
}

func (s *playwrightSession) Cookies() ([]Cookie, error) {
	raw, err := s.context.Cookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookie := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			cookie.SameSite = string(*c.SameSite)
		}
		cookies = append(cookies, cookie)
	}
	return cookies, nil
}

func (s *playwrightSession) AddCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	converted := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if c.Domain != "" {
			oc.Domain = playwright.String(c.Domain)
		}
		if c.Path != "" {
			oc.Path = playwright.String(c.Path)
		}
		if c.Expires != 0 {
			oc.Expires = playwright.Float(c.Expires)
		}
		if ss := sameSiteAttribute(c.SameSite); ss != nil {
			oc.SameSite = ss
		}
		converted = append(converted, oc)
	}
	if err := s.context.AddCookies(converted); err != nil {
		return fmt.Errorf("failed to add cookies: %w", err)
	}
	return nil
}

func (s *playwrightSession) Close() error {
	// Ignore individual errors, continue cleanup.
	_ = s.page.page.Close()
	_ = s.context.Close()
	return s.browser.Close()
}

func sameSiteAttribute(v string) *playwright.SameSiteAttribute {
	switch v {
	case "Strict":
		return playwright.SameSiteAttributeStrict
	case "Lax":
		return playwright.SameSiteAttributeLax
	case "None":
		return playwright.SameSiteAttributeNone
	}
	return nil
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string, timeout float64) error {
	if timeout == 0 {
		timeout = DefaultNavigationTimeout
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(timeout),
	})
	return mapTimeout(err)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Fill(selector, value string, timeout float64) error {
	if timeout == 0 {
		timeout = DefaultActionTimeout
	}
	if err := p.WaitForSelector(selector, timeout); err != nil {
		return err
	}
	return mapTimeout(p.page.Fill(selector, value, playwright.PageFillOptions{
		Timeout: playwright.Float(timeout),
	}))
}

func (p *playwrightPage) Click(selector string, timeout float64) error {
	if timeout == 0 {
		timeout = DefaultActionTimeout
	}
	if err := p.WaitForSelector(selector, timeout); err != nil {
		return err
	}
	return mapTimeout(p.page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(timeout),
	}))
}

func (p *playwrightPage) WaitForSelector(selector string, timeout float64) error {
	if timeout == 0 {
		timeout = DefaultActionTimeout
	}
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(timeout),
	})
	return mapTimeout(err)
}

func (p *playwrightPage) WaitForLoad(timeout float64) error {
	if timeout == 0 {
		timeout = DefaultSettleTimeout
	}
	return mapTimeout(p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(timeout),
	}))
}

func (p *playwrightPage) Query(selector string) (Element, error) {
	el, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, nil
	}
	return &playwrightElement{el: el}, nil
}

func (p *playwrightPage) QueryAll(selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{el: h})
	}
	return elements, nil
}

func (p *playwrightPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

type playwrightElement struct {
	el playwright.ElementHandle
}

func (e *playwrightElement) Visible() (bool, error) {
	return e.el.IsVisible()
}

func (e *playwrightElement) Text() (string, error) {
	return e.el.InnerText()
}

func (e *playwrightElement) Attribute(name string) (string, error) {
	return e.el.GetAttribute(name)
}

// mapTimeout rewrites Playwright timeout errors to ErrTimeout so callers can
// branch without importing playwright.
func mapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
