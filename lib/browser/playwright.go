package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/fragforce/campusevents/lib/extract"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

type pwSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     *logrus.Entry
}

//Install downloads the playwright driver and chromium - for images that don't ship them
func Install() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

func launchPlaywright(ctx context.Context, log *logrus.Entry, opts Options) (session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	browser, err := launchChromium(log, pw, opts)
	if err != nil {
		if err := pw.Stop(); err != nil {
			log.WithError(err).Warn("Problem stopping playwright driver")
		}
		return nil, err
	}

	return &pwSession{
		pw:      pw,
		browser: browser,
		opts:    opts,
		log:     log,
	}, nil
}

//launchChromium tries the configured executable first, then the bundled chromium
func launchChromium(log *logrus.Entry, pw *playwright.Playwright, opts Options) (playwright.Browser, error) {
	lo := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
		Timeout:  playwright.Float(millis(opts.Timeout)),
	}

	if opts.Executable != "" {
		withExec := lo
		withExec.ExecutablePath = playwright.String(opts.Executable)
		b, err := pw.Chromium.Launch(withExec)
		if err == nil {
			return b, nil
		}
		log.WithError(err).Warn("Problem launching configured browser - trying bundled chromium")
	}

	b, err := pw.Chromium.Launch(lo)
	if err != nil {
		return nil, fmt.Errorf("launching chromium: %w", err)
	}
	return b, nil
}

func (s *pwSession) open(ctx context.Context, targetURL string) (extract.Page, error) {
	co := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.opts.ViewportWidth,
			Height: s.opts.ViewportHeight,
		},
		JavaScriptEnabled: playwright.Bool(s.opts.JavaScript),
	}
	if s.opts.UserAgent != "" {
		co.UserAgent = playwright.String(s.opts.UserAgent)
	}

	bctx, err := s.browser.NewContext(co)
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	page.SetDefaultTimeout(millis(s.opts.Timeout))
	page.SetDefaultNavigationTimeout(millis(s.opts.Timeout))

	if s.opts.BlockImages {
		if err := page.Route("**/*", blockHeavyResources); err != nil {
			// Slower, not broken
			s.log.WithError(err).Warn("Problem installing resource filter")
		}
	}

	resp, err := page.Goto(targetURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(millis(s.opts.Timeout)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Status() >= 400 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.Status())
	}

	return &playwrightPage{page: page}, nil
}

func (s *pwSession) close() error {
	var final error
	if err := s.browser.Close(); err != nil {
		final = err
	}
	if err := s.pw.Stop(); err != nil {
		final = err
	}
	return final
}

//blockHeavyResources drops what the extractor never looks at - img src attributes stay in the DOM
func blockHeavyResources(route playwright.Route) {
	switch route.Request().ResourceType() {
	case "image", "media", "font":
		_ = route.Abort()
	default:
		_ = route.Continue()
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

//playwrightPage adapts a playwright page to extract.Page
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) WaitFor(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(millis(timeout)),
	})
	return err
}

func (p *playwrightPage) ScrollToBottom() error {
	_, err := p.page.Evaluate(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (p *playwrightPage) ScrollHeight() (int, error) {
	v, err := p.page.Evaluate(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

func (p *playwrightPage) HTML() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("unexpected scroll height type %T", v)
}
