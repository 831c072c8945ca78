package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/extract"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("browser.timeout", df.DefaultNavTimeout)
	viper.SetDefault("browser.headless", true)
	viper.SetDefault("browser.executable", "") // Empty means playwright's bundled chromium
	viper.SetDefault("browser.args", []string{
		"--disable-gpu",
		"--no-sandbox", // We usually run as an unprivileged container user
		"--disable-dev-shm-usage",
		"--disable-extensions",
		"--disable-infobars",
	})
	viper.SetDefault("browser.viewport.width", 1920)
	viper.SetDefault("browser.viewport.height", 1080)
	viper.SetDefault("browser.block_images", true)
	// Turning this off makes it faster but the events page renders its cards client side
	viper.SetDefault("browser.javascript", true)
	viper.SetDefault("browser.user_agent", "")
	viper.SetDefault("browser.install", false)
}

type Options struct {
	Timeout        time.Duration
	Headless       bool
	Executable     string
	Args           []string
	ViewportWidth  int
	ViewportHeight int
	BlockImages    bool
	JavaScript     bool
	UserAgent      string
}

func OptionsFromViper() Options {
	return Options{
		Timeout:        viper.GetDuration("browser.timeout"),
		Headless:       viper.GetBool("browser.headless"),
		Executable:     viper.GetString("browser.executable"),
		Args:           viper.GetStringSlice("browser.args"),
		ViewportWidth:  viper.GetInt("browser.viewport.width"),
		ViewportHeight: viper.GetInt("browser.viewport.height"),
		BlockImages:    viper.GetBool("browser.block_images"),
		JavaScript:     viper.GetBool("browser.javascript"),
		UserAgent:      viper.GetString("browser.user_agent"),
	}
}

//ExtractFunc gets the live page once navigation is done
type ExtractFunc func(ctx context.Context, page extract.Page) ([]df.EventRecord, error)

//session is one launched browser - see playwright.go
type session interface {
	open(ctx context.Context, targetURL string) (extract.Page, error)
	close() error
}

type launchFunc func(ctx context.Context, log *logrus.Entry, opts Options) (session, error)

//Manager launches one browser per Run and always tears it down
type Manager struct {
	opts   Options
	launch launchFunc
}

func NewManager(opts Options) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = df.DefaultNavTimeout
	}
	return &Manager{
		opts:   opts,
		launch: launchPlaywright,
	}
}

//Run launches a browser, navigates to targetURL and hands the page to fn. The browser is
// released on every path, including ctx being cancelled while fn is still running.
func (m *Manager) Run(ctx context.Context, targetURL string, fn ExtractFunc) ([]df.EventRecord, error) {
	log := df.Log.WithContext(ctx).WithFields(logrus.Fields{
		"scrape.url":      targetURL,
		"browser.exec":    m.opts.Executable,
		"browser.timeout": m.opts.Timeout,
	})

	log.Trace("Launching browser")
	sess, err := m.launch(ctx, log, m.opts)
	if err != nil {
		log.WithError(err).Error("Problem launching browser")
		return nil, fmt.Errorf("%w: %v", df.ErrLaunch, err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := sess.close(); err != nil {
				log.WithError(err).Warn("Problem closing browser")
				return
			}
			log.Trace("Closed browser")
		})
	}
	defer release()
	stop := context.AfterFunc(ctx, release)
	defer stop()

	log.Trace("Navigating")
	page, err := sess.open(ctx, targetURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).Error("Problem loading events page")
		return nil, fmt.Errorf("%w: %v", df.ErrNavigation, err)
	}

	events, err := fn(ctx, page)
	if err != nil && ctx.Err() != nil {
		// Whatever fn saw was most likely the browser going away under it
		return events, ctx.Err()
	}
	return events, err
}
