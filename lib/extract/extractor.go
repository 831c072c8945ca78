package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("extract.ready_timeout", df.DefaultReadyTimeout)
	viper.SetDefault("extract.scroll.pause", time.Second*2)
	viper.SetDefault("extract.scroll.max_idle", 10)       // Consecutive scrolls without the page growing
	viper.SetDefault("extract.scroll.max_iterations", 30) // Absolute ceiling, even if it keeps growing
	viper.SetDefault("extract.max_events", df.MaxEvents)
}

type Options struct {
	ReadyTimeout  time.Duration
	ScrollPause   time.Duration
	MaxIdle       int
	MaxIterations int
	MaxEvents     int
	Strategies    []Strategy
	Fallbacks     *df.Fallbacks
}

//Stats describes what happened during one extraction
type Stats struct {
	Strategy   string
	Scrolls    int
	CardsFound int
	Fallbacks  map[df.Field]int
	CardErrors int
}

func (s *Stats) miss(f df.Field) {
	if s.Fallbacks == nil {
		s.Fallbacks = make(map[df.Field]int)
	}
	s.Fallbacks[f]++
}

//TotalFallbacks is the number of fields, over all cards, that used a fallback value
func (s *Stats) TotalFallbacks() int {
	total := 0
	for _, n := range s.Fallbacks {
		total += n
	}
	return total
}

type Extractor struct {
	opts  Options
	steps []fieldStep
	sleep func(ctx context.Context, d time.Duration) error
}

//DefaultOptions are the viper defaults without touching viper
func DefaultOptions() Options {
	return Options{
		ReadyTimeout:  df.DefaultReadyTimeout,
		ScrollPause:   time.Second * 2,
		MaxIdle:       10,
		MaxIterations: 30,
		MaxEvents:     df.MaxEvents,
		Strategies:    []Strategy{ChristUniversity},
		Fallbacks:     df.DefaultFallbacks(),
	}
}

func OptionsFromViper() Options {
	return Options{
		ReadyTimeout:  viper.GetDuration("extract.ready_timeout"),
		ScrollPause:   viper.GetDuration("extract.scroll.pause"),
		MaxIdle:       viper.GetInt("extract.scroll.max_idle"),
		MaxIterations: viper.GetInt("extract.scroll.max_iterations"),
		MaxEvents:     viper.GetInt("extract.max_events"),
		Strategies:    StrategiesFromViper(),
		Fallbacks:     df.FallbacksFromViper(),
	}
}

func New(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = def.ReadyTimeout
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = def.MaxIdle
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	// Never more than the hard cap
	if opts.MaxEvents <= 0 || opts.MaxEvents > df.MaxEvents {
		opts.MaxEvents = df.MaxEvents
	}
	if len(opts.Strategies) == 0 {
		opts.Strategies = def.Strategies
	}
	if opts.Fallbacks == nil {
		opts.Fallbacks = def.Fallbacks
	}

	return &Extractor{
		opts:  opts,
		steps: defaultSteps(),
		sleep: sleepCtx,
	}
}

//Extract runs the full extraction against a live page. Only the readiness wait and ctx can fail it.
func (e *Extractor) Extract(ctx context.Context, page Page) ([]df.EventRecord, error) {
	events, _, err := e.ExtractWithStats(ctx, page)
	return events, err
}

func (e *Extractor) ExtractWithStats(ctx context.Context, page Page) ([]df.EventRecord, *Stats, error) {
	log := df.Log.WithContext(ctx).WithFields(logrus.Fields{
		"page.url":      page.URL(),
		"ready.timeout": e.opts.ReadyTimeout,
	})
	stats := &Stats{}

	selector := readySelector(e.opts.Strategies)
	log.WithField("ready.selector", selector).Trace("Waiting for event cards")
	if err := page.WaitFor(selector, e.opts.ReadyTimeout); err != nil {
		log.WithError(err).Error("Event cards never showed up")
		return []df.EventRecord{}, stats, fmt.Errorf("%w: %v", df.ErrNotReady, err)
	}

	scrolls, err := e.scrollToLoad(ctx, log, page)
	stats.Scrolls = scrolls
	if err != nil {
		return []df.EventRecord{}, stats, err
	}
	log = log.WithField("scrolls", scrolls)

	html, err := page.HTML()
	if err != nil {
		// Cards were there a moment ago - nothing to map though
		log.WithError(err).Warn("Problem taking DOM snapshot")
		return []df.EventRecord{}, stats, nil
	}

	events := e.parseCards(ctx, html, page.URL(), stats)
	log.WithFields(logrus.Fields{
		"events.count":    len(events),
		"cards.found":     stats.CardsFound,
		"strategy":        stats.Strategy,
		"fallbacks.total": stats.TotalFallbacks(),
		"card.errors":     stats.CardErrors,
	}).Debug("Extracted events")
	return events, stats, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
