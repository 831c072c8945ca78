package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/fragforce/campusevents/lib/browser"
	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/extract"
	"github.com/fragforce/campusevents/lib/metrics"
	"github.com/google/uuid"
	"github.com/mailgun/groupcache/v2/singleflight"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/sync/semaphore"
)

func init() {
	viper.SetDefault("scrape.url", df.DefaultEventsURL)
	viper.SetDefault("scrape.workers", 2)      // Headless browsers are heavy - keep this small
	viper.SetDefault("scrape.coalesce", false) // Share one in-flight scrape between concurrent requests
}

//Sessions runs fn against a freshly launched browser - see browser.Manager
type Sessions interface {
	Run(ctx context.Context, targetURL string, fn browser.ExtractFunc) ([]df.EventRecord, error)
}

type Extractor interface {
	ExtractWithStats(ctx context.Context, page extract.Page) ([]df.EventRecord, *extract.Stats, error)
}

type Publisher interface {
	Publish(ctx context.Context, res *df.ScrapeResult) error
}

type Options struct {
	URL      string
	Workers  int
	Coalesce bool
}

func OptionsFromViper() Options {
	return Options{
		URL:      viper.GetString("scrape.url"),
		Workers:  viper.GetInt("scrape.workers"),
		Coalesce: viper.GetBool("scrape.coalesce"),
	}
}

//Runner is the whole pipeline behind /api/events: one browser session per scrape, at most
// Workers of them at a time
type Runner struct {
	url       string
	sessions  Sessions
	extractor Extractor
	publisher Publisher
	sem       *semaphore.Weighted
	coalesce  bool
	flight    *singleflight.Group
}

//New builds a runner - publisher may be nil
func New(opts Options, sessions Sessions, x Extractor, publisher Publisher) *Runner {
	if opts.URL == "" {
		opts.URL = df.DefaultEventsURL
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Runner{
		url:       opts.URL,
		sessions:  sessions,
		extractor: x,
		publisher: publisher,
		sem:       semaphore.NewWeighted(int64(opts.Workers)),
		coalesce:  opts.Coalesce,
		flight:    &singleflight.Group{},
	}
}

//Scrape runs one scrape (or joins the in-flight one when coalescing) and returns at most
// df.MaxEvents records. There are no retries.
func (r *Runner) Scrape(ctx context.Context) ([]df.EventRecord, error) {
	if !r.coalesce {
		res, err := r.scrape(ctx)
		if err != nil {
			return []df.EventRecord{}, err
		}
		return res.Events, nil
	}

	// The shared scrape outlives any single caller going away, but each caller stops
	// waiting for it as soon as its own ctx is done
	shared := context.WithoutCancel(ctx)
	done := make(chan flightResult, 1)
	go func() {
		v, err := r.flight.Do(r.url, func() (interface{}, error) {
			return r.scrape(shared)
		})
		done <- flightResult{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		df.Log.WithContext(ctx).WithField("scrape.url", r.url).Debug("Gave up waiting on shared scrape")
		return []df.EventRecord{}, ctx.Err()
	case fr := <-done:
		if fr.err != nil {
			return []df.EventRecord{}, fr.err
		}
		res := fr.v.(*df.ScrapeResult)
		// Every caller gets its own copy
		events := make([]df.EventRecord, len(res.Events))
		copy(events, res.Events)
		return events, nil
	}
}

type flightResult struct {
	v   interface{}
	err error
}

func (r *Runner) scrape(ctx context.Context) (*df.ScrapeResult, error) {
	id := uuid.NewString()
	log := df.Log.WithContext(ctx).WithFields(logrus.Fields{
		"scrape.id":  id,
		"scrape.url": r.url,
	})

	log.Trace("Waiting for a scrape worker")
	if err := r.sem.Acquire(ctx, 1); err != nil {
		err = fmt.Errorf("%w: %v", df.ErrBusy, err)
		log.WithError(err).Info("Gave up waiting for a scrape worker")
		metrics.ObserveRejected(err)
		return nil, err
	}
	defer r.sem.Release(1)
	metrics.ScrapesInFlight.Inc()
	defer metrics.ScrapesInFlight.Dec()

	start := time.Now()
	var stats *extract.Stats
	events, err := r.sessions.Run(ctx, r.url, func(ctx context.Context, page extract.Page) ([]df.EventRecord, error) {
		evs, st, err := r.extractor.ExtractWithStats(ctx, page)
		stats = st
		return evs, err
	})
	took := time.Since(start)
	metrics.ObserveExtraction(stats)
	metrics.ObserveScrape(err, took, len(events))
	log = log.WithField("scrape.took", took)

	if err != nil {
		log.WithError(err).Error("Scrape failed")
		return nil, err
	}

	if events == nil {
		events = []df.EventRecord{}
	}
	if len(events) > df.MaxEvents {
		events = events[:df.MaxEvents]
	}
	res := &df.ScrapeResult{
		ID:        id,
		SourceURL: r.url,
		FetchedAt: time.Now().UTC(),
		Events:    events,
	}
	log.WithField("events.count", len(events)).Info("Scraped events")

	if r.publisher != nil {
		// Publishing is best effort - the caller still gets its events
		if err := r.publisher.Publish(ctx, res); err != nil {
			log.WithError(err).Warn("Problem publishing events")
		}
	}

	return res, nil
}
