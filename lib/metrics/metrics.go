package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/extract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "campusevents"

	ResultOK           = "ok"
	ResultLaunch       = "launch_failed"
	ResultNavigation   = "navigation_failed"
	ResultNotReady     = "not_ready"
	ResultBusy         = "busy"
	ResultCancelled    = "cancelled"
	ResultOtherFailure = "error"
)

var (
	ScrapesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrapes_total",
		Help:      "Scrapes of the events page by result",
	}, []string{"result"})
	ScrapeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Wall time of a scrape, browser launch to teardown",
		Buckets:   []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120, 180},
	})
	ScrapesInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scrapes_in_flight",
		Help:      "Browser sessions currently open",
	})
	EventsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "events_returned",
		Help:      "Events returned per successful scrape",
		Buckets:   prometheus.LinearBuckets(0, 1, df.MaxEvents+1),
	})
	ScrollIterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scroll_iterations",
		Help:      "Scrolls needed before the page stopped growing",
		Buckets:   prometheus.LinearBuckets(0, 5, 10),
	})
	FieldFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "field_fallbacks_total",
		Help:      "Fields that couldn't be extracted and used their fallback value",
	}, []string{"field"})
	CardErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "card_errors_total",
		Help:      "Cards that failed part way through and were kept as partial records",
	})
)

func init() {
	prometheus.MustRegister(
		ScrapesTotal,
		ScrapeDuration,
		ScrapesInFlight,
		EventsReturned,
		ScrollIterations,
		FieldFallbacks,
		CardErrors,
	)
}

//Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

//ResultLabel maps a scrape error onto the `result` label
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, df.ErrLaunch):
		return ResultLaunch
	case errors.Is(err, df.ErrNavigation):
		return ResultNavigation
	case errors.Is(err, df.ErrNotReady):
		return ResultNotReady
	case errors.Is(err, df.ErrBusy):
		return ResultBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCancelled
	}
	return ResultOtherFailure
}

//ObserveScrape records one finished scrape
func ObserveScrape(err error, took time.Duration, events int) {
	ScrapesTotal.WithLabelValues(ResultLabel(err)).Inc()
	ScrapeDuration.Observe(took.Seconds())
	if err == nil {
		EventsReturned.Observe(float64(events))
	}
}

//ObserveRejected records a scrape that never got a browser - no duration to speak of
func ObserveRejected(err error) {
	ScrapesTotal.WithLabelValues(ResultLabel(err)).Inc()
}

//ObserveExtraction records what the extractor had to fall back on
func ObserveExtraction(stats *extract.Stats) {
	if stats == nil {
		return
	}
	ScrollIterations.Observe(float64(stats.Scrolls))
	for field, n := range stats.Fallbacks {
		FieldFallbacks.WithLabelValues(string(field)).Add(float64(n))
	}
	if stats.CardErrors > 0 {
		CardErrors.Add(float64(stats.CardErrors))
	}
}
