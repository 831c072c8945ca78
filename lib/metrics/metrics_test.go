package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/extract"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ResultOK},
		{"launch", fmt.Errorf("%w: no chromium", df.ErrLaunch), ResultLaunch},
		{"navigation", fmt.Errorf("%w: timeout", df.ErrNavigation), ResultNavigation},
		{"not ready", fmt.Errorf("%w: timeout", df.ErrNotReady), ResultNotReady},
		{"busy", df.ErrBusy, ResultBusy},
		{"cancelled", context.Canceled, ResultCancelled},
		{"deadline", context.DeadlineExceeded, ResultCancelled},
		{"other", errors.New("boom"), ResultOtherFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultLabel(tt.err); got != tt.want {
				t.Errorf("ResultLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveScrape(t *testing.T) {
	okBefore := testutil.ToFloat64(ScrapesTotal.WithLabelValues(ResultOK))
	nrBefore := testutil.ToFloat64(ScrapesTotal.WithLabelValues(ResultNotReady))

	ObserveScrape(nil, 3*time.Second, 10)
	ObserveScrape(fmt.Errorf("%w: x", df.ErrNotReady), 15*time.Second, 0)

	if got := testutil.ToFloat64(ScrapesTotal.WithLabelValues(ResultOK)) - okBefore; got != 1 {
		t.Errorf("ok scrapes delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ScrapesTotal.WithLabelValues(ResultNotReady)) - nrBefore; got != 1 {
		t.Errorf("not_ready scrapes delta = %v, want 1", got)
	}
}

func TestObserveExtraction(t *testing.T) {
	imgBefore := testutil.ToFloat64(FieldFallbacks.WithLabelValues(string(df.FieldImage)))
	errBefore := testutil.ToFloat64(CardErrors)

	ObserveExtraction(&extract.Stats{
		Scrolls:    12,
		Fallbacks:  map[df.Field]int{df.FieldImage: 3, df.FieldVenue: 1},
		CardErrors: 2,
	})
	ObserveExtraction(nil)

	if got := testutil.ToFloat64(FieldFallbacks.WithLabelValues(string(df.FieldImage))) - imgBefore; got != 3 {
		t.Errorf("image fallbacks delta = %v, want 3", got)
	}
	if got := testutil.ToFloat64(CardErrors) - errBefore; got != 2 {
		t.Errorf("card errors delta = %v, want 2", got)
	}
}

func TestObserveRejected(t *testing.T) {
	busyBefore := testutil.ToFloat64(ScrapesTotal.WithLabelValues(ResultBusy))
	samplesBefore := durationSamples(t)

	ObserveRejected(fmt.Errorf("%w: %v", df.ErrBusy, context.Canceled))

	if got := testutil.ToFloat64(ScrapesTotal.WithLabelValues(ResultBusy)) - busyBefore; got != 1 {
		t.Errorf("busy scrapes delta = %v, want 1", got)
	}
	if got := durationSamples(t) - samplesBefore; got != 0 {
		t.Errorf("rejected scrape added %d duration samples, want 0", got)
	}
}

func durationSamples(t *testing.T) uint64 {
	t.Helper()
	m := &dto.Metric{}
	if err := ScrapeDuration.Write(m); err != nil {
		t.Fatalf("reading scrape duration: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
