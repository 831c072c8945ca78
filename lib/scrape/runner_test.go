package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fragforce/campusevents/lib/browser"
	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/extract"
)

// fakeSessions skips the browser and hands fn a nil page; the fake extractor never touches it
type fakeSessions struct {
	calls   int32
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeSessions) Run(ctx context.Context, targetURL string, fn browser.ExtractFunc) ([]df.EventRecord, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return []df.EventRecord{}, ctx.Err()
		}
	}
	if f.err != nil {
		return []df.EventRecord{}, f.err
	}
	return fn(ctx, nil)
}

type fakeExtractor struct {
	n   int
	err error
}

func (f *fakeExtractor) ExtractWithStats(ctx context.Context, page extract.Page) ([]df.EventRecord, *extract.Stats, error) {
	if f.err != nil {
		return []df.EventRecord{}, &extract.Stats{}, f.err
	}
	events := make([]df.EventRecord, 0, f.n)
	for i := 0; i < f.n; i++ {
		events = append(events, df.EventRecord{Title: fmt.Sprintf("Event %d", i+1), Category: "General"})
	}
	return events, &extract.Stats{CardsFound: f.n}, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	results []*df.ScrapeResult
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, res *df.ScrapeResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	return f.err
}

func TestScrape(t *testing.T) {
	tests := []struct {
		name      string
		sessErr   error
		extracted int
		extErr    error
		wantN     int
		wantErr   error
	}{
		{name: "some events", extracted: 3, wantN: 3},
		{name: "no events", extracted: 0, wantN: 0},
		{name: "capped", extracted: 25, wantN: df.MaxEvents},
		{name: "launch failure", sessErr: fmt.Errorf("%w: no chromium", df.ErrLaunch), wantErr: df.ErrLaunch},
		{name: "navigation failure", sessErr: fmt.Errorf("%w: timeout", df.ErrNavigation), wantErr: df.ErrNavigation},
		{name: "not ready", extErr: fmt.Errorf("%w: timeout", df.ErrNotReady), wantErr: df.ErrNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			r := New(Options{URL: "http://example.test/events", Workers: 1},
				&fakeSessions{err: tt.sessErr},
				&fakeExtractor{n: tt.extracted, err: tt.extErr},
				pub)

			events, err := r.Scrape(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Scrape() error = %v, want %v", err, tt.wantErr)
				}
				if events == nil || len(events) != 0 {
					t.Errorf("Scrape() events = %v, want empty non-nil slice", events)
				}
				if len(pub.results) != 0 {
					t.Errorf("failed scrape was published")
				}
				return
			}
			if err != nil {
				t.Fatalf("Scrape() unexpected error: %v", err)
			}
			if events == nil {
				t.Fatal("Scrape() events is nil")
			}
			if len(events) != tt.wantN {
				t.Errorf("Scrape() returned %d events, want %d", len(events), tt.wantN)
			}
			if len(pub.results) != 1 {
				t.Fatalf("published %d results, want 1", len(pub.results))
			}
			res := pub.results[0]
			if res.ID == "" {
				t.Error("published result has no scrape id")
			}
			if res.SourceURL != "http://example.test/events" {
				t.Errorf("SourceURL = %q", res.SourceURL)
			}
			if len(res.Events) != tt.wantN {
				t.Errorf("published %d events, want %d", len(res.Events), tt.wantN)
			}
		})
	}
}

func TestScrapePublishErrorIgnored(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r := New(Options{Workers: 1}, &fakeSessions{}, &fakeExtractor{n: 2}, pub)

	events, err := r.Scrape(context.Background())
	if err != nil {
		t.Fatalf("Scrape() error = %v, want nil", err)
	}
	if len(events) != 2 {
		t.Errorf("Scrape() returned %d events, want 2", len(events))
	}
}

func TestScrapeWithoutPublisher(t *testing.T) {
	r := New(Options{}, &fakeSessions{}, &fakeExtractor{n: 1}, nil)
	if r.url != df.DefaultEventsURL {
		t.Errorf("url = %q, want default %q", r.url, df.DefaultEventsURL)
	}
	if _, err := r.Scrape(context.Background()); err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
}

func TestScrapeBusy(t *testing.T) {
	sess := &fakeSessions{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	r := New(Options{Workers: 1}, sess, &fakeExtractor{n: 1}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Scrape(context.Background())
		done <- err
	}()
	<-sess.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	events, err := r.Scrape(ctx)
	if !errors.Is(err, df.ErrBusy) {
		t.Fatalf("Scrape() error = %v, want ErrBusy", err)
	}
	if len(events) != 0 {
		t.Errorf("Scrape() events = %v, want none", events)
	}

	close(sess.gate)
	if err := <-done; err != nil {
		t.Errorf("first scrape error = %v", err)
	}
	if got := atomic.LoadInt32(&sess.calls); got != 1 {
		t.Errorf("sessions opened = %d, want 1", got)
	}
}

func TestScrapeCoalesce(t *testing.T) {
	sess := &fakeSessions{gate: make(chan struct{}), started: make(chan struct{}, 4)}
	r := New(Options{Workers: 2, Coalesce: true}, sess, &fakeExtractor{n: 3}, nil)

	const callers = 4
	var wg sync.WaitGroup
	results := make([][]df.EventRecord, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = r.Scrape(context.Background())
	}()
	<-sess.started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Scrape(context.Background())
		}(i)
	}
	// Give the followers a moment to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(sess.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if len(results[i]) != 3 {
			t.Fatalf("caller %d got %d events, want 3", i, len(results[i]))
		}
	}
	if got := atomic.LoadInt32(&sess.calls); got != 1 {
		t.Errorf("sessions opened = %d, want 1", got)
	}

	results[0][0].Title = "changed"
	if results[1][0].Title == "changed" {
		t.Error("callers share the same events slice")
	}
}

func TestOptionsFromViper(t *testing.T) {
	opts := OptionsFromViper()
	if opts.URL != df.DefaultEventsURL {
		t.Errorf("URL = %q, want %q", opts.URL, df.DefaultEventsURL)
	}
	if opts.Workers != 2 {
		t.Errorf("Workers = %d, want 2", opts.Workers)
	}
	if opts.Coalesce {
		t.Error("Coalesce defaults to true")
	}
}

func TestScrapeCoalesceHonorsCallerCancel(t *testing.T) {
	sess := &fakeSessions{gate: make(chan struct{}), started: make(chan struct{}, 2)}
	r := New(Options{Workers: 1, Coalesce: true}, sess, &fakeExtractor{n: 2}, nil)

	leader := make(chan error, 1)
	go func() {
		_, err := r.Scrape(context.Background())
		leader <- err
	}()
	<-sess.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	events, err := r.Scrape(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Scrape() error = %v, want context.DeadlineExceeded", err)
	}
	if took := time.Since(start); took > time.Second {
		t.Errorf("coalesced caller returned after %v, want soon after its deadline", took)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("Scrape() events = %v, want empty non-nil slice", events)
	}

	close(sess.gate)
	if err := <-leader; err != nil {
		t.Errorf("shared scrape error = %v, want nil", err)
	}
}
