package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/handlers"
)

func TestPrintScrape(t *testing.T) {
	tests := []struct {
		name      string
		events    []df.EventRecord
		scrapeErr error
		debug     bool
		wantErr   bool
		wantMsg   string
		wantCount int
	}{
		{name: "events", events: []df.EventRecord{{Title: "Open Day"}, {Title: "Hackathon"}}, wantCount: 2},
		{name: "no events", events: nil, wantCount: 0},
		{
			name:      "not ready",
			scrapeErr: fmt.Errorf("%w: timeout", df.ErrNotReady),
			wantErr:   true,
			wantMsg:   df.ErrNotReady.Error(),
		},
		{
			name:      "not ready with debug",
			scrapeErr: fmt.Errorf("%w: timeout", df.ErrNotReady),
			debug:     true,
			wantErr:   true,
			wantMsg:   df.ErrNotReady.Error() + ": timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := printScrape(&out, tt.events, tt.scrapeErr, tt.debug)
			if tt.wantErr != (err != nil) {
				t.Fatalf("printScrape() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrScrapeFailed) {
				t.Errorf("printScrape() error = %v, want ErrScrapeFailed", err)
			}

			var resp handlers.EventsResponse
			if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
				t.Fatalf("bad output %q: %v", out.String(), err)
			}
			if resp.Success == tt.wantErr {
				t.Errorf("success = %v", resp.Success)
			}
			if resp.Err != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Err, tt.wantMsg)
			}
			if resp.Count != tt.wantCount || len(resp.Events) != tt.wantCount {
				t.Errorf("count = %d, events = %d, want %d", resp.Count, len(resp.Events), tt.wantCount)
			}
		})
	}
}
