package cmd

/*
Copyright © 2026 Paulson McIntyre <paulson@fragforce.org>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/fragforce/campusevents/lib/handlers"
	"github.com/spf13/cobra"
)

//ErrScrapeFailed is what the scrape command exits with after printing the failure envelope
var ErrScrapeFailed = errors.New("scrape failed")

var scrapeURL string

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape once and print the events JSON",
	// The envelope on stdout already says what went wrong
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner, closeF := buildRunner(scrapeURL)
		defer closeF()

		events, err := runner.Scrape(ctx)
		if err != nil {
			log.WithError(err).Error("Scrape failed")
		}
		return printScrape(cmd.OutOrStdout(), events, err, AmDebugging)
	},
}

//printScrape writes the same envelope /api/events would have returned. A failed scrape comes back
// as ErrScrapeFailed once the envelope is written.
func printScrape(out io.Writer, events []df.EventRecord, scrapeErr error, debug bool) error {
	var resp *handlers.EventsResponse
	if scrapeErr != nil {
		msg := df.PublicError(scrapeErr)
		if debug {
			msg = scrapeErr.Error()
		}
		resp = handlers.NewEventsErrorResp(msg)
	} else {
		resp = handlers.NewEventsResp(events)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if scrapeErr != nil {
		return fmt.Errorf("%w: %s", ErrScrapeFailed, resp.Err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "events page to scrape (default from scrape.url)")
}
