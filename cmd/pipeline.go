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
	"github.com/fragforce/campusevents/lib/browser"
	"github.com/fragforce/campusevents/lib/extract"
	"github.com/fragforce/campusevents/lib/kdb"
	"github.com/fragforce/campusevents/lib/scrape"
	"github.com/spf13/viper"
)

//buildRunner wires browser, extractor and (when enabled) kafka into a scrape runner.
// The returned func closes whatever needs closing.
func buildRunner(targetURL string) (*scrape.Runner, func()) {
	if viper.GetBool("browser.install") {
		log.Info("Installing playwright browsers")
		if err := browser.Install(); err != nil {
			log.WithError(err).Fatal("Problem installing playwright browsers")
		}
	}

	opts := scrape.OptionsFromViper()
	if targetURL != "" {
		opts.URL = targetURL
	}
	sessions := browser.NewManager(browser.OptionsFromViper())
	extractor := extract.New(extract.OptionsFromViper())

	if !kdb.Enabled() {
		return scrape.New(opts, sessions, extractor, nil), func() {}
	}

	pub := kdb.NewPublisher()
	closeF := func() {
		if err := pub.Close(); err != nil {
			log.WithError(err).Warn("Problem closing kafka writers")
		}
	}
	return scrape.New(opts, sessions, extractor, pub), closeF
}
