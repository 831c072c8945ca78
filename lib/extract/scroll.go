package extract

import (
	"context"

	"github.com/sirupsen/logrus"
)

//scrollToLoad keeps scrolling to the bottom so lazy content renders. It stops after MaxIdle
// consecutive scrolls that didn't grow the document, or MaxIterations scrolls total. That's a
// heuristic - slow/debounced pages can stop it early.
func (e *Extractor) scrollToLoad(ctx context.Context, log *logrus.Entry, page Page) (int, error) {
	last, err := page.ScrollHeight()
	if err != nil {
		log.WithError(err).Warn("Problem measuring page - not scrolling")
		return 0, nil
	}

	idle := 0
	iterations := 0
	for iterations < e.opts.MaxIterations && idle < e.opts.MaxIdle {
		if err := page.ScrollToBottom(); err != nil {
			log.WithError(err).Warn("Problem scrolling - stopping early")
			break
		}
		iterations++

		if err := e.sleep(ctx, e.opts.ScrollPause); err != nil {
			return iterations, err
		}

		height, err := page.ScrollHeight()
		if err != nil {
			log.WithError(err).Warn("Problem measuring page - stopping early")
			break
		}
		if height == last {
			idle++
		} else {
			idle = 0
			last = height
		}
	}

	log.WithFields(logrus.Fields{
		"scroll.iterations": iterations,
		"scroll.idle":       idle,
		"scroll.height":     last,
	}).Trace("Done scrolling")
	return iterations, nil
}
