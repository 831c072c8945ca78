package handlers

import (
	"context"
	"net/http"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//Scraper runs one scrape per call - see scrape.Runner
type Scraper interface {
	Scrape(ctx context.Context) ([]df.EventRecord, error)
}

type Events struct {
	scraper Scraper
	debug   bool
}

//NewEvents creates the /api/events handler; with debug set the full error chain goes back to the caller
func NewEvents(s Scraper, debug bool) *Events {
	return &Events{
		scraper: s,
		debug:   debug,
	}
}

func (e *Events) Get(c *gin.Context) {
	log := df.Log.WithFields(logrus.Fields{
		"request.id": c.GetString(RequestIDKey),
	}).WithContext(c)

	log.Trace("Kicking off scrape")
	events, err := e.scraper.Scrape(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Couldn't scrape events")
		msg := df.PublicError(err)
		if e.debug {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, NewEventsErrorResp(msg))
		return
	}
	if len(events) > df.MaxEvents {
		events = events[:df.MaxEvents]
	}
	log = log.WithField("events.count", len(events))

	log.Trace("All done")
	c.JSON(http.StatusOK, NewEventsResp(events))
}
