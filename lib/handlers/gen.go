package handlers

import (
	"github.com/fragforce/campusevents/lib/df"
)

const (
	HealthStatusOK      = "healthy"
	HealthStatusMessage = "Events API is running"
)

//EventsResponse is the /api/events envelope - events is never null
type EventsResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Events  []df.EventRecord `json:"events"`
	Err     string           `json:"error,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

//NewEventsResp creates a response for a good scrape
func NewEventsResp(events []df.EventRecord) *EventsResponse {
	if events == nil {
		events = []df.EventRecord{}
	}
	return &EventsResponse{
		Success: true,
		Count:   len(events),
		Events:  events,
	}
}

//NewEventsErrorResp creates a response for a failed scrape - should only be used for bad calls
func NewEventsErrorResp(msg string) *EventsResponse {
	return &EventsResponse{
		Success: false,
		Count:   0,
		Events:  []df.EventRecord{},
		Err:     msg,
	}
}

func NewHealthResp() *HealthResponse {
	return &HealthResponse{
		Status:  HealthStatusOK,
		Message: HealthStatusMessage,
	}
}
