package df

import "time"

//EventRecord is a single event as rendered on the source page - fields are never omitted
type EventRecord struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Venue    string `json:"venue"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

//Get returns the value of the given field
func (r *EventRecord) Get(f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldDate:
		return r.Date
	case FieldTime:
		return r.Time
	case FieldVenue:
		return r.Venue
	case FieldCategory:
		return r.Category
	case FieldImage:
		return r.Image
	}
	return ""
}

//Set updates the given field - unknown fields are ignored
func (r *EventRecord) Set(f Field, value string) {
	switch f {
	case FieldTitle:
		r.Title = value
	case FieldDate:
		r.Date = value
	case FieldTime:
		r.Time = value
	case FieldVenue:
		r.Venue = value
	case FieldCategory:
		r.Category = value
	case FieldImage:
		r.Image = value
	}
}

//ScrapeResult is one completed scrape - the records plus enough context to publish them
type ScrapeResult struct {
	ID        string        `json:"scrape-id"`
	SourceURL string        `json:"source-url"`
	FetchedAt time.Time     `json:"fetched-at"`
	Events    []EventRecord `json:"events"`
}

func (s *ScrapeResult) GetFetchedAt() string {
	return s.FetchedAt.UTC().Format(time.RFC3339Nano)
}
