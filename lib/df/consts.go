package df

import "time"

const (
	//	Source page
	DefaultEventsURL = "https://christuniversity.in/events"
	//	Hard cap on records per response, independent of how many cards render
	MaxEvents = 10
	//	Defaults for timeouts - overridable via viper, see `browser` and `extract`
	DefaultNavTimeout   = 30 * time.Second
	DefaultReadyTimeout = 15 * time.Second
	//	Kafka header keys
	KHeaderKeyScrapeID  = "scrape-id"
	KHeaderKeyFetchedAt = "fetched-at"
	KHeaderKeyPosition  = "position"
	KHeaderKeySourceURL = "source-url"
	//	Kafka topic name (short) - see kdb.MakeTopicName
	KTopicEvents = "events"
)
