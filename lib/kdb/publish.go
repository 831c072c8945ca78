package kdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("kafka.write.timeout", 10*time.Second)
}

//Publisher writes each successful scrape to the events topic, one message per event
type Publisher struct {
	writers *AllWriters
	topic   string
	timeout time.Duration
}

func NewPublisher() *Publisher {
	timeout := viper.GetDuration("kafka.write.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{
		writers: NewAllWriters(),
		topic:   MakeTopicName(df.KTopicEvents),
		timeout: timeout,
	}
}

//Enabled reports whether publishing is switched on in config
func Enabled() bool {
	return viper.GetBool("kafka.enabled")
}

func (p *Publisher) Publish(ctx context.Context, res *df.ScrapeResult) error {
	log := df.Log.WithContext(ctx).WithFields(logrus.Fields{
		"kafka.topic":  p.topic,
		"scrape.id":    res.ID,
		"events.count": len(res.Events),
	})
	if len(res.Events) == 0 {
		log.Trace("Nothing to publish")
		return nil
	}

	w, err := p.writers.Get(ctx, p.topic)
	if err != nil {
		log.WithError(err).Error("Problem getting kafka writer for events")
		return err
	}

	msgs, err := MakeEventMessages(res)
	if err != nil {
		log.WithError(err).Error("Problem making kafka message(s)")
		return err
	}

	c, can := context.WithTimeout(ctx, p.timeout)
	defer can()
	if err := w.WriteMessages(c, msgs...); err != nil {
		log.WithError(err).Error("Problem writing messages to kafka events topic")
		return err
	}

	log.Trace("Published events")
	return nil
}

func (p *Publisher) Close() error {
	return p.writers.Close()
}

//MakeEventMessages creates one message per event. Events have no identity of their own so the
// key is the scrape id plus position.
func MakeEventMessages(res *df.ScrapeResult) ([]kafka.Message, error) {
	ret := make([]kafka.Message, 0, len(res.Events))
	for pos, evt := range res.Events {
		value, err := json.Marshal(&evt)
		if err != nil {
			return nil, err
		}
		ret = append(ret, kafka.Message{
			Key:   []byte(fmt.Sprintf("%s-%d", res.ID, pos)),
			Value: value,
			Headers: []kafka.Header{
				{Key: df.KHeaderKeyScrapeID, Value: []byte(res.ID)},
				{Key: df.KHeaderKeyFetchedAt, Value: []byte(res.GetFetchedAt())},
				{Key: df.KHeaderKeyPosition, Value: []byte(fmt.Sprintf("%d", pos))},
				{Key: df.KHeaderKeySourceURL, Value: []byte(res.SourceURL)},
			},
		})
	}
	return ret, nil
}
