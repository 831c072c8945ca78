package kdb

import (
	"context"
	"sync"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/segmentio/kafka-go"
)

//MessageWriter is the part of kafka.Writer we use
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type AllWriters struct {
	writers map[string]MessageWriter
	lock    *sync.Mutex
	newF    func(ctx context.Context, topic string) (MessageWriter, error)
}

func NewAllWriters() *AllWriters {
	return &AllWriters{
		lock:    &sync.Mutex{},
		writers: map[string]MessageWriter{},
		newF: func(ctx context.Context, topic string) (MessageWriter, error) {
			return NewKafkaWriter(ctx, topic)
		},
	}
}

//Get or create the requested writer for the given topic - ctx only carries values into new
// writers, its cancellation never reaches them
func (w *AllWriters) Get(ctx context.Context, topic string) (MessageWriter, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	wr, ok := w.writers[topic]
	if !ok {
		var err error
		// Cached writers live as long as the process, the caller usually doesn't
		wr, err = w.newF(context.WithoutCancel(ctx), topic)
		if err != nil {
			return nil, err
		}
		w.writers[topic] = wr
	}
	return wr, nil
}

func (w *AllWriters) Close() error {
	log := df.Log
	w.lock.Lock()
	defer w.lock.Unlock()
	var final error
	for topic, wr := range w.writers {
		log := log.WithField("kafka.writer.topic", topic)
		if err := wr.Close(); err != nil {
			final = err
			log.WithError(err).Error("Problem closing kafka writer")
		} else {
			log.Debug("Closed kafka writer successfully")
		}
		delete(w.writers, topic)
	}
	return final
}
