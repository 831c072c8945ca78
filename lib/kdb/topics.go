package kdb

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

var ErrNoBrokers = errors.New("no kafka brokers configured")

func init() {
	viper.SetDefault("kafka.topics.prefix", "")
	viper.SetDefault("kafka.topics.events", "campus-events")
}

//MakeTopicName resolves a short topic name (see df.KTopicEvents) into the configured, prefixed one
func MakeTopicName(short string) string {
	name := viper.GetString(fmt.Sprintf("kafka.topics.%s", short))
	if name == "" {
		name = short
	}
	return viper.GetString("kafka.topics.prefix") + name
}
