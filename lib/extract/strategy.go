package extract

import (
	"strings"

	"github.com/spf13/viper"
)

//Strategy describes one known events page markup. Strategies are tried in order and the first
// whose Card selector matches anything wins.
type Strategy struct {
	Name string `mapstructure:"name"`
	// Card matches one element per event
	Card string `mapstructure:"card"`
	// Image selectors, tried in order, relative to the card
	Image []string `mapstructure:"image"`
	// Info matches the ordered date, time, venue elements inside the card
	Info string `mapstructure:"info"`
	// Title selectors, tried in order
	Title []string `mapstructure:"title"`
	// Category selectors, tried in order
	Category []string `mapstructure:"category"`
}

//ChristUniversity is the markup of christuniversity.in/events
var ChristUniversity = Strategy{
	Name:     "christuniversity",
	Card:     "div.tab-pane div.d-flex.flex-direction-row.mt-2",
	Image:    []string{".event-img img", "img"},
	Info:     ".icon-info div span:nth-child(2)",
	Title:    []string{"h2"},
	Category: []string{".poppins-medium.rounded-pill.p-2.dep", ".dep"},
}

func init() {
	viper.SetDefault("extract.strategies", []map[string]interface{}{
		ChristUniversity.toMap(),
	})
}

func (s Strategy) toMap() map[string]interface{} {
	return map[string]interface{}{
		"name":     s.Name,
		"card":     s.Card,
		"image":    s.Image,
		"info":     s.Info,
		"title":    s.Title,
		"category": s.Category,
	}
}

//StrategiesFromViper loads `extract.strategies`, falling back to the built-in one if the config is unusable
func StrategiesFromViper() []Strategy {
	var ret []Strategy
	if err := viper.UnmarshalKey("extract.strategies", &ret); err != nil || len(ret) == 0 {
		return []Strategy{ChristUniversity}
	}

	valid := make([]Strategy, 0, len(ret))
	for _, s := range ret {
		if strings.TrimSpace(s.Card) == "" {
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return []Strategy{ChristUniversity}
	}
	return valid
}

//readySelector is a CSS selector list matching the card of any strategy
func readySelector(strategies []Strategy) string {
	cards := make([]string, 0, len(strategies))
	for _, s := range strategies {
		cards = append(cards, s.Card)
	}
	return strings.Join(cards, ", ")
}
