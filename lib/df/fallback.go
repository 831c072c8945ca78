package df

import (
	"fmt"

	"github.com/spf13/viper"
)

//Field names an EventRecord field
type Field string

const (
	FieldTitle    Field = "title"
	FieldDate     Field = "date"
	FieldTime     Field = "time"
	FieldVenue    Field = "venue"
	FieldCategory Field = "category"
	FieldImage    Field = "image"
)

//AllFields in JSON order
var AllFields = []Field{FieldTitle, FieldDate, FieldTime, FieldVenue, FieldCategory, FieldImage}

//Fallbacks is the value used for each field when it can't be extracted from a card
type Fallbacks struct {
	Values map[Field]string
	// TitleIndexed appends the 1-based card position to the title fallback
	TitleIndexed bool
}

func init() {
	for f, v := range DefaultFallbacks().Values {
		viper.SetDefault(fallbackKey(f), v)
	}
	viper.SetDefault("fallback.title_indexed", false)
}

func fallbackKey(f Field) string {
	return fmt.Sprintf("fallback.%s", f)
}

//DefaultFallbacks matches what the events page consumers expect when a field is missing
func DefaultFallbacks() *Fallbacks {
	return &Fallbacks{
		Values: map[Field]string{
			FieldTitle:    "Event Title",
			FieldDate:     "",
			FieldTime:     "",
			FieldVenue:    "",
			FieldCategory: "General",
			FieldImage:    "",
		},
	}
}

//FallbacksFromViper builds the fallback table from config
func FallbacksFromViper() *Fallbacks {
	ret := &Fallbacks{
		Values:       make(map[Field]string, len(AllFields)),
		TitleIndexed: viper.GetBool("fallback.title_indexed"),
	}
	for _, f := range AllFields {
		ret.Values[f] = viper.GetString(fallbackKey(f))
	}
	return ret
}

//For returns the fallback for field f on the card at position (0-based)
func (fb *Fallbacks) For(f Field, position int) string {
	v := fb.Values[f]
	if f == FieldTitle && fb.TitleIndexed {
		return fmt.Sprintf("%s %d", v, position+1)
	}
	return v
}

//Record returns a record with every field set to its fallback
func (fb *Fallbacks) Record(position int) EventRecord {
	r := EventRecord{}
	for _, f := range AllFields {
		r.Set(f, fb.For(f, position))
	}
	return r
}
