package extract

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fragforce/campusevents/lib/df"
	"github.com/sirupsen/logrus"
)

//fieldStep pulls one or more fields out of a card. values[i] belongs to fields[i]; "" means not found.
type fieldStep struct {
	fields  []df.Field
	extract func(card *goquery.Selection, s *Strategy, base *url.URL) []string
}

func defaultSteps() []fieldStep {
	return []fieldStep{
		{
			fields: []df.Field{df.FieldImage},
			extract: func(card *goquery.Selection, s *Strategy, base *url.URL) []string {
				return []string{imageOf(card, s.Image, base)}
			},
		},
		{
			fields: []df.Field{df.FieldDate, df.FieldTime, df.FieldVenue},
			extract: func(card *goquery.Selection, s *Strategy, _ *url.URL) []string {
				return infoOf(card, s.Info, 3)
			},
		},
		{
			fields: []df.Field{df.FieldTitle},
			extract: func(card *goquery.Selection, s *Strategy, _ *url.URL) []string {
				return []string{firstText(card, s.Title)}
			},
		},
		{
			fields: []df.Field{df.FieldCategory},
			extract: func(card *goquery.Selection, s *Strategy, _ *url.URL) []string {
				return []string{firstText(card, s.Category)}
			},
		},
	}
}

//parseCards maps the first MaxEvents cards of the first matching strategy to records
func (e *Extractor) parseCards(ctx context.Context, html string, pageURL string, stats *Stats) []df.EventRecord {
	log := df.Log.WithContext(ctx).WithField("page.url", pageURL)
	events := make([]df.EventRecord, 0, e.opts.MaxEvents)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.WithError(err).Warn("Problem parsing DOM snapshot")
		return events
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		log.WithError(err).Debug("Page URL isn't parsable - images stay as-is")
		base = nil
	}

	for i := range e.opts.Strategies {
		s := &e.opts.Strategies[i]
		cards := doc.Find(s.Card)
		if cards.Length() == 0 {
			log.WithField("strategy", s.Name).Trace("Strategy matched nothing")
			continue
		}

		stats.Strategy = s.Name
		stats.CardsFound = cards.Length()
		cards.EachWithBreak(func(pos int, card *goquery.Selection) bool {
			if pos >= e.opts.MaxEvents {
				return false
			}
			events = append(events, e.extractCard(log, card, s, pos, base, stats))
			return true
		})
		return events
	}

	log.Debug("No strategy matched any cards")
	return events
}

//extractCard never fails - missing fields use the fallback table, and a panic part way through
// still yields whatever was extracted before it
func (e *Extractor) extractCard(log *logrus.Entry, card *goquery.Selection, s *Strategy, pos int, base *url.URL, stats *Stats) (rec df.EventRecord) {
	log = log.WithFields(logrus.Fields{
		"card.position": pos,
		"strategy":      s.Name,
	})
	rec = e.opts.Fallbacks.Record(pos)

	defer func() {
		if r := recover(); r != nil {
			stats.CardErrors++
			log.WithField("panic", r).Warn("Problem processing card - keeping partial record")
		}
	}()

	for _, step := range e.steps {
		values := step.extract(card, s, base)
		for i, f := range step.fields {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			if v == "" {
				stats.miss(f)
				log.WithField("field", f).Trace("Field missing - using fallback")
				continue
			}
			rec.Set(f, v)
		}
	}
	return rec
}

//normalize collapses whitespace runs and trims
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

//firstText returns the first non-empty text of any selector, in selector order
func firstText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		text := ""
		card.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = normalize(s.Text())
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	return ""
}

//infoOf returns the text of the first n info elements, positionally - short lists leave blanks
func infoOf(card *goquery.Selection, selector string, n int) []string {
	ret := make([]string, n)
	if selector == "" {
		return ret
	}
	card.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= n {
			return false
		}
		ret[i] = normalize(s.Text())
		return true
	})
	return ret
}

//imageOf returns the absolute URL of the first image found by selectors
func imageOf(card *goquery.Selection, selectors []string, base *url.URL) string {
	for _, sel := range selectors {
		img := card.Find(sel).First()
		if img.Length() == 0 {
			continue
		}

		src := strings.TrimSpace(img.AttrOr("src", ""))
		// Lazy loaders park a placeholder in src and the real one in data-src
		if lazy := strings.TrimSpace(img.AttrOr("data-src", "")); lazy != "" && (src == "" || strings.HasPrefix(src, "data:")) {
			src = lazy
		}
		if src == "" {
			continue
		}
		return absURL(base, src)
	}
	return ""
}

func absURL(base *url.URL, ref string) string {
	if base == nil || strings.HasPrefix(ref, "data:") {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
