package df

import "errors"

var (
	// ErrLaunch means the headless browser (or its driver) couldn't be started
	ErrLaunch = errors.New("browser launch failed")
	// ErrNavigation means the events page didn't load within the navigation timeout
	ErrNavigation = errors.New("events page navigation failed")
	// ErrNotReady means no event card showed up within the readiness timeout
	ErrNotReady = errors.New("event cards did not appear in time")
	// ErrBusy means no scrape worker freed up before the request went away
	ErrBusy = errors.New("no scrape worker available")
)

//PublicError returns the short, user facing text for err - the top level sentinel if there is one
func PublicError(err error) string {
	for _, sentinel := range []error{ErrLaunch, ErrNavigation, ErrNotReady, ErrBusy} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "scrape failed"
}
