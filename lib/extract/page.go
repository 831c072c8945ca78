package extract

import "time"

//Page is the slice of a live browser page the extractor needs - see browser.playwrightPage
type Page interface {
	// WaitFor blocks until selector matches at least one element or timeout passes
	WaitFor(selector string, timeout time.Duration) error
	// ScrollToBottom scrolls the viewport to the bottom of the document
	ScrollToBottom() error
	// ScrollHeight is the current document height
	ScrollHeight() (int, error)
	// HTML is a snapshot of the rendered DOM
	HTML() (string, error)
	// URL is the page's current URL, used to absolutize image links
	URL() string
}
