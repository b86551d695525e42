package repository

import "context"

// BrowserSession is one stateful browser tab. The number of "see more" clicks performed
// is session-relative state, so a session must never be shared between batch steps.
type BrowserSession interface {
	// Open navigates the session to url and waits for the document to load.
	Open(ctx context.Context, url string) error
	// Click waits for locator to become visible and enabled, scrolls it into view and clicks it.
	Click(ctx context.Context, locator string) error
	// ScrollPage scrolls the viewport down by one screen height.
	ScrollPage(ctx context.Context) error
	// Content returns the markup of the page as currently rendered.
	Content(ctx context.Context) (string, error)
	// Close releases the session and every browser resource behind it.
	Close() error
}

// SessionFactory opens fresh browser sessions.
type SessionFactory interface {
	NewSession(ctx context.Context) (BrowserSession, error)
}
