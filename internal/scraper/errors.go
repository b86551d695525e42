package scraper

import (
	"errors"
	"fmt"
)

// ValidationError indicates a request or planner input that cannot be processed.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "validation: " + e.Reason
}

// InteractionError indicates the "see more" control was missing or never became
// clickable. It fails the whole step.
type InteractionError struct {
	Locator string
	Attempt int
	Err     error
}

func (e InteractionError) Error() string {
	return fmt.Sprintf("interaction %d on %q: %v", e.Attempt, e.Locator, e.Err)
}

func (e InteractionError) Unwrap() error {
	return e.Err
}

// FetchError indicates a document could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// ParseError indicates structural extraction failed where no safe default exists.
type ParseError struct {
	Stage string
	Err   error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Stage, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// ErrorType returns a low-cardinality label for err, used as a metrics label.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	var validation ValidationError
	if errors.As(err, &validation) {
		return "validation"
	}
	var interaction InteractionError
	if errors.As(err, &interaction) {
		return "interaction"
	}
	var fetch FetchError
	if errors.As(err, &fetch) {
		return "fetch"
	}
	var parse ParseError
	if errors.As(err, &parse) {
		return "parse"
	}
	return "other"
}
