package domain

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks a whole payload that could not be fetched or
// decoded. It is the only failure that crosses the engine boundary; bad rows
// and missing matches degrade to dropped rows and nil values instead.
var ErrSourceUnavailable = errors.New("source unavailable")

// SourceError attributes a fetch or decode failure to a source.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: source unavailable: %v", e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// Unavailable wraps err as a SourceError for source, leaving an existing
// SourceError untouched.
func Unavailable(source string, err error) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}
	return &SourceError{Source: source, Err: err}
}
