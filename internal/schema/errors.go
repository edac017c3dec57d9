package schema

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when the input is neither a valid table nor a valid nested node.
var ErrMalformedInput = errors.New("malformed input")

// ErrDepthExceeded matches any *DepthError.
var ErrDepthExceeded = errors.New("nesting depth exceeded")

// DepthError reports nested input deeper than the configured limit.
type DepthError struct {
	Path  string
	Limit int
}

func (e *DepthError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nesting depth exceeded: limit %d at document root", e.Limit)
	}
	return fmt.Sprintf("nesting depth exceeded: limit %d at %q", e.Limit, e.Path)
}

func (e *DepthError) Unwrap() error { return ErrDepthExceeded }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
