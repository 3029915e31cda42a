package frames

import (
	"errors"
	"fmt"
)

// Sentinel errors for invalid input.
// These can be checked with errors.Is().
var (
	// ErrUsage marks invalid command line input, such as a missing directory.
	ErrUsage = errors.New("usage error")
	// ErrParse marks a malformed resize or crop value.
	ErrParse = errors.New("parse error")
)

// usageError returns a wrapped ErrUsage.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// parseError returns a wrapped ErrParse for a resize or crop value.
func parseError(kind, value, reason string) error {
	return fmt.Errorf("%w: invalid %s %q: %s", ErrParse, kind, value, reason)
}

// fileError attaches the file a per-file tool failure belongs to.
func fileError(path string, err error) error {
	return fmt.Errorf("%s: %w", path, err)
}
