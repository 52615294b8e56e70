package irisql

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes of SQL lowering.
//
// ErrUnsupportedConstruct and ErrInvalidIdentifier are always surfaced to the
// caller. ErrRenderFallback is informational: the statement still rendered,
// using the baseline strategy, and the error is only handed to loggers and
// fallback hooks.
//
// Use the Is*Err helper functions to match wrapped errors.
var (
	// ErrUnsupportedConstruct is returned when a requested clause combination
	// has no valid rendering in IRIS SQL, such as DISTINCT ON fields combined
	// with GROUP BY under a row window.
	ErrUnsupportedConstruct = errors.New("irisql: unsupported construct")

	// ErrUnsupportedTimezone is returned when a timezone-aware value is bound
	// while the dialect is configured for naive datetimes.
	ErrUnsupportedTimezone = errors.New("irisql: timezone-aware datetimes are not supported when use_tz is false")

	// ErrInvalidIdentifier is returned for identifiers IRIS cannot host: table
	// names containing a dot, or names longer than the dialect name limit.
	ErrInvalidIdentifier = errors.New("irisql: invalid identifier")

	// ErrRenderFallback marks a windowed pagination rewrite that failed and was
	// replaced by the default rendering.
	ErrRenderFallback = errors.New("irisql: pagination rewrite fell back to default rendering")

	// ErrImproperlyConfigured is returned when connection settings are
	// incomplete (missing host, port, namespace, user or password).
	ErrImproperlyConfigured = errors.New("irisql: improperly configured")
)

// IsUnsupportedConstructErr returns true if err is or wraps ErrUnsupportedConstruct.
func IsUnsupportedConstructErr(err error) bool {
	return errors.Is(err, ErrUnsupportedConstruct)
}

// IsUnsupportedTimezoneErr returns true if err is or wraps ErrUnsupportedTimezone.
func IsUnsupportedTimezoneErr(err error) bool {
	return errors.Is(err, ErrUnsupportedTimezone)
}

// IsInvalidIdentifierErr returns true if err is or wraps ErrInvalidIdentifier.
func IsInvalidIdentifierErr(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}

// IsRenderFallbackErr returns true if err is or wraps ErrRenderFallback.
func IsRenderFallbackErr(err error) bool {
	return errors.Is(err, ErrRenderFallback)
}

// IsImproperlyConfiguredErr returns true if err is or wraps ErrImproperlyConfigured.
func IsImproperlyConfiguredErr(err error) bool {
	return errors.Is(err, ErrImproperlyConfigured)
}

// IdentifierError describes a rejected identifier.
type IdentifierError struct {
	Name   string
	Reason string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("irisql: invalid identifier %q: %s", e.Name, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidIdentifier.
func (e *IdentifierError) Unwrap() error {
	return ErrInvalidIdentifier
}

// Unsupported builds an ErrUnsupportedConstruct with a description of the
// offending construct.
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedConstruct, fmt.Sprintf(format, args...))
}
