// Package dialect holds the immutable description of the IRIS SQL dialect:
// capability flags, function allow-lists and codec settings.
//
// A Config is built once (usually from internal/cli) and passed by value to
// the renderer, the DDL editor and the driver wrapper. Nothing in the module
// mutates it after construction.
package dialect

import (
	"fmt"
	"strings"
	"time"
)

// ExistsStrategy selects how existence tests are rendered.
type ExistsStrategy string

const (
	// ExistsPredicate renders EXISTS (subquery).
	ExistsPredicate ExistsStrategy = "exists"
	// ExistsCount renders (SELECT COUNT(*) FROM (subquery)); callers compare
	// the result with > 0.
	ExistsCount ExistsStrategy = "count"
)

// Bias constants for the POSIXTIME wire encoding.
const (
	PositiveBias int64 = 1 << 60
	NegativeBias int64 = -(1 << 61) * 3
)

// HorologOrdinalOffset is the proleptic Gregorian ordinal of 1840-12-31,
// day 0 of the IRIS $HOROLOG calendar.
const HorologOrdinalOffset = 672046

// DefaultMaxNameLength is the IRIS limit on identifier length.
const DefaultMaxNameLength = 60

// Config describes the target dialect.
type Config struct {
	// Existence test rendering. Exactly one strategy is active per Config.
	Exists ExistsStrategy

	// Timezone handling for datetime parameters.
	UseTZ    bool
	Location *time.Location

	// MaxNameLength bounds every identifier segment.
	MaxNameLength int

	// Capability flags. Without TOP, limit-only windows use ROW_NUMBER().
	SupportsTop        bool
	SupportsNullsOrder bool
	SupportsBulkInsert bool

	// FnEscape lists the functions rendered with ODBC {fn NAME(...)} escapes.
	FnEscape map[string]bool

	// RandomFunction is called with RandomUpperBound to produce RANDOM().
	RandomFunction   string
	RandomUpperBound int64

	// RowNumberAlias names the synthetic column added by the pagination rewrite.
	RowNumberAlias string

	// AllowIdentityInsert appends the ALLOWIDENTITYINSERT class parameter to CREATE TABLE.
	AllowIdentityInsert bool

	// CurrentTimestampPrecision is the fractional-second precision of NOW().
	CurrentTimestampPrecision int

	// LargeTextTypes are declared column types stored as streams. Columns of
	// these types are converted to VARCHAR before concatenation.
	LargeTextTypes map[string]bool
}

// escapedFunctions are the scalar functions IRIS only accepts through the
// ODBC escape syntax.
var escapedFunctions = []string{
	"ACOS", "ASIN", "ATAN", "ATAN2", "COS", "COT", "EXP",
	"LN", "LOG", "LOG10", "PI", "SIN", "TAN",
}

// Default returns the configuration for a stock IRIS instance.
func Default() Config {
	fn := make(map[string]bool, len(escapedFunctions))
	for _, name := range escapedFunctions {
		fn[name] = true
	}
	return Config{
		Exists:                    ExistsPredicate,
		UseTZ:                     false,
		Location:                  time.UTC,
		MaxNameLength:             DefaultMaxNameLength,
		SupportsTop:               true,
		SupportsNullsOrder:        false,
		SupportsBulkInsert:        false,
		FnEscape:                  fn,
		RandomFunction:            "$RANDOM",
		RandomUpperBound:          1000000000,
		RowNumberAlias:            "row_number",
		AllowIdentityInsert:       true,
		CurrentTimestampPrecision: 6,
		LargeTextTypes: map[string]bool{
			"LONGVARCHAR": true,
			"LONG":        true,
			"TEXT":        true,
		},
	}
}

// Validate checks the settings that have no sensible fallback.
func (c Config) Validate() error {
	switch c.Exists {
	case ExistsPredicate, ExistsCount:
	default:
		return fmt.Errorf("unknown exists strategy %q (want %q or %q)", c.Exists, ExistsPredicate, ExistsCount)
	}
	if c.MaxNameLength <= 0 {
		return fmt.Errorf("max name length must be positive, got %d", c.MaxNameLength)
	}
	if c.RowNumberAlias == "" {
		return fmt.Errorf("row number alias must not be empty")
	}
	return nil
}

// Escaped reports whether fn must be wrapped in {fn ...}.
func (c Config) Escaped(fn string) bool {
	return c.FnEscape[strings.ToUpper(fn)]
}

// IsLargeText reports whether a declared column type is stored as a stream.
func (c Config) IsLargeText(dbType string) bool {
	return c.LargeTextTypes[strings.ToUpper(strings.TrimSpace(dbType))]
}

// Loc returns the configured location, defaulting to UTC.
func (c Config) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
