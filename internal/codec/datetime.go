// Package codec converts application values to and from the IRIS wire
// representation.
//
// Datetimes travel as POSIXTIME: a signed microsecond count since the Unix
// epoch with a piecewise bias, so that native integer ordering matches
// chronological ordering on both sides of the epoch. Booleans travel as 0/1.
// Dates and times of day use ISO strings on the way in and accept either
// strings or $HOROLOG integers on the way out.
//
// Every function here is pure. Settings are passed in as Options values.
package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/pthm/irisql"
	"github.com/pthm/irisql/internal/dialect"
)

// Options carries the timezone settings of the dialect.
type Options struct {
	UseTZ    bool
	Location *time.Location
}

// OptionsFrom extracts codec settings from a dialect configuration.
func OptionsFrom(cfg dialect.Config) Options {
	return Options{UseTZ: cfg.UseTZ, Location: cfg.Loc()}
}

func (o Options) loc() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// naive reports whether t carries no zone information. Go has no naive
// datetimes; a UTC location is treated as "no zone".
func naive(t time.Time) bool {
	return t.Location() == time.UTC
}

// EncodeDatetime converts t to its biased POSIXTIME value.
//
// With UseTZ the value is first converted to the configured location and its
// wall clock is stored. Without UseTZ only naive (UTC) values are accepted.
func EncodeDatetime(t time.Time, opts Options) (int64, error) {
	wall, err := wallClock(t, opts)
	if err != nil {
		return 0, err
	}
	raw := wall.UnixMicro()

	if raw >= 0 {
		if raw > math.MaxInt64-dialect.PositiveBias {
			return 0, fmt.Errorf("datetime %s out of POSIXTIME range", wall.Format(time.RFC3339Nano))
		}
		return raw + dialect.PositiveBias, nil
	}
	if raw < math.MinInt64-dialect.NegativeBias {
		return 0, fmt.Errorf("datetime %s out of POSIXTIME range", wall.Format(time.RFC3339Nano))
	}
	return raw + dialect.NegativeBias, nil
}

// FormatDatetime renders t as a TIMESTAMP literal body, applying the same
// timezone policy as EncodeDatetime.
func FormatDatetime(t time.Time, opts Options) (string, error) {
	wall, err := wallClock(t, opts)
	if err != nil {
		return "", err
	}
	return wall.Format(timestampLayout), nil
}

// wallClock returns the naive wall clock stored for t.
func wallClock(t time.Time, opts Options) (time.Time, error) {
	if opts.UseTZ {
		t = t.In(opts.loc())
	} else if !naive(t) {
		return time.Time{}, fmt.Errorf("%w: got location %s", irisql.ErrUnsupportedTimezone, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// DecodeDatetime inverts EncodeDatetime. With UseTZ the stored wall clock is
// interpreted in the configured location.
func DecodeDatetime(native int64, opts Options) time.Time {
	var raw int64
	if native > 0 {
		raw = native - dialect.PositiveBias
	} else {
		raw = native - dialect.NegativeBias
	}

	t := time.UnixMicro(raw).UTC()
	if opts.UseTZ {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), opts.loc())
	}
	return t
}

// timestampLayout is the textual form IRIS uses for TIMESTAMP columns.
const timestampLayout = "2006-01-02 15:04:05.999999"

// parseTimestamp reads a textual TIMESTAMP value as a naive datetime.
func parseTimestamp(s string, opts Options) (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	if opts.UseTZ {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), opts.loc())
	}
	return t, nil
}
