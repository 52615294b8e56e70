package codec

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pthm/irisql/internal/dialect"
)

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01.
const unixEpochOrdinal = 719163

const (
	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

// Date marks a value as a calendar date rather than a datetime.
type Date struct {
	time.Time
}

// TimeOfDay is a wall-clock time expressed as the offset since midnight.
type TimeOfDay time.Duration

// EncodeBool maps true to 1 and false to 0.
func EncodeBool(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DecodeBool maps 0/1 to false/true. Any other value is returned unchanged;
// IRIS sometimes hands BIT columns back in forms the driver does not normalize.
func DecodeBool(v any) any {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return decodeBoolText(x, v)
	case []byte:
		return decodeBoolText(string(x), v)
	}
	if n, ok := toInt64(v); ok {
		switch n {
		case 0:
			return false
		case 1:
			return true
		}
	}
	return v
}

func decodeBoolText(s string, orig any) any {
	switch s {
	case "0":
		return false
	case "1":
		return true
	}
	return orig
}

// ordinal returns the proleptic Gregorian ordinal of t's calendar date.
func ordinal(t time.Time) int {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(midnight.Unix()/86400) + unixEpochOrdinal
}

func fromOrdinal(o int) time.Time {
	return time.Unix(int64(o-unixEpochOrdinal)*86400, 0).UTC()
}

// DateToHorolog returns the $HOROLOG day number of t's calendar date.
func DateToHorolog(t time.Time) int {
	return ordinal(t) - dialect.HorologOrdinalOffset
}

// HorologToDate returns the calendar date of a $HOROLOG day number.
func HorologToDate(h int) time.Time {
	return fromOrdinal(h + dialect.HorologOrdinalOffset)
}

// EncodeDate renders the calendar date of t as YYYY-MM-DD.
func EncodeDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DecodeDate accepts an ISO date string, a time.Time or a $HOROLOG integer.
// The result is midnight UTC.
func DecodeDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC), nil
	case Date:
		return DecodeDate(x.Time)
	case []byte:
		return DecodeDate(string(x))
	case string:
		s := strings.TrimSpace(x)
		if len(s) > len(dateLayout) {
			s = s[:len(dateLayout)]
		}
		t, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing date %q: %w", x, err)
		}
		return t, nil
	}
	if n, ok := toInt64(v); ok {
		return HorologToDate(int(n)), nil
	}
	return time.Time{}, fmt.Errorf("cannot decode %T as date", v)
}

// EncodeTime renders d as HH:MM:SS.ffffff. d must lie within a single day.
func EncodeTime(d time.Duration) (string, error) {
	if d < 0 || d >= day {
		return "", fmt.Errorf("time of day %s out of range", d)
	}
	d = d.Truncate(time.Microsecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, d/time.Microsecond), nil
}

// DecodeTime accepts HH:MM:SS[.ffffff], a time.Time (its clock is used) or an
// integer count of seconds since midnight as stored by $HOROLOG.
func DecodeTime(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Time:
		return clock(x), nil
	case TimeOfDay:
		return time.Duration(x), nil
	case []byte:
		return DecodeTime(string(x))
	case string:
		t, err := time.ParseInLocation("15:04:05.999999", strings.TrimSpace(x), time.UTC)
		if err != nil {
			return 0, fmt.Errorf("parsing time %q: %w", x, err)
		}
		return clock(t), nil
	}
	if n, ok := toInt64(v); ok {
		if n < 0 || n >= 86400 {
			return 0, fmt.Errorf("time of day %d seconds out of range", n)
		}
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("cannot decode %T as time", v)
}

func clock(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

// Adapt converts a bind parameter to the form the IRIS driver expects.
func Adapt(v any, opts Options) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return EncodeBool(x), nil
	case time.Time:
		return EncodeDatetime(x, opts)
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return EncodeDatetime(*x, opts)
	case Date:
		return EncodeDate(x.Time), nil
	case TimeOfDay:
		return EncodeTime(time.Duration(x))
	case time.Duration:
		return x.Microseconds(), nil
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return nil, err
		}
		if _, again := inner.(driver.Valuer); again {
			return inner, nil
		}
		return Adapt(inner, opts)
	}
	return v, nil
}

// AdaptAll adapts every element of args into a new slice.
func AdaptAll(args []any, opts Options) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		v, err := Adapt(a, opts)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// Decode converts a value fetched from a column of the given kind. NULLs and
// kinds without a converter pass through.
func Decode(kind dialect.FieldKind, v any, opts Options) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case dialect.DateTimeField:
		switch x := v.(type) {
		case time.Time:
			if opts.UseTZ {
				return time.Date(x.Year(), x.Month(), x.Day(), x.Hour(), x.Minute(), x.Second(), x.Nanosecond(), opts.loc()), nil
			}
			return x, nil
		case string:
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return DecodeDatetime(n, opts), nil
			}
			return parseTimestamp(x, opts)
		case []byte:
			return Decode(kind, string(x), opts)
		}
		if n, ok := toInt64(v); ok {
			return DecodeDatetime(n, opts), nil
		}
		return nil, fmt.Errorf("cannot decode %T as datetime", v)
	case dialect.DateField:
		d, err := DecodeDate(v)
		if err != nil {
			return nil, err
		}
		return Date{Time: d}, nil
	case dialect.TimeField:
		d, err := DecodeTime(v)
		if err != nil {
			return nil, err
		}
		return TimeOfDay(d), nil
	case dialect.BooleanField:
		return DecodeBool(v), nil
	case dialect.DurationField:
		if n, ok := toInt64(v); ok {
			return time.Duration(n) * time.Microsecond, nil
		}
		return v, nil
	}
	return v, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}
