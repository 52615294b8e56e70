package ddl

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pthm/irisql/internal/codec"
)

// QuoteValue renders v as a SQL literal. DDL statements cannot carry bind
// parameters, so column defaults are inlined with it.
func (e *Editor) QuoteValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		return strconv.Itoa(codec.EncodeBool(x)), nil
	case int:
		return strconv.Itoa(x), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return quoteString(x), nil
	case []byte:
		return quoteString(string(x)), nil
	case time.Time:
		s, err := codec.FormatDatetime(x, e.codec)
		if err != nil {
			return "", err
		}
		return quoteString(s), nil
	case codec.Date:
		return quoteString(codec.EncodeDate(x.Time)), nil
	case codec.TimeOfDay:
		s, err := codec.EncodeTime(time.Duration(x))
		if err != nil {
			return "", err
		}
		return quoteString(s), nil
	case fmt.Stringer:
		return quoteString(x.String()), nil
	}
	return "", fmt.Errorf("cannot render %T as a SQL literal", v)
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// namesDigest returns the first length hex digits of the md5 of names.
func namesDigest(length int, names ...string) string {
	h := md5.New()
	for _, n := range names {
		h.Write([]byte(n))
	}
	return hex.EncodeToString(h.Sum(nil))[:length]
}

// TruncateName shortens name to at most length characters by replacing its
// tail with a hash of the full name. Shorter names are returned unchanged.
func TruncateName(name string, length, hashLen int) string {
	if length <= 0 || len(name) <= length {
		return name
	}
	if hashLen > length {
		hashLen = length
	}
	return name[:length-hashLen] + namesDigest(hashLen, name)
}

// constraintName builds a deterministic name for an index or constraint on
// columns of table that fits the identifier limit.
func (e *Editor) constraintName(table string, columns []string, suffix string) string {
	hashPart := namesDigest(8, append([]string{table}, columns...)...) + suffix
	name := fmt.Sprintf("%s_%s_%s", table, strings.Join(columns, "_"), hashPart)
	limit := e.cfg.MaxNameLength
	if len(name) <= limit {
		return name
	}

	if len(hashPart) > limit/3 {
		hashPart = hashPart[:limit/3]
	}
	other := max((limit-len(hashPart))/2-1, 0)
	cols := strings.Join(columns, "_")
	name = fmt.Sprintf("%s_%s_%s", clip(table, other), clip(cols, other), hashPart)
	if name[0] == '_' || (name[0] >= '0' && name[0] <= '9') {
		name = "D" + name[:len(name)-1]
	}
	return clip(name, limit)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
