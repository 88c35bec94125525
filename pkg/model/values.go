// pkg/model/values.go
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TrimmedString converts a cell value to its trimmed string form. Nil
// renders as "".
func TrimmedString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

// ParseFloat attempts to read a cell as a float64. The second return is
// false when the cell is absent, empty, or does not parse; callers must
// treat that as an invalid state, never as zero.
func ParseFloat(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		cleaned := strings.TrimSpace(TrimmedString(v))
		if cleaned == "" {
			return 0, false
		}
		// Registry exports occasionally carry thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

// dateFormats covers the spellings seen across registry exports and GPS
// track files.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
}

// ParseTime attempts to read a cell as a calendar date/time. The second
// return is false for absent, empty, or unparseable cells.
func ParseTime(v interface{}) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}

	switch val := v.(type) {
	case time.Time:
		return val, true
	default:
		cleaned := strings.TrimSpace(TrimmedString(val))
		if cleaned == "" {
			return time.Time{}, false
		}
		for _, format := range dateFormats {
			if t, err := time.Parse(format, cleaned); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}

// ParseFlag interprets a registry boolean flag cell. A flag is set when the
// cell contains "YES" or "TRUE" (case-insensitive).
func ParseFlag(v interface{}) bool {
	s := strings.ToUpper(TrimmedString(v))
	return strings.Contains(s, "YES") || strings.Contains(s, "TRUE")
}
