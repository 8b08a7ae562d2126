package util

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Truthy mirrors the falsiness rules of the catalog exports: nil, empty
// strings, zero numbers, false and empty containers are all "missing".
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String() != ""
		}
		return f != 0
	case float64:
		return x != 0
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case []any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// Text renders a loosely-typed value as a string. Whole floats lose their
// fractional part so a spreadsheet 5916.0 reads as "5916".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Int coerces numbers and numeric text to an int. Fractions are truncated.
func Int(v any) (int, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		if f, err := x.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(x), true
	case float32:
		return int(x), true
	case int:
		return x, true
	case int64:
		return int(x), true
	case string:
		return ParseCount(x)
	default:
		return 0, false
	}
}

// Number returns v as a JSON-friendly scalar: json.Number becomes int or
// float64, everything else is left alone.
func Number(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func StringPtr(v string) *string { return &v }

func TrimmedText(v any) string {
	return strings.TrimSpace(Text(v))
}
