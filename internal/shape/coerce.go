package shape

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// String renders a decoded JSON value the way a loosely typed editor shows
// it: null becomes "", numbers use their shortest form, arrays are joined
// with commas and objects collapse to "[object Object]".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = String(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Truthy reports whether v counts as true: null, false, 0, NaN and "" do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// ClampInt converts v to a non-negative integer: max(0, trunc(number(v))).
// Values that do not convert to a finite number yield fallback.
//
// ClampInt is idempotent: ClampInt(ClampInt(x, f), f) == ClampInt(x, f).
func ClampInt(v any, fallback int) int {
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	f = math.Trunc(f)
	if f <= 0 {
		return 0
	}
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case int:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []any:
		switch len(x) {
		case 0:
			return 0, true
		case 1:
			return number(String(x[0]))
		}
		return 0, false
	default:
		return 0, false
	}
}
