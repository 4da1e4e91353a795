package eval

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ToNumber converts v to a number the way a unary plus would: strings are
// trimmed and parsed, the empty string is 0, booleans are 1 and 0. Values
// that cannot be converted yield NaN.
func ToNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		return stringToNumber(string(n))
	case string:
		return stringToNumber(n)
	}

	return math.NaN()
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		digits, b := lower[2:], base(lower[1])

		v, err := strconv.ParseUint(digits, b, 64)
		if errors.Is(err, strconv.ErrRange) {
			return wideInteger(digits, b)
		}
		if err != nil {
			return math.NaN()
		}
		return float64(v)
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	// ParseFloat accepts spellings such as "inf", "nan" and "1_000" that a
	// unary plus rejects.
	for _, r := range lower {
		if !strings.ContainsRune("0123456789.e+-", r) {
			return math.NaN()
		}
	}

	// out of range values come back as ±Inf or 0 along with ErrRange
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}

	return v
}

// wideInteger converts digits that overflow a uint64, rounding to the nearest
// float64 or +Inf.
func wideInteger(digits string, base int) float64 {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}

	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

func base(prefix byte) int {
	switch prefix {
	case 'x':
		return 16
	case 'o':
		return 8
	}

	return 2
}

// looselyEquals reports whether v converts to n.
func looselyEquals(v any, n float64) bool {
	return ToNumber(v) == n
}
