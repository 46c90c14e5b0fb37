package recoders

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumeric coerces text to a finite float. Surrounding blanks are ignored.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseInteger coerces text to an integer, truncating toward zero
// ("45.7" -> 45). Values outside the 32-bit range are rejected.
func ParseInteger(s string) (int, bool) {
	v, ok := ParseNumeric(s)
	if !ok {
		return 0, false
	}
	v = math.Trunc(v)
	if v > math.MaxInt32 || v < -math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
