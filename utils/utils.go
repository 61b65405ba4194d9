// Package utils provides utility functions for the Pacifica SDK.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformedNumber is returned when a numeric string cannot be parsed.
// Callers must not swallow it: a malformed number inside a signed payload
// would corrupt the signature.
var ErrMalformedNumber = errors.New("malformed numeric value")

// FormatNumber converts a numeric value to its canonical decimal-string
// representation. The exchange verifies signed payloads byte-for-byte and
// rejects scientific notation, so every numeric field must go through here:
//
//   - integers render without a decimal point
//   - fractional values always render fixed-point ("0.00000001", never "1e-08")
//   - trailing zeros after the decimal point are stripped ("1.0" -> "1")
//   - strings carrying an exponent marker are parsed and re-rendered
//
// Accepted inputs: int, int64, float64, string, decimal.Decimal.
func FormatNumber(value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return normalize(decimal.NewFromFloat(v)), nil
	case decimal.Decimal:
		return normalize(v), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrMalformedNumber, v)
		}
		return normalize(d), nil
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrMalformedNumber, value)
	}
}

// normalize renders a decimal fixed-point and strips insignificant zeros.
// decimal.String never emits an exponent, so only the zero-stripping is ours.
func normalize(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}

// GetTimestampMs returns the current timestamp in milliseconds
func GetTimestampMs() int64 {
	return time.Now().UnixMilli()
}
