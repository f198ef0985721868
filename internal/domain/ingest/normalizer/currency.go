package normalizer

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrency converts an arbitrary cell value to a finite float64.
//
// Numeric values pass through directly; strings get thousands-separator
// commas stripped and accounting-style parenthesized negatives rewritten
// ("(123.45)" -> "-123.45") before parsing. Anything unparseable, NaN, or
// infinite coerces to 0. This function never fails: downstream ledger columns
// are NOT NULL and dirty exports are the norm, not the exception.
func ParseCurrency(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(v)
	case float32:
		return finiteOrZero(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return parseCurrencyString(v)
	default:
		return 0
	}
}

func parseCurrencyString(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ",", "")
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return finiteOrZero(d.InexactFloat64())
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
