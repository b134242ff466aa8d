package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePrice coerces a legacy price to a non-negative amount rounded to cents.
// Numbers of any Go kind and strings carrying currency symbols or thousands separators are accepted.
// Anything else, and negative or non-finite amounts, is Defaulted to 0. It never fails.
func ParsePrice(v any) ParseResult[float64] {
	switch p := v.(type) {
	case nil:
		return defaulted[float64]("")
	case float64:
		return priceFromFloat(p, strconv.FormatFloat(p, 'f', -1, 64))
	case float32:
		return priceFromFloat(float64(p), strconv.FormatFloat(float64(p), 'f', -1, 32))
	case int:
		return priceFromFloat(float64(p), strconv.Itoa(p))
	case int32:
		return priceFromFloat(float64(p), strconv.FormatInt(int64(p), 10))
	case int64:
		return priceFromFloat(float64(p), strconv.FormatInt(p, 10))
	case int8, int16, uint, uint8, uint16, uint32, uint64:
		raw := fmt.Sprint(p)
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return defaulted[float64](raw)
		}
		return priceFromFloat(f, raw)
	case json.Number:
		return parsePriceString(string(p))
	case string:
		return parsePriceString(p)
	case fmt.Stringer:
		// bson Decimal128 and similar wrappers
		return parsePriceString(p.String())
	default:
		return defaulted[float64](fmt.Sprint(p))
	}
}

func priceFromFloat(f float64, raw string) ParseResult[float64] {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return defaulted[float64](raw)
	}
	return parsed(math.Round(f*100)/100, raw)
}

// parsePriceString handles both "45,50€" (comma decimal) and "1,234.56" (dot decimal).
// When both separators appear the last one is the decimal mark.
func parsePriceString(s string) ParseResult[float64] {
	raw := s
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return defaulted[float64](raw)
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return defaulted[float64](raw)
	}
	return priceFromFloat(f, raw)
}
