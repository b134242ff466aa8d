package transform

import "strings"

// Outcome tells how a lenient parse arrived at its value.
type Outcome int

const (
	// Parsed means the input was understood as-is.
	Parsed Outcome = iota
	// Defaulted means the input was empty or unusable and the zero value was substituted.
	Defaulted
	// PassedThrough means no mapping existed and the input was kept unchanged.
	PassedThrough
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Defaulted:
		return "defaulted"
	case PassedThrough:
		return "passed_through"
	default:
		return "unknown"
	}
}

// ParseResult carries a value together with the path taken to produce it.
type ParseResult[T any] struct {
	Value   T
	Outcome Outcome
	Raw     string
}

func parsed[T any](v T, raw string) ParseResult[T] {
	return ParseResult[T]{Value: v, Outcome: Parsed, Raw: raw}
}

func defaulted[T any](raw string) ParseResult[T] {
	var zero T
	return ParseResult[T]{Value: zero, Outcome: Defaulted, Raw: raw}
}

// Report lists the fields of one record that did not parse cleanly.
// Empty inputs are not reported; only values that were present but unusable.
type Report struct {
	Defaulted     []string `json:"defaulted,omitempty"`
	PassedThrough []string `json:"passed_through,omitempty"`
}

// Clean reports whether every field parsed.
func (r Report) Clean() bool {
	return len(r.Defaulted) == 0 && len(r.PassedThrough) == 0
}

func (r Report) String() string {
	if r.Clean() {
		return ""
	}
	var parts []string
	if len(r.Defaulted) > 0 {
		parts = append(parts, "defaulted: "+strings.Join(r.Defaulted, ","))
	}
	if len(r.PassedThrough) > 0 {
		parts = append(parts, "passed through: "+strings.Join(r.PassedThrough, ","))
	}
	return strings.Join(parts, "; ")
}

func track[T any](r *Report, field string, res ParseResult[T]) T {
	switch {
	case res.Outcome == Defaulted && strings.TrimSpace(res.Raw) != "":
		r.Defaulted = append(r.Defaulted, field)
	case res.Outcome == PassedThrough:
		r.PassedThrough = append(r.PassedThrough, field)
	}
	return res.Value
}
