package layout

import (
	"fmt"
	"unicode/utf8"
)

// Tier is a content-density bucket. Lower values are denser.
type Tier int

const (
	TierDense Tier = iota
	TierBalanced
	TierShort
)

const (
	// charsPerUnit 大约一行能排下的字符数，超出即折行。
	charsPerUnit = 55
	denseAbove   = 65
	shortBelow   = 25
)

// Tiers lists every defined tier from densest to loosest.
func Tiers() []Tier {
	return []Tier{TierDense, TierBalanced, TierShort}
}

func (t Tier) String() string {
	switch t {
	case TierDense:
		return "dense"
	case TierBalanced:
		return "balanced"
	case TierShort:
		return "short"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// MarshalText lets tiers appear by name in JSON responses.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	for _, candidate := range Tiers() {
		if candidate.String() == string(b) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("layout: unknown tier %q", b)
}

// Units estimates how many printed rows the lines occupy: one unit per
// started 55 characters, and at least one per line.
func Units(lines []string) int {
	total := 0
	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if n < 1 {
			n = 1
		}
		total += (n + charsPerUnit - 1) / charsPerUnit
	}
	return total
}

// Classify maps worksheet lines to a tier by visual density.
func Classify(lines []string) Tier {
	units := Units(lines)
	switch {
	case units > denseAbove:
		return TierDense
	case units < shortBelow:
		return TierShort
	default:
		return TierBalanced
	}
}
