// Package algo holds the pure damage-factor, consequence and risk calculators.
// Every function here is deterministic arithmetic over fully populated inputs:
// defaulting and validation of raw inputs happen before these are called.
package algo

import (
	"fmt"
	"math"
	"strconv"
)

// InputError reports a present input whose value the formula cannot use.
type InputError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// clamp bounds v to [lo, hi]. Negative zero collapses to lo.
func clamp(v, lo, hi float64) float64 {
	if v <= lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// floor bounds v below by lo only.
func floor(v, lo float64) float64 {
	if v <= lo {
		return lo
	}
	return v
}

// fmtNum renders a number compactly for formula expressions.
func fmtNum(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// product multiplies fs, returning 0 as soon as any factor is zero so an
// overflowed factor elsewhere cannot turn the result into NaN.
func product(fs ...float64) float64 {
	p := 1.0
	for _, f := range fs {
		if f == 0 {
			return 0
		}
		p *= f
	}
	return p
}

// lookup returns table[key], or the neutral multiplier 1.0 for unknown keys.
// Unknown keys only reach here when the engine runs with lenient categories.
func lookup[K comparable](table map[K]float64, key K) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return 1.0
}

func boolFactor(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
