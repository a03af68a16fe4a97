package grading

import (
	"math"
	"strconv"
	"strings"
)

// Verdict classifies one submitted answer for review display.
type Verdict int

const (
	Unattempted Verdict = iota
	Correct
	Wrong
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	default:
		return "unattempted"
	}
}

// DefaultTolerance is the absolute tolerance for answers with a fractional
// or exponential form. Tunable per deployment through config.
const DefaultTolerance = 0.01

// hasDecimalForm reports whether the value carries a fractional or
// exponential representation. Plain integer strings are compared exactly so
// large values never go through lossy float parsing.
func hasDecimalForm(s string) bool {
	return strings.ContainsAny(s, ".eE")
}

// Classify compares a submitted answer string against the canonical answer.
// Integer-looking pairs are compared string-exact; anything with a decimal or
// exponential form is compared numerically within tol. The asymmetry is
// deliberate: float parsing loses precision on large integers.
func Classify(submitted, answer string, tol float64) Verdict {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return Unattempted
	}
	answer = strings.TrimSpace(answer)

	if !hasDecimalForm(submitted) && !hasDecimalForm(answer) {
		if submitted == answer {
			return Correct
		}
		return Wrong
	}

	sv, errS := strconv.ParseFloat(submitted, 64)
	av, errA := strconv.ParseFloat(answer, 64)
	if errS != nil || errA != nil {
		return Wrong
	}
	if math.Abs(sv-av) <= tol+1e-9 {
		return Correct
	}
	return Wrong
}
