package generator

import "fmt"

// The vedic technique families. Each series member is its own operation type
// (the enum of types is closed and large), registered programmatically so
// every member shares one audited generator.

// The multiplier series covers the teens, the ending-in-5 column, the
// repeated-digit column, the all-nines family (9, 99, 999) and the
// just-over-a-power-of-ten family (101, 111, 121).
var vedicMultipliers = []int64{
	9, 11, 12, 13, 14, 15, 16, 17, 18, 19,
	21, 24, 25, 26, 31, 33, 35, 41, 44, 45,
	51, 55, 65, 75, 85, 95, 99, 101, 105, 111,
	115, 121, 125, 999,
}

var vedicBases = []int64{10, 50, 100, 200, 500, 1000}

var vedicSquareBases = []int64{100, 1000}

var vedicComplementBases = []int64{10, 100, 1000, 10000}

var vedicDivisors = []int64{9, 11, 99}

func init() {
	for _, m := range vedicMultipliers {
		mult := m
		register(fmt.Sprintf("vedic_mul_%d", mult), opSpec{
			title: func(c Constraints) string {
				return fmt.Sprintf("Vedic ×%d (%d-digit)", mult, c.Digits.Or(2))
			},
			params: []paramSpec{digitsSpec(9, 2)},
			gen: func(c Constraints, src *Source) Question {
				n := src.DigitNumber(c.Digits.Or(2))
				return Question{Operands: []int64{n, mult}, Operators: []string{OpMul}, Answer: formatInt(n * mult)}
			},
		})
	}

	// Base method: both factors within 10% of the base, above or below it.
	// Four draws per question regardless of the signs taken.
	for _, b := range vedicBases {
		base := b
		register(fmt.Sprintf("vedic_base_%d_mul", base), opSpec{
			title: func(Constraints) string {
				return fmt.Sprintf("Vedic Base %d Multiplication", base)
			},
			gen: func(_ Constraints, src *Source) Question {
				span := base / 10
				if span < 1 {
					span = 1
				}
				nearBase := func() int64 {
					delta := src.IntBetween(1, span)
					if src.Next() < 0.5 {
						return base - delta
					}
					return base + delta
				}
				a, b := nearBase(), nearBase()
				return Question{Operands: []int64{a, b}, Operators: []string{OpMul}, Answer: formatInt(a * b)}
			},
		})
	}

	// Base method squares: one factor near the base, squared (98², 104²).
	for _, b := range vedicSquareBases {
		base := b
		register(fmt.Sprintf("vedic_base_%d_square", base), opSpec{
			title: func(Constraints) string {
				return fmt.Sprintf("Vedic Base %d Squaring", base)
			},
			gen: func(_ Constraints, src *Source) Question {
				delta := src.IntBetween(1, base/10)
				n := base - delta
				if src.Next() < 0.5 {
					n = base + delta
				}
				return Question{Operands: []int64{n}, Operators: []string{"²"}, Answer: formatInt(n * n)}
			},
		})
	}

	// Nikhilam complements: all from 9 and the last from 10.
	for _, b := range vedicComplementBases {
		base := b
		register(fmt.Sprintf("vedic_complement_%d", base), opSpec{
			title: func(Constraints) string {
				return fmt.Sprintf("Complements from %d", base)
			},
			gen: func(_ Constraints, src *Source) Question {
				n := src.IntBetween(1, base-1)
				return Question{Operands: []int64{base, n}, Operators: []string{OpSub}, Answer: formatInt(base - n)}
			},
		})
	}

	register("vedic_square_end5", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Squares Ending in 5 (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{{name: "digits", get: func(c Constraints) Param { return c.Digits }, min: 2, max: 9, def: 2}},
		gen: func(c Constraints, src *Source) Question {
			prefix := src.DigitNumber(c.Digits.Or(2) - 1)
			n := prefix*10 + 5
			return Question{Operands: []int64{n}, Operators: []string{"²"}, Answer: formatInt(n * n)}
		},
	})

	// Same tens digit, unit digits summing to 10 (e.g. 43 × 47).
	register("vedic_mul_same_prefix", opSpec{
		title: func(Constraints) string { return "Vedic Multiplication (units sum to 10)" },
		gen: func(_ Constraints, src *Source) Question {
			tens := src.IntBetween(1, 9)
			unit := src.IntBetween(1, 9)
			a := tens*10 + unit
			b := tens*10 + (10 - unit)
			return Question{Operands: []int64{a, b}, Operators: []string{OpMul}, Answer: formatInt(a * b)}
		},
	})

	register("vedic_double", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Doubling (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(9, 2)},
		gen: func(c Constraints, src *Source) Question {
			n := src.DigitNumber(c.Digits.Or(2))
			return Question{Operands: []int64{n, 2}, Operators: []string{OpMul}, Answer: formatInt(n * 2)}
		},
	})

	register("vedic_halve", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Halving (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(9, 2)},
		gen: func(c Constraints, src *Source) Question {
			half := src.DigitNumber(c.Digits.Or(2))
			return Question{Operands: []int64{half * 2, 2}, Operators: []string{OpDiv}, Answer: formatInt(half)}
		},
	})

	// Duplex squares: plain squares sized for the duplex expansion drill.
	register("vedic_square_duplex", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Duplex Squares (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{{name: "digits", get: func(c Constraints) Param { return c.Digits }, min: 2, max: 4, def: 2}},
		gen: func(c Constraints, src *Source) Question {
			n := src.DigitNumber(c.Digits.Or(2))
			return Question{Operands: []int64{n}, Operators: []string{"²"}, Answer: formatInt(n * n)}
		},
	})

	for _, d := range vedicDivisors {
		div := d
		register(fmt.Sprintf("vedic_div_%d", div), opSpec{
			title: func(c Constraints) string {
				return fmt.Sprintf("Division by %d (%d-digit quotients)", div, c.Digits.Or(2))
			},
			params: []paramSpec{digitsSpec(9, 2)},
			gen: func(c Constraints, src *Source) Question {
				q := src.DigitNumber(c.Digits.Or(2))
				return Question{Operands: []int64{q * div, div}, Operators: []string{OpDiv}, Answer: formatInt(q)}
			},
		})
	}
}
