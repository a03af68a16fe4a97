package generator

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator glyphs as rendered on papers.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "×"
	OpDiv = "÷"
)

// Shared param specs. Digit ceilings keep every answer within int64
// (arbitrary precision is out of scope; products stay under 19 digits).
func digitsSpec(max, def int64) paramSpec {
	return paramSpec{name: "digits", get: func(c Constraints) Param { return c.Digits }, min: 1, max: max, def: def}
}

func rowsSpec(def int64) paramSpec {
	return paramSpec{name: "rows", get: func(c Constraints) Param { return c.Rows }, min: 2, max: 10, def: def}
}

var (
	multiplicandSpec = paramSpec{name: "multiplicandDigits", get: func(c Constraints) Param { return c.MultiplicandDigits }, min: 1, max: 9, def: 2}
	multiplierSpec   = paramSpec{name: "multiplierDigits", get: func(c Constraints) Param { return c.MultiplierDigits }, min: 1, max: 9, def: 1}
	dividendSpec     = paramSpec{name: "dividendDigits", get: func(c Constraints) Param { return c.DividendDigits }, min: 1, max: 12, def: 3}
	divisorSpec      = paramSpec{name: "divisorDigits", get: func(c Constraints) Param { return c.DivisorDigits }, min: 1, max: 6, def: 1}
	rootSpec         = paramSpec{name: "rootDigits", get: func(c Constraints) Param { return c.RootDigits }, min: 1, max: 6, def: 2}
	pctMinSpec       = paramSpec{name: "percentageMin", get: func(c Constraints) Param { return c.PercentageMin }, min: 1, max: 100, def: 5}
	pctMaxSpec       = paramSpec{name: "percentageMax", get: func(c Constraints) Param { return c.PercentageMax }, min: 1, max: 100, def: 95}
)

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }

// formatHundredths renders v/100 exactly, trimming trailing zeros.
func formatHundredths(v int64) string {
	if v%100 == 0 {
		return formatInt(v / 100)
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	return strings.TrimRight(s, "0")
}

func repeatOp(op string, n int) []string {
	ops := make([]string, n)
	for i := range ops {
		ops[i] = op
	}
	return ops
}

func init() {
	register("addition", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Addition (%d-digit, %d rows)", c.Digits.Or(2), c.Rows.Or(3))
		},
		params: []paramSpec{digitsSpec(10, 2), rowsSpec(3)},
		gen: func(c Constraints, src *Source) Question {
			d := c.Digits.Or(2)
			rows := c.Rows.Or(3)
			operands := make([]int64, rows)
			var sum int64
			for i := range operands {
				operands[i] = src.DigitNumber(d)
				sum += operands[i]
			}
			return Question{Operands: operands, Operators: repeatOp(OpAdd, int(rows)-1), Answer: formatInt(sum), IsVertical: true}
		},
	})

	register("subtraction", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Subtraction (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(10, 2)},
		gen: func(c Constraints, src *Source) Question {
			d := c.Digits.Or(2)
			a, b := src.DigitNumber(d), src.DigitNumber(d)
			if b > a {
				a, b = b, a
			}
			return Question{Operands: []int64{a, b}, Operators: []string{OpSub}, Answer: formatInt(a - b), IsVertical: true}
		},
	})

	// Mixed rows of + and -. Sign draws are taken even when the running sum
	// forces a +, so the draw count stays fixed at 2*rows-1.
	register("add_sub", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Add/Subtract (%d-digit, %d rows)", c.Digits.Or(2), c.Rows.Or(3))
		},
		params: []paramSpec{digitsSpec(10, 2), rowsSpec(3)},
		gen: func(c Constraints, src *Source) Question {
			d := c.Digits.Or(2)
			rows := c.Rows.Or(3)
			operands := make([]int64, rows)
			operators := make([]string, rows-1)
			operands[0] = src.DigitNumber(d)
			sum := operands[0]
			for i := int64(1); i < rows; i++ {
				operands[i] = src.DigitNumber(d)
				subtract := src.Next() < 0.5
				if subtract && sum-operands[i] >= 0 {
					operators[i-1] = OpSub
					sum -= operands[i]
				} else {
					operators[i-1] = OpAdd
					sum += operands[i]
				}
			}
			return Question{Operands: operands, Operators: operators, Answer: formatInt(sum), IsVertical: true}
		},
	})

	register("multiplication", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Multiplication (%d×%d digits)", c.MultiplicandDigits.Or(2), c.MultiplierDigits.Or(1))
		},
		params: []paramSpec{multiplicandSpec, multiplierSpec},
		gen: func(c Constraints, src *Source) Question {
			a := src.DigitNumber(c.MultiplicandDigits.Or(2))
			b := src.DigitNumber(c.MultiplierDigits.Or(1))
			return Question{Operands: []int64{a, b}, Operators: []string{OpMul}, Answer: formatInt(a * b)}
		},
	})

	// Dividend is built as divisor*quotient so every division is exact; the
	// divisor domain never includes zero (DigitNumber floors at 1).
	register("division", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Division (%d÷%d digits)", c.DividendDigits.Or(3), c.DivisorDigits.Or(1))
		},
		params: []paramSpec{dividendSpec, divisorSpec},
		gen: func(c Constraints, src *Source) Question {
			dd := c.DividendDigits.Or(3)
			vd := c.DivisorDigits.Or(1)
			qd := dd - vd
			if qd < 1 {
				qd = 1
			}
			divisor := src.DigitNumber(vd)
			quotient := src.DigitNumber(qd)
			dividend := divisor * quotient
			return Question{Operands: []int64{dividend, divisor}, Operators: []string{OpDiv}, Answer: formatInt(quotient)}
		},
	})

	register("squares", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Squares (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(9, 2)},
		gen: func(c Constraints, src *Source) Question {
			n := src.DigitNumber(c.Digits.Or(2))
			return Question{Operands: []int64{n}, Operators: []string{"²"}, Answer: formatInt(n * n)}
		},
	})

	register("cubes", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Cubes (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(6, 2)},
		gen: func(c Constraints, src *Source) Question {
			n := src.DigitNumber(c.Digits.Or(2))
			return Question{Operands: []int64{n}, Operators: []string{"³"}, Answer: formatInt(n * n * n)}
		},
	})

	register("square_root", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Square Roots (%d-digit roots)", c.RootDigits.Or(2))
		},
		params: []paramSpec{rootSpec},
		gen: func(c Constraints, src *Source) Question {
			root := src.DigitNumber(c.RootDigits.Or(2))
			return Question{Operands: []int64{root * root}, Operators: []string{"√"}, Answer: formatInt(root)}
		},
	})

	register("cube_root", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Cube Roots (%d-digit roots)", c.RootDigits.Or(2))
		},
		params: []paramSpec{rootSpec},
		gen: func(c Constraints, src *Source) Question {
			root := src.DigitNumber(c.RootDigits.Or(2))
			return Question{Operands: []int64{root * root * root}, Operators: []string{"∛"}, Answer: formatInt(root)}
		},
	})

	register("lcm", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("LCM (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(4, 2)},
		gen: func(c Constraints, src *Source) Question {
			d := c.Digits.Or(2)
			a, b := src.DigitNumber(d), src.DigitNumber(d)
			return Question{Operands: []int64{a, b}, Operators: []string{"lcm"}, Answer: formatInt(a / gcd(a, b) * b)}
		},
	})

	register("gcd", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("GCD (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(4, 2)},
		gen: func(c Constraints, src *Source) Question {
			d := c.Digits.Or(2)
			a, b := src.DigitNumber(d), src.DigitNumber(d)
			return Question{Operands: []int64{a, b}, Operators: []string{"gcd"}, Answer: formatInt(gcd(a, b))}
		},
	})

	register("percentage", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Percentage (%d%%-%d%%)", c.PercentageMin.Or(5), c.PercentageMax.Or(95))
		},
		params: []paramSpec{pctMinSpec, pctMaxSpec, digitsSpec(9, 3)},
		gen: func(c Constraints, src *Source) Question {
			pct := src.IntBetween(c.PercentageMin.Or(5), c.PercentageMax.Or(95))
			amount := src.DigitNumber(c.Digits.Or(3))
			return Question{Operands: []int64{pct, amount}, Operators: []string{"%"}, Answer: formatHundredths(pct * amount)}
		},
	})

	// Tables are whole-block generators: one number is drawn per block and
	// multiplied across the requested rows.
	register("tables", opSpec{
		title: func(c Constraints) string {
			return fmt.Sprintf("Tables (%d-digit)", c.Digits.Or(2))
		},
		params: []paramSpec{digitsSpec(4, 2)},
		table: func(c Constraints, rows int, src *Source) []Question {
			n := src.DigitNumber(c.Digits.Or(2))
			questions := make([]Question, rows)
			for i := range questions {
				k := int64(i + 1)
				questions[i] = Question{Operands: []int64{n, k}, Operators: []string{OpMul}, Answer: formatInt(n * k)}
			}
			return questions
		},
	})
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
