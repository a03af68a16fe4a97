package generator

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParamState distinguishes "left at default", "cleared while editing",
// "explicitly set" and "unparsable". Only Explicit values are range-checked
// by Validate; Default and Empty defer to the generator's own default table.
type ParamState int

const (
	ParamDefault ParamState = iota
	ParamEmpty
	ParamExplicit
	ParamInvalid
)

// Param is one constraint field of a block configuration.
type Param struct {
	state ParamState
	value int64
}

func Explicit(v int64) Param { return Param{state: ParamExplicit, value: v} }
func EmptyParam() Param      { return Param{state: ParamEmpty} }

func (p Param) State() ParamState { return p.state }
func (p Param) IsExplicit() bool  { return p.state == ParamExplicit }

// Or resolves the param against a generator default. Empty counts as unset:
// clearing a field in the editor means "use default", not zero.
func (p Param) Or(def int64) int64 {
	if p.state == ParamExplicit {
		return p.value
	}
	return def
}

// Value returns the explicit value; only meaningful when IsExplicit.
func (p Param) Value() int64 { return p.value }

// UnmarshalJSON accepts a number, a numeric string (form inputs), an empty
// string (the editing sentinel), or null/absent. Anything else marks the
// param Invalid so validation can report it instead of silently clamping.
func (p *Param) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*p = Param{state: ParamDefault}
		return nil
	case s == `""`:
		*p = Param{state: ParamEmpty}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			*p = Param{state: ParamInvalid}
			return nil
		}
		v, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
		if err != nil {
			*p = Param{state: ParamInvalid}
			return nil
		}
		*p = Param{state: ParamExplicit, value: v}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		*p = Param{state: ParamInvalid}
		return nil
	}
	*p = Param{state: ParamExplicit, value: int64(f)}
	return nil
}

func (p Param) MarshalJSON() ([]byte, error) {
	switch p.state {
	case ParamExplicit:
		return []byte(strconv.FormatInt(p.value, 10)), nil
	case ParamEmpty:
		return []byte(`""`), nil
	default:
		return []byte("null"), nil
	}
}

// Constraints is the typed record of every constraint any operation type may
// consume. Which fields apply, their ranges and their defaults are declared
// per type in the registry.
type Constraints struct {
	Digits             Param `json:"digits,omitempty"`
	Rows               Param `json:"rows,omitempty"` // operand rows for multi-row arithmetic
	MultiplicandDigits Param `json:"multiplicandDigits,omitempty"`
	MultiplierDigits   Param `json:"multiplierDigits,omitempty"`
	DividendDigits     Param `json:"dividendDigits,omitempty"`
	DivisorDigits      Param `json:"divisorDigits,omitempty"`
	RootDigits         Param `json:"rootDigits,omitempty"`
	PercentageMin      Param `json:"percentageMin,omitempty"`
	PercentageMax      Param `json:"percentageMax,omitempty"`
	Base               Param `json:"base,omitempty"`
}
