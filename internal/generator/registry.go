package generator

import (
	"fmt"
	"sort"
)

// GenerateFunc produces one question. It must be pure: the same constraints
// and source state always yield the same question, and it must consume a
// fixed, bounded number of draws for its arity so sibling blocks sharing the
// source never desynchronize when an implementation is swapped.
type GenerateFunc func(c Constraints, src *Source) Question

// TableFunc realizes a whole table block (rows questions) so the sampled
// number is drawn once and shared across rows.
type TableFunc func(c Constraints, rows int, src *Source) []Question

type paramSpec struct {
	name     string
	get      func(Constraints) Param
	min, max int64
	def      int64
}

type opSpec struct {
	title  func(Constraints) string
	params []paramSpec
	gen    GenerateFunc
	table  TableFunc
}

var registry = map[string]opSpec{}

func register(typ string, spec opSpec) {
	if _, dup := registry[typ]; dup {
		panic("generator: duplicate operation type " + typ)
	}
	registry[typ] = spec
}

// KnownType reports whether typ has a registered generator.
func KnownType(typ string) bool {
	_, ok := registry[typ]
	return ok
}

// IsTableType reports whether typ generates whole-block tables and is sized
// by rows rather than count.
func IsTableType(typ string) bool {
	spec, ok := registry[typ]
	return ok && spec.table != nil
}

// Types returns every registered operation type, sorted.
func Types() []string {
	out := make([]string, 0, len(registry))
	for typ := range registry {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Generate produces one question of the given type. Constraints are assumed
// pre-validated (see Validate); defaults are applied here for params left at
// the default or empty marker.
func Generate(typ string, c Constraints, src *Source) (Question, error) {
	spec, ok := registry[typ]
	if !ok {
		return Question{}, fmt.Errorf("unknown operation type %q", typ)
	}
	if spec.gen == nil {
		return Question{}, fmt.Errorf("operation type %q generates whole blocks, not single questions", typ)
	}
	return spec.gen(c, src), nil
}

// DefaultTitle derives a display label from the type and constraints.
func DefaultTitle(typ string, c Constraints) string {
	spec, ok := registry[typ]
	if !ok {
		return typ
	}
	return spec.title(c)
}
