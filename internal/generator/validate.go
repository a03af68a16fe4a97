package generator

import (
	"fmt"
	"strings"
)

// FieldError is one constraint violation, addressed by block and field so a
// form can highlight the exact offending input.
type FieldError struct {
	BlockID string `json:"block_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every violation across all blocks; validation
// is never fail-fast so the caller can report all offending fields at once.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("block %s: %s: %s", fe.BlockID, fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}

const (
	minCount = 1
	maxCount = 200
	minRows  = 2
	maxRows  = 100
)

// Validate checks every block before compilation. Only explicitly-set params
// are range-checked: a param left at the default or at the empty editing
// marker defers to the generator's default and is never an error. Returns nil
// when every block is clean.
func Validate(blocks []BlockConfig) ValidationErrors {
	var errs ValidationErrors

	for _, block := range blocks {
		spec, ok := registry[block.Type]
		if !ok {
			errs = append(errs, FieldError{BlockID: block.ID, Field: "type", Message: fmt.Sprintf("unknown operation type %q", block.Type)})
			continue
		}

		if spec.table != nil {
			if block.Rows < minRows || block.Rows > maxRows {
				errs = append(errs, FieldError{BlockID: block.ID, Field: "rows",
					Message: fmt.Sprintf("rows must be between %d and %d, got %d", minRows, maxRows, block.Rows)})
			}
		} else {
			if block.Count < minCount || block.Count > maxCount {
				errs = append(errs, FieldError{BlockID: block.ID, Field: "count",
					Message: fmt.Sprintf("count must be between %d and %d, got %d", minCount, maxCount, block.Count)})
			}
		}

		for _, ps := range spec.params {
			p := ps.get(block.Constraints)
			switch p.State() {
			case ParamInvalid:
				errs = append(errs, FieldError{BlockID: block.ID, Field: ps.name, Message: "value is not a whole number"})
			case ParamExplicit:
				if p.Value() < ps.min || p.Value() > ps.max {
					errs = append(errs, FieldError{BlockID: block.ID, Field: ps.name,
						Message: fmt.Sprintf("must be between %d and %d, got %d", ps.min, ps.max, p.Value())})
				}
			}
		}

		// Cross-field rule for percentage ranges; checked only when both ends
		// are explicit so a half-edited form does not error.
		if block.Constraints.PercentageMin.IsExplicit() && block.Constraints.PercentageMax.IsExplicit() {
			if block.Constraints.PercentageMin.Value() > block.Constraints.PercentageMax.Value() {
				errs = append(errs, FieldError{BlockID: block.ID, Field: "percentageMin",
					Message: "percentageMin must not exceed percentageMax"})
			}
		}
	}

	return errs
}
