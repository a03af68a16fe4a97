package generator

import (
	"encoding/json"
	"testing"
)

func hasFieldError(errs ValidationErrors, blockID, field string) bool {
	for _, e := range errs {
		if e.BlockID == blockID && e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateBlocks(t *testing.T) {
	tests := []struct {
		name      string
		block     BlockConfig
		wantField string // "" means the block must validate clean
	}{
		{
			name:  "defaults are never an error",
			block: BlockConfig{ID: "b", Type: "addition", Count: 10},
		},
		{
			name: "empty marker tolerated during editing",
			block: BlockConfig{ID: "b", Type: "addition", Count: 10,
				Constraints: Constraints{Digits: EmptyParam()}},
		},
		{
			name: "explicit in-range value",
			block: BlockConfig{ID: "b", Type: "addition", Count: 10,
				Constraints: Constraints{Digits: Explicit(4), Rows: Explicit(5)}},
		},
		{
			name: "explicit out-of-range digits",
			block: BlockConfig{ID: "b", Type: "addition", Count: 10,
				Constraints: Constraints{Digits: Explicit(500)}},
			wantField: "digits",
		},
		{
			name:      "count below range",
			block:     BlockConfig{ID: "b", Type: "addition", Count: 0},
			wantField: "count",
		},
		{
			name:      "count above range",
			block:     BlockConfig{ID: "b", Type: "addition", Count: 201},
			wantField: "count",
		},
		{
			name:      "table type uses rows bounds",
			block:     BlockConfig{ID: "b", Type: "tables", Rows: 1},
			wantField: "rows",
		},
		{
			name:  "table rows in range",
			block: BlockConfig{ID: "b", Type: "tables", Rows: 100},
		},
		{
			name:      "unknown type",
			block:     BlockConfig{ID: "b", Type: "mind_reading", Count: 5},
			wantField: "type",
		},
		{
			name: "percentage min greater than max",
			block: BlockConfig{ID: "b", Type: "percentage", Count: 5,
				Constraints: Constraints{PercentageMin: Explicit(60), PercentageMax: Explicit(40)}},
			wantField: "percentageMin",
		},
		{
			name: "percentage min explicit alone is fine",
			block: BlockConfig{ID: "b", Type: "percentage", Count: 5,
				Constraints: Constraints{PercentageMin: Explicit(60)}},
		},
		{
			name: "multiplier digits out of range",
			block: BlockConfig{ID: "b", Type: "multiplication", Count: 5,
				Constraints: Constraints{MultiplierDigits: Explicit(0)}},
			wantField: "multiplierDigits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate([]BlockConfig{tt.block})
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if !hasFieldError(errs, tt.block.ID, tt.wantField) {
				t.Fatalf("expected error on field %q, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateAggregatesAcrossBlocks(t *testing.T) {
	blocks := []BlockConfig{
		{ID: "b1", Type: "addition", Count: 0, Constraints: Constraints{Digits: Explicit(99)}},
		{ID: "b2", Type: "percentage", Count: 5, Constraints: Constraints{PercentageMin: Explicit(90), PercentageMax: Explicit(10)}},
	}
	errs := Validate(blocks)
	if !hasFieldError(errs, "b1", "count") || !hasFieldError(errs, "b1", "digits") || !hasFieldError(errs, "b2", "percentageMin") {
		t.Fatalf("expected aggregated errors for both blocks, got %v", errs)
	}
}

func TestValidateRejectsUnparsableParam(t *testing.T) {
	var c Constraints
	if err := json.Unmarshal([]byte(`{"digits":"lots"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	errs := Validate([]BlockConfig{{ID: "b", Type: "addition", Count: 5, Constraints: c}})
	if !hasFieldError(errs, "b", "digits") {
		t.Fatalf("expected invalid digits to be reported, got %v", errs)
	}
}
