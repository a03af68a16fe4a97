package presets

import (
	"fmt"
	"testing"

	"github.com/talenthub/abacus-api/internal/generator"
)

func TestBlocksForLevelKnownLevels(t *testing.T) {
	for n := 1; n <= 10; n++ {
		level := fmt.Sprintf("AB-%d", n)
		blocks, ok := BlocksForLevel(level)
		if !ok {
			t.Fatalf("BlocksForLevel(%q) not found", level)
		}
		if len(blocks) == 0 {
			t.Fatalf("BlocksForLevel(%q) returned no blocks", level)
		}
		if err := generator.Validate(blocks); err != nil {
			t.Fatalf("preset %q fails validation: %v", level, err)
		}
		for _, b := range blocks {
			if b.EffectiveTitle() == "" {
				t.Fatalf("preset %q block %q has no title", level, b.ID)
			}
		}
	}
}

func TestBlocksForLevelUnknown(t *testing.T) {
	for _, level := range []string{"AB-0", "AB-11", "Custom", "XY-3", ""} {
		if _, ok := BlocksForLevel(level); ok {
			t.Errorf("BlocksForLevel(%q) = ok, want not found", level)
		}
	}
}

func TestLevelDisplayName(t *testing.T) {
	cases := []struct {
		level string
		want  string
	}{
		{"AB-1", "Basic Level 1"},
		{"AB-6", "Basic Level 6"},
		{"AB-7", "Advanced Level 7"},
		{"AB-10", "Advanced Level 10"},
		{"Custom", ""},
		{"bogus", ""},
	}
	for _, tc := range cases {
		if got := LevelDisplayName(tc.level); got != tc.want {
			t.Errorf("LevelDisplayName(%q) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestPresetsCompileDeterministically(t *testing.T) {
	blocks, ok := BlocksForLevel("AB-10")
	if !ok {
		t.Fatal("AB-10 preset missing")
	}
	first, err := generator.Compile(blocks, 4242)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := generator.Compile(blocks, 4242)
	if err != nil {
		t.Fatalf("Compile again: %v", err)
	}
	if len(first.Blocks) != len(second.Blocks) {
		t.Fatal("same seed produced different block counts")
	}
	for i := range first.Blocks {
		if len(first.Blocks[i].Questions) != len(second.Blocks[i].Questions) {
			t.Fatalf("block %d question counts differ between runs", i)
		}
	}
}
