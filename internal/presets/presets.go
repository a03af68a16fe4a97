// Package presets holds the built-in paper layouts for the graded abacus
// levels. Levels AB-1 to AB-6 are the basic course, AB-7 to AB-10 advanced.
package presets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talenthub/abacus-api/internal/generator"
)

const (
	basicLevels    = 6
	advancedLevels = 4
)

// BlocksForLevel returns a fresh copy of the preset block configurations for
// the given level code, or false for unknown/custom levels.
func BlocksForLevel(level string) ([]generator.BlockConfig, bool) {
	n, ok := levelNumber(level)
	if !ok {
		return nil, false
	}
	blocks := buildLevel(n)
	generator.NormalizeTitles(blocks)
	return blocks, true
}

// LevelDisplayName converts a level code to its display name. "Custom" and
// unknown codes have none.
func LevelDisplayName(level string) string {
	n, ok := levelNumber(level)
	if !ok {
		return ""
	}
	if n <= basicLevels {
		return fmt.Sprintf("Basic Level %d", n)
	}
	return fmt.Sprintf("Advanced Level %d", n)
}

func levelNumber(level string) (int, bool) {
	rest, found := strings.CutPrefix(level, "AB-")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > basicLevels+advancedLevels {
		return 0, false
	}
	return n, true
}

// buildLevel scales digit counts and row counts with the level number, the
// way the printed course books ramp difficulty.
func buildLevel(n int) []generator.BlockConfig {
	digits := int64(1 + (n-1)/2) // 1,1,2,2,3,3,4,4,5,5
	rows := int64(3 + (n-1)/3)   // 3..6

	blocks := []generator.BlockConfig{
		{
			ID:    fmt.Sprintf("ab%d-addsub", n),
			Type:  "add_sub",
			Count: 20,
			Constraints: generator.Constraints{
				Digits: generator.Explicit(digits),
				Rows:   generator.Explicit(rows),
			},
		},
		{
			ID:    fmt.Sprintf("ab%d-mul", n),
			Type:  "multiplication",
			Count: 10,
			Constraints: generator.Constraints{
				MultiplicandDigits: generator.Explicit(digits),
				MultiplierDigits:   generator.Explicit(max64(1, digits-1)),
			},
		},
	}

	if n >= 3 {
		blocks = append(blocks, generator.BlockConfig{
			ID:    fmt.Sprintf("ab%d-div", n),
			Type:  "division",
			Count: 10,
			Constraints: generator.Constraints{
				DividendDigits: generator.Explicit(digits + 1),
				DivisorDigits:  generator.Explicit(1),
			},
		})
	}
	if n >= 5 {
		blocks = append(blocks, generator.BlockConfig{
			ID:    fmt.Sprintf("ab%d-tables", n),
			Type:  "tables",
			Rows:  10,
			Constraints: generator.Constraints{
				Digits: generator.Explicit(min64(digits, 4)),
			},
		})
	}
	if n >= 7 {
		blocks = append(blocks,
			generator.BlockConfig{
				ID:    fmt.Sprintf("ab%d-sq", n),
				Type:  "squares",
				Count: 10,
				Constraints: generator.Constraints{
					Digits: generator.Explicit(min64(digits, 3)),
				},
			},
			generator.BlockConfig{
				ID:    fmt.Sprintf("ab%d-vedic11", n),
				Type:  "vedic_mul_11",
				Count: 10,
				Constraints: generator.Constraints{
					Digits: generator.Explicit(digits),
				},
			},
		)
	}
	if n >= 9 {
		blocks = append(blocks, generator.BlockConfig{
			ID:    fmt.Sprintf("ab%d-pct", n),
			Type:  "percentage",
			Count: 10,
			Constraints: generator.Constraints{
				PercentageMin: generator.Explicit(5),
				PercentageMax: generator.Explicit(95),
			},
		})
	}

	return blocks
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
