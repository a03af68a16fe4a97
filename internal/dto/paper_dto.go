package dto

import (
	"time"

	"github.com/talenthub/abacus-api/internal/generator"
)

// PaperConfigDTO is the request body for preview and paper creation. Blocks
// may be empty for preset levels; they are resolved server-side.
type PaperConfigDTO struct {
	Title       string                  `json:"title" binding:"required"`
	Level       string                  `json:"level" binding:"required"`
	Blocks      []generator.BlockConfig `json:"blocks"`
	Orientation string                  `json:"orientation"`
}

// PreviewResponseDTO carries the compiled blocks plus the seed so the exact
// paper can be re-derived for the attempt.
type PreviewResponseDTO struct {
	Blocks []generator.GeneratedBlock `json:"blocks"`
	Seed   int64                      `json:"seed"`
}

// PaperResponseDTO is a saved paper configuration.
type PaperResponseDTO struct {
	ID        uint                  `json:"id"`
	Title     string                `json:"title"`
	Level     string                `json:"level"`
	Config    generator.PaperConfig `json:"config"`
	CreatedAt time.Time             `json:"created_at"`
}

// ValidationErrorResponse reports every offending block/field at once.
type ValidationErrorResponse struct {
	Message string                 `json:"message"`
	Errors  []generator.FieldError `json:"errors"`
}
