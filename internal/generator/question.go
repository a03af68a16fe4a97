package generator

// Question is one generated problem. Created once at compile time and never
// mutated by the attempt flow. Answer is string-encoded so large integers
// survive JSON round trips without float precision loss.
type Question struct {
	ID         int      `json:"id"`
	Operands   []int64  `json:"operands"`
	Operators  []string `json:"operators,omitempty"`
	Answer     string   `json:"answer"`
	IsVertical bool     `json:"is_vertical,omitempty"`
}

// BlockConfig is one configured section of a paper. Count bounds 1-200;
// table-style operations use Rows (2-100) instead.
type BlockConfig struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Count       int         `json:"count,omitempty"`
	Rows        int         `json:"rows,omitempty"`
	Constraints Constraints `json:"constraints"`
	Title       string      `json:"title,omitempty"`
	TitleCustom bool        `json:"title_custom,omitempty"`
}

// EffectiveTitle is the user override when one was set, otherwise a label
// derived from the type and constraints.
func (b BlockConfig) EffectiveTitle() string {
	if b.TitleCustom && b.Title != "" {
		return b.Title
	}
	return DefaultTitle(b.Type, b.Constraints)
}

// QuestionCount is the number of questions this block will yield.
func (b BlockConfig) QuestionCount() int {
	if IsTableType(b.Type) {
		return b.Rows
	}
	return b.Count
}

// NormalizeTitles refreshes derived titles in place. Custom titles are left
// alone so user overrides survive edits that do not change the type.
func NormalizeTitles(blocks []BlockConfig) {
	for i := range blocks {
		if !blocks[i].TitleCustom {
			blocks[i].Title = DefaultTitle(blocks[i].Type, blocks[i].Constraints)
		}
	}
}

// GeneratedBlock pairs a block configuration with its realized questions.
// Produced only by Compile; read-only afterward.
type GeneratedBlock struct {
	Config    BlockConfig `json:"config"`
	Questions []Question  `json:"questions"`
}

// PaperConfig is the user-editable paper definition. It is frozen
// (serialized) once attached to an attempt.
type PaperConfig struct {
	Title       string        `json:"title"`
	Level       string        `json:"level"`
	Blocks      []BlockConfig `json:"blocks"`
	Orientation string        `json:"orientation,omitempty"`
}
