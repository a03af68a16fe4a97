package generator

import "fmt"

// CompiledPaper is the output of Compile: the realized blocks plus the seed
// they were generated from, so the identical paper can be re-derived later.
type CompiledPaper struct {
	Blocks []GeneratedBlock `json:"blocks"`
	Seed   int64            `json:"seed"`
}

// Compile realizes every block in array order against one shared source, so
// the whole paper is reproducible end to end from a single seed. Question ids
// are a running counter across the entire paper, starting at 1; a block with
// zero questions still appears in the output and does not break continuity.
// Constraints are assumed pre-validated (see Validate).
func Compile(blocks []BlockConfig, seed int64) (*CompiledPaper, error) {
	src := NewSource(seed)
	out := make([]GeneratedBlock, 0, len(blocks))
	nextID := 1

	for _, block := range blocks {
		spec, ok := registry[block.Type]
		if !ok {
			return nil, fmt.Errorf("block %q: unknown operation type %q", block.ID, block.Type)
		}

		var questions []Question
		if spec.table != nil {
			questions = spec.table(block.Constraints, block.Rows, src)
		} else {
			questions = make([]Question, 0, block.Count)
			for i := 0; i < block.Count; i++ {
				questions = append(questions, spec.gen(block.Constraints, src))
			}
		}
		for i := range questions {
			questions[i].ID = nextID
			nextID++
		}
		out = append(out, GeneratedBlock{Config: block, Questions: questions})
	}

	return &CompiledPaper{Blocks: out, Seed: seed}, nil
}

// CompileNew compiles with a freshly chosen seed and returns it so callers
// can persist it for re-derivation.
func CompileNew(blocks []BlockConfig) (*CompiledPaper, error) {
	return Compile(blocks, RandomSeed())
}
