package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/talenthub/abacus-api/internal/generator"
)

// JSON column wrappers so gorm can round-trip the frozen paper payloads.

type PaperConfigJSON generator.PaperConfig

func (c PaperConfigJSON) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *PaperConfigJSON) Scan(src interface{}) error {
	return scanJSON(src, c)
}

type GeneratedBlocksJSON []generator.GeneratedBlock

func (b GeneratedBlocksJSON) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *GeneratedBlocksJSON) Scan(src interface{}) error {
	return scanJSON(src, b)
}

// AnswersJSON maps question id (decimal string) to the submitted value.
type AnswersJSON map[string]string

func (a AnswersJSON) Value() (driver.Value, error) {
	if a == nil {
		a = AnswersJSON{}
	}
	return json.Marshal(a)
}

func (a *AnswersJSON) Scan(src interface{}) error {
	return scanJSON(src, a)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column source %T", src)
	}
}
