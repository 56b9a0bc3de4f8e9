package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/faculty-tracker/internal/common"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

//go:embed row.schema.json
var rowSchemaJSON []byte

var (
	rowSchemaOnce sync.Once
	rowSchema     *jsonschema.Schema
	rowSchemaErr  error
)

func compiledRowSchema() (*jsonschema.Schema, error) {
	rowSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("row.schema.json", bytes.NewReader(rowSchemaJSON)); err != nil {
			rowSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		rowSchema, rowSchemaErr = compiler.Compile("row.schema.json")
		if rowSchemaErr != nil {
			rowSchemaErr = fmt.Errorf("compile schema: %w", rowSchemaErr)
		}
	})
	return rowSchema, rowSchemaErr
}

// ValidateRow checks one output row against the embedded row schema.
func ValidateRow(r entity.Row) error {
	schema, err := compiledRowSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal row: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return common.NewAppError(common.CodeValidation, fmt.Sprintf("row %q does not match schema", r.Name),
			fmt.Errorf("%w: %v", common.ErrValidation, err))
	}
	return nil
}
