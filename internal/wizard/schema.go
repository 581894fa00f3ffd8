package wizard

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/qri-io/jsonschema"
)

//go:embed worker_form.schema.json
var formSchemaJSON []byte

var (
	schemaOnce sync.Once
	formSchema *jsonschema.Schema
	schemaErr  error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(formSchemaJSON, rs); err != nil {
			schemaErr = fmt.Errorf("compile worker form schema: %w", err)
			return
		}
		formSchema = rs
	})
	return formSchema, schemaErr
}

// ValidateForm checks a raw JSON form or form patch against the worker form
// schema. It returns one message per violation; an error means raw could not
// be validated at all.
func ValidateForm(ctx context.Context, raw []byte) ([]string, error) {
	rs, err := loadSchema()
	if err != nil {
		return nil, err
	}
	verrs, err := rs.ValidateBytes(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("validate worker form: %w", err)
	}
	out := make([]string, 0, len(verrs))
	for _, v := range verrs {
		if v.PropertyPath != "" && v.PropertyPath != "/" {
			out = append(out, v.PropertyPath+": "+v.Message)
			continue
		}
		out = append(out, v.Message)
	}
	return out, nil
}
