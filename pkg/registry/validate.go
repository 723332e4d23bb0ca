// pkg/registry/validate.go
package registry

import (
	"encoding/json"
	"fmt"

	"scholarship-workers/internal/common/validation"
)

// ValidateInput checks a job's input variables against the activity's
// registered input schema.
func (a *Activity) ValidateInput(input []byte) (*validation.ValidationResult, error) {
	if a.InputSchema == nil {
		return &validation.ValidationResult{Valid: true}, nil
	}

	schema, err := json.Marshal(a.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema for %s: %w", a.TaskType, err)
	}
	return validation.ValidateAgainstSchema(input, schema)
}

// ValidateOutput checks a worker's output against the registered output schema.
func (a *Activity) ValidateOutput(output interface{}) (*validation.ValidationResult, error) {
	if a.OutputSchema == nil {
		return &validation.ValidationResult{Valid: true}, nil
	}

	schema, err := json.Marshal(a.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal output schema for %s: %w", a.TaskType, err)
	}
	return validation.ValidateObject(output, schema)
}
