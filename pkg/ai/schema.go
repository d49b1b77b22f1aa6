package ai

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Function describes a structured output the model is forced to produce
type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// NewFunction reflects the JSON schema of T into a function descriptor.
// Fields are required when tagged `jsonschema:"required"`; descriptions come
// from the `jsonschema_description` tag.
func NewFunction[T any](name, description string) Function {
	params, err := ParametersFor[T]()
	if err != nil {
		panic(fmt.Sprintf("ai: schema for %s: %v", name, err))
	}
	return Function{Name: name, Description: description, Parameters: params}
}

// ParametersFor returns the JSON schema of T without the meta keys the
// function calling API rejects.
func ParametersFor[T any]() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	return json.Marshal(m)
}
