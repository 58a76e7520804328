package tools

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema derives a strict JSON Schema from a Go struct type.
// additionalProperties is false so clients sending unknown fields fail
// validation instead of being silently ignored.
func GenerateSchema[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	// Strip the $schema/$id noise; MCP clients only need the object shape.
	schema.Version = ""
	schema.ID = ""

	b, err := json.Marshal(schema)
	if err != nil {
		// Reflection of a plain input struct cannot fail to marshal; if it
		// does, the definition is unusable and startup should not proceed.
		panic("tools: marshal generated schema: " + err.Error())
	}
	return b
}
