// Package validate checks invocation arguments against a tool's declared
// JSON Schema before any handler runs.
//
// Classification is explicit: required fields, declared types, and unknown
// fields are checked structurally so each failure maps to exactly one error
// kind naming the offending field. The compiled schema then runs as a
// backstop for anything the structural pass does not model (nested shapes,
// enums), in the same compile-once/validate-per-call pattern goa services use.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"

	"github.com/figgen/mcp-server/internal/faults"
)

// Validator holds a tool's compiled schema. Built once at startup; safe for
// concurrent use afterwards.
type Validator struct {
	tool     string
	schema   *jsonschema.Schema
	required []string
	// types maps field name to its declared JSON type ("" when undeclared).
	types map[string]string
}

// Compile parses and compiles a tool's input schema.
func Compile(tool string, schemaJSON json.RawMessage) (*Validator, error) {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema for %s: %w", tool, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource for %s: %w", tool, err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", tool, err)
	}

	v := &Validator{
		tool:   tool,
		schema: schema,
		types:  make(map[string]string),
	}
	for _, req := range gjson.GetBytes(schemaJSON, "required").Array() {
		v.required = append(v.required, req.String())
	}
	for name, prop := range gjson.GetBytes(schemaJSON, "properties").Map() {
		v.types[name] = prop.Get("type").String()
	}
	return v, nil
}

// Validate checks args and returns the normalized arguments as JSON, with
// values coerced to their declared types (numeric strings become numbers).
// Failures are kinded: missing required field, type mismatch, unknown field.
func (v *Validator) Validate(args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}

	// Unknown extra fields are rejected rather than silently ignored, so
	// client-side mistakes surface immediately.
	for _, name := range sortedKeys(args) {
		if _, declared := v.types[name]; !declared {
			return nil, faults.UnknownField(v.tool, name)
		}
	}

	for _, name := range v.required {
		if _, present := args[name]; !present {
			return nil, faults.MissingField(v.tool, name)
		}
	}

	normalized := make(map[string]any, len(args))
	for name, value := range args {
		coerced, err := v.conform(name, value)
		if err != nil {
			return nil, err
		}
		normalized[name] = coerced
	}

	// Backstop: the compiled schema catches anything the structural pass
	// does not model.
	if err := v.schema.Validate(toJSONValue(normalized)); err != nil {
		return nil, &faults.Error{Kind: faults.KindTypeMismatch, Tool: v.tool, Message: err.Error()}
	}

	return json.Marshal(normalized)
}

// conform checks value against the declared type for field name, coercing
// numeric strings where the schema says number or integer.
func (v *Validator) conform(name string, value any) (any, error) {
	declared := v.types[name]
	switch declared {
	case "", "object":
		if declared == "object" {
			if _, ok := value.(map[string]any); !ok {
				return nil, faults.TypeMismatch(v.tool, name, "object")
			}
		}
		return value, nil
	case "string":
		if _, ok := value.(string); !ok {
			return nil, faults.TypeMismatch(v.tool, name, "string")
		}
		return value, nil
	case "boolean":
		if _, ok := value.(bool); !ok {
			return nil, faults.TypeMismatch(v.tool, name, "boolean")
		}
		return value, nil
	case "array":
		if _, ok := value.([]any); !ok {
			return nil, faults.TypeMismatch(v.tool, name, "array")
		}
		return value, nil
	case "number":
		n, ok := asNumber(value)
		if !ok {
			return nil, faults.TypeMismatch(v.tool, name, "number")
		}
		return n, nil
	case "integer":
		n, ok := asNumber(value)
		if !ok || n != math.Trunc(n) {
			return nil, faults.TypeMismatch(v.tool, name, "integer")
		}
		return int64(n), nil
	}
	return value, nil
}

// asNumber accepts JSON numbers and numeric strings.
func asNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// toJSONValue round-trips v through encoding/json so the schema library sees
// canonical JSON value types.
func toJSONValue(v map[string]any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
