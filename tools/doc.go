// Package tools defines the tool contracts exposed over MCP.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, output contract, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Figure tools: generate_diagram, generate_plot, evaluate_diagram.
//   - Registry: name -> definition lookup, built once at startup, read-only after.
package tools
