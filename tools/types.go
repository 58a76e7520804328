package tools

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with already-validated, normalized arguments.
type Handler func(ctx context.Context, input json.RawMessage) (*Result, error)

// ToolDefinition describes one tool: its name, schemas, and handler.
// Definitions are immutable after registry construction.
type ToolDefinition struct {
	Name        string
	Description string
	// InputSchema is the JSON Schema the arguments must satisfy.
	InputSchema json.RawMessage
	// OutputDescription documents the result shape for clients.
	OutputDescription string
	Handler           Handler
}

// Result is a successful tool outcome: one or more content blocks.
type Result struct {
	Content []Content `json:"content"`
}

// Content is a single MCP content block. Type is "text" or "image".
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`     // base64 image payload
	MIMEType string `json:"mimeType,omitempty"` // image media type
}

// TextContent builds a text block.
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// ImageContent builds a base64 image block.
func ImageContent(b64, mimeType string) Content {
	return Content{Type: "image", Data: b64, MIMEType: mimeType}
}
