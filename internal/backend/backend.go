// Package backend adapts the upstream generation APIs behind a narrow
// interface. The dispatcher treats it as an opaque engine: one adapter call
// per invocation, any failure wrapped as a kinded backend error by the caller.
package backend

import (
	"context"
)

// ImageResult is a generated image saved to disk.
type ImageResult struct {
	// Path is where the image was written under the output directory.
	Path string
	// MIMEType reflects the encoded bytes, e.g. "image/png".
	MIMEType string
	// Data holds the raw image bytes.
	Data []byte
	// RunID groups artifacts belonging to one invocation.
	RunID string
}

// DimensionScore is one judged dimension of a diagram comparison.
type DimensionScore struct {
	Winner    string `json:"winner"`
	Reasoning string `json:"reasoning"`
}

// EvaluationScores compares a generated diagram against a human reference
// across four dimensions with an aggregated verdict.
type EvaluationScores struct {
	Faithfulness  DimensionScore `json:"faithfulness"`
	Conciseness   DimensionScore `json:"conciseness"`
	Readability   DimensionScore `json:"readability"`
	Aesthetics    DimensionScore `json:"aesthetics"`
	OverallWinner string         `json:"overall_winner"`
	OverallScore  float64        `json:"overall_score"`
}

// Backend is the generation engine consumed by the tool handlers.
type Backend interface {
	// GenerateDiagram renders a methodology diagram from source text and a caption.
	GenerateDiagram(ctx context.Context, sourceContext, caption string, iterations int) (*ImageResult, error)
	// GeneratePlot renders a statistical plot from a JSON data payload and an intent.
	GeneratePlot(ctx context.Context, dataJSON, intent string, iterations int) (*ImageResult, error)
	// EvaluateDiagram judges a generated diagram against a human reference.
	EvaluateDiagram(ctx context.Context, generatedPath, referencePath, sourceContext, caption string) (*EvaluationScores, error)
}

// VLM is a vision-language model used for planning, critique, and judging.
type VLM interface {
	// Generate returns the model's text response for a prompt plus optional images.
	Generate(ctx context.Context, req VLMRequest) (string, error)
}

// VLMRequest carries one VLM call's inputs.
type VLMRequest struct {
	System   string
	Prompt   string
	Images   []ImageInput
	WantJSON bool
}

// ImageInput is an inline image handed to a VLM.
type ImageInput struct {
	MIMEType string
	Data     []byte
}
