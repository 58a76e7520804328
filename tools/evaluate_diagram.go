package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/figgen/mcp-server/internal/backend"
	"github.com/figgen/mcp-server/internal/config"
)

// EvaluateDiagramInput is the argument schema for evaluate_diagram.
type EvaluateDiagramInput struct {
	CandidatePath string `json:"candidate_path" jsonschema_description:"File path to the model-generated image."`
	ReferencePath string `json:"reference_path" jsonschema_description:"File path to the human-drawn reference image."`
	Context       string `json:"context" jsonschema_description:"Original methodology text used to generate the diagram."`
	Caption       string `json:"caption" jsonschema_description:"Figure caption describing what the diagram communicates."`
}

var EvaluateDiagramInputSchema = GenerateSchema[EvaluateDiagramInput]()

// EvaluateDiagramDefinition binds the evaluate_diagram tool to the backend judge.
func EvaluateDiagramDefinition(b backend.Backend, _ *config.Config) ToolDefinition {
	return ToolDefinition{
		Name:              "evaluate_diagram",
		Description:       "Evaluate a generated diagram against a human reference on four dimensions: faithfulness, conciseness, readability, and aesthetics.",
		InputSchema:       EvaluateDiagramInputSchema,
		OutputDescription: "Per-dimension winners with reasoning, the overall winner, and an overall score, as formatted text plus a JSON block.",
		Handler: func(ctx context.Context, input json.RawMessage) (*Result, error) {
			var in EvaluateDiagramInput
			if err := json.Unmarshal(input, &in); err != nil {
				return nil, err
			}
			scores, err := b.EvaluateDiagram(ctx, in.CandidatePath, in.ReferencePath, in.Context, in.Caption)
			if err != nil {
				return nil, err
			}
			structured, err := json.Marshal(scores)
			if err != nil {
				return nil, err
			}
			return &Result{Content: []Content{
				TextContent(formatScores(scores)),
				TextContent(string(structured)),
			}}, nil
		},
	}
}

func formatScores(s *backend.EvaluationScores) string {
	lines := []string{
		"Evaluation Results",
		strings.Repeat("=", 40),
		fmt.Sprintf("Faithfulness:  %s — %s", s.Faithfulness.Winner, s.Faithfulness.Reasoning),
		fmt.Sprintf("Conciseness:   %s — %s", s.Conciseness.Winner, s.Conciseness.Reasoning),
		fmt.Sprintf("Readability:   %s — %s", s.Readability.Winner, s.Readability.Reasoning),
		fmt.Sprintf("Aesthetics:    %s — %s", s.Aesthetics.Winner, s.Aesthetics.Reasoning),
		strings.Repeat("-", 40),
		fmt.Sprintf("Overall Winner: %s (score: %g)", s.OverallWinner, s.OverallScore),
	}
	return strings.Join(lines, "\n")
}
