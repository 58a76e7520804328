package tools

import (
	"context"
	"encoding/json"

	"github.com/figgen/mcp-server/internal/backend"
	"github.com/figgen/mcp-server/internal/config"
)

// GeneratePlotInput is the argument schema for generate_plot.
type GeneratePlotInput struct {
	Data       map[string]any `json:"data" jsonschema_description:"Structured data to plot, e.g. {\"models\": [\"A\", \"B\"], \"accuracy\": [0.9, 0.95]}."`
	Intent     string         `json:"intent" jsonschema_description:"Description of the desired plot, e.g. \"Bar chart comparing model accuracy\"."`
	Iterations int            `json:"iterations,omitempty" jsonschema_description:"Number of refinement iterations (default 3)."`
}

var GeneratePlotInputSchema = GenerateSchema[GeneratePlotInput]()

// GeneratePlotDefinition binds the generate_plot tool to the backend.
func GeneratePlotDefinition(b backend.Backend, cfg *config.Config) ToolDefinition {
	return ToolDefinition{
		Name:              "generate_plot",
		Description:       "Generate a publication-quality statistical plot from structured data. Provide the data payload and a description of the desired chart.",
		InputSchema:       GeneratePlotInputSchema,
		OutputDescription: "The generated plot as an image plus the saved file path.",
		Handler: func(ctx context.Context, input json.RawMessage) (*Result, error) {
			var in GeneratePlotInput
			if err := json.Unmarshal(input, &in); err != nil {
				return nil, err
			}
			dataJSON, err := json.Marshal(in.Data)
			if err != nil {
				return nil, err
			}
			res, err := b.GeneratePlot(ctx, string(dataJSON), in.Intent, in.Iterations)
			if err != nil {
				return nil, err
			}
			return imageResult(res, cfg.MaxImageBytes)
		},
	}
}
