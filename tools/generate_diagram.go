package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/figgen/mcp-server/internal/backend"
	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/imageio"
)

// GenerateDiagramInput is the argument schema for generate_diagram.
type GenerateDiagramInput struct {
	SourceContext string `json:"source_context" jsonschema_description:"Methodology section text or relevant paper excerpt."`
	Caption       string `json:"caption" jsonschema_description:"Figure caption describing what the diagram should communicate."`
	Iterations    int    `json:"iterations,omitempty" jsonschema_description:"Number of refinement iterations (default 3)."`
}

var GenerateDiagramInputSchema = GenerateSchema[GenerateDiagramInput]()

// GenerateDiagramDefinition binds the generate_diagram tool to the backend.
func GenerateDiagramDefinition(b backend.Backend, cfg *config.Config) ToolDefinition {
	return ToolDefinition{
		Name:              "generate_diagram",
		Description:       "Generate a publication-quality methodology diagram from text. Provide the methodology section (or relevant excerpt) and the intended figure caption.",
		InputSchema:       GenerateDiagramInputSchema,
		OutputDescription: "The generated diagram as an image plus the saved file path.",
		Handler: func(ctx context.Context, input json.RawMessage) (*Result, error) {
			var in GenerateDiagramInput
			if err := json.Unmarshal(input, &in); err != nil {
				return nil, err
			}
			res, err := b.GenerateDiagram(ctx, in.SourceContext, in.Caption, in.Iterations)
			if err != nil {
				return nil, err
			}
			return imageResult(res, cfg.MaxImageBytes)
		},
	}
}

// imageResult converts a backend image into response content, compressing
// the transported copy when it exceeds the payload cap. The full-resolution
// file stays on disk and is referenced by path.
func imageResult(res *backend.ImageResult, maxBytes int) (*Result, error) {
	effectivePath, format, err := imageio.FitToLimit(res.Path, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("fit image under payload limit: %w", err)
	}
	data := res.Data
	mimeType := res.MIMEType
	if effectivePath != res.Path {
		data, err = imageio.ReadFile(effectivePath)
		if err != nil {
			return nil, err
		}
		mimeType = "image/" + format
	}
	return &Result{Content: []Content{
		ImageContent(imageio.EncodeBase64(data), mimeType),
		TextContent(fmt.Sprintf("Saved to %s (run %s)", res.Path, res.RunID)),
	}}, nil
}
