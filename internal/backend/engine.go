package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/imageio"
	"github.com/figgen/mcp-server/internal/logger"
)

const defaultIterations = 3

const plannerSystem = `You are an expert scientific illustrator. You turn methodology
text into precise visual descriptions that an image model can render as a clean,
publication-quality figure. Describe layout, components, arrows, and labels concretely.
Plain English, no markdown.`

const criticSystem = `You review a rendered scientific figure against its intended
description. List the most important corrections (layout, missing components, unreadable
labels), then restate the full revised visual description incorporating them.
Plain English, no markdown.`

// Engine implements Backend on top of a VLM planner/critic and an image model.
type Engine struct {
	vlm VLM
	gen *imageGen
	cfg *config.Config
	log *logger.Entry
}

var _ Backend = (*Engine)(nil)

// New constructs the engine from the resolved configuration.
func New(cfg *config.Config) (*Engine, error) {
	vlm, err := NewVLM(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		vlm: vlm,
		gen: newImageGen(cfg),
		cfg: cfg,
		log: logger.Named("backend"),
	}, nil
}

// GenerateDiagram plans a visual description from the methodology text, renders
// it, and runs up to iterations-1 critique/re-render rounds.
func (e *Engine) GenerateDiagram(ctx context.Context, sourceContext, caption string, iterations int) (*ImageResult, error) {
	prompt := fmt.Sprintf(
		"Methodology text:\n%s\n\nFigure caption: %s\n\nDescribe the diagram to render.",
		sourceContext, caption)
	return e.generate(ctx, "diagram", prompt, iterations)
}

// GeneratePlot does the same for a statistical plot driven by a JSON payload.
func (e *Engine) GeneratePlot(ctx context.Context, dataJSON, intent string, iterations int) (*ImageResult, error) {
	prompt := fmt.Sprintf(
		"Data for plotting (JSON):\n%s\n\nDesired plot: %s\n\nDescribe the plot to render, including axes, scales, and labels derived from the data.",
		dataJSON, intent)
	return e.generate(ctx, "plot", prompt, iterations)
}

func (e *Engine) generate(ctx context.Context, kind, planPrompt string, iterations int) (*ImageResult, error) {
	if iterations <= 0 {
		iterations = defaultIterations
	}

	description, err := e.vlm.Generate(ctx, VLMRequest{System: plannerSystem, Prompt: planPrompt})
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", kind, err)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("plan %s: planner returned an empty description", kind)
	}

	raw, err := e.gen.Render(ctx, renderPrompt(description))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}

	for i := 1; i < iterations; i++ {
		start := time.Now()
		revised, err := e.vlm.Generate(ctx, VLMRequest{
			System: criticSystem,
			Prompt: fmt.Sprintf("Intended description:\n%s\n\nReview the attached render and restate the revised description.", description),
			Images: []ImageInput{{MIMEType: "image/png", Data: raw}},
		})
		if err != nil {
			return nil, fmt.Errorf("critique %s (round %d): %w", kind, i, err)
		}
		revised = strings.TrimSpace(revised)
		if revised == "" || revised == description {
			break
		}
		description = revised

		raw, err = e.gen.Render(ctx, renderPrompt(description))
		if err != nil {
			return nil, fmt.Errorf("re-render %s (round %d): %w", kind, i, err)
		}
		e.log.WithFields(logger.Fields{
			"kind":        kind,
			"round":       i,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("refinement round complete")
	}

	runID := imageio.NewRunID()
	path := filepath.Join(e.cfg.OutputDir, "runs", runID, kind+".png")
	if err := imageio.WriteFile(path, raw); err != nil {
		return nil, fmt.Errorf("save %s: %w", kind, err)
	}
	e.log.WithFields(logger.Fields{"kind": kind, "path": path, "bytes": len(raw)}).Info("image generated")

	return &ImageResult{Path: path, MIMEType: "image/png", Data: raw, RunID: runID}, nil
}

func renderPrompt(description string) string {
	return "Publication-quality scientific figure, clean white background, vector style, " +
		"crisp readable labels. " + description
}
