// Package backendtest provides a deterministic in-memory Backend for tests.
package backendtest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"time"

	"github.com/figgen/mcp-server/internal/backend"
	"github.com/figgen/mcp-server/internal/imageio"
)

// Call records one backend invocation.
type Call struct {
	Method     string
	Args       []string
	Iterations int
}

// Fake implements backend.Backend with canned, deterministic results.
type Fake struct {
	// OutDir is where generated image files are written. Required for the
	// generate methods since handlers re-read the file from disk.
	OutDir string
	// Err, when set, is returned by every method.
	Err error
	// Delay simulates a slow backend; calls honor context cancellation.
	Delay time.Duration

	mu    sync.Mutex
	calls []Call
}

var _ backend.Backend = (*Fake)(nil)

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many backend calls were made.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *Fake) wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fake) GenerateDiagram(ctx context.Context, sourceContext, caption string, iterations int) (*backend.ImageResult, error) {
	f.record(Call{Method: "GenerateDiagram", Args: []string{sourceContext, caption}, Iterations: iterations})
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.imageResult("diagram.png")
}

func (f *Fake) GeneratePlot(ctx context.Context, dataJSON, intent string, iterations int) (*backend.ImageResult, error) {
	f.record(Call{Method: "GeneratePlot", Args: []string{dataJSON, intent}, Iterations: iterations})
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.imageResult("plot.png")
}

func (f *Fake) EvaluateDiagram(ctx context.Context, generatedPath, referencePath, sourceContext, caption string) (*backend.EvaluationScores, error) {
	f.record(Call{Method: "EvaluateDiagram", Args: []string{generatedPath, referencePath, sourceContext, caption}})
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return &backend.EvaluationScores{
		Faithfulness:  backend.DimensionScore{Winner: "A", Reasoning: "matches the described pipeline"},
		Conciseness:   backend.DimensionScore{Winner: "B", Reasoning: "reference is tighter"},
		Readability:   backend.DimensionScore{Winner: "A", Reasoning: "clearer labels"},
		Aesthetics:    backend.DimensionScore{Winner: "tie", Reasoning: "comparable"},
		OverallWinner: "A",
		OverallScore:  0.625,
	}, nil
}

func (f *Fake) imageResult(name string) (*backend.ImageResult, error) {
	data := TinyPNG()
	path := filepath.Join(f.OutDir, name)
	if err := imageio.WriteFile(path, data); err != nil {
		return nil, err
	}
	return &backend.ImageResult{
		Path:     path,
		MIMEType: "image/png",
		Data:     data,
		RunID:    "run_20260101_000000_aaaaaa",
	}, nil
}

// TinyPNG returns a valid 2x2 PNG.
func TinyPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 1, color.RGBA{0, 0, 255, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
