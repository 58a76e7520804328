package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figgen/mcp-server/internal/backend/backendtest"
	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/dispatch"
	"github.com/figgen/mcp-server/internal/faults"
	"github.com/figgen/mcp-server/tools"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GoogleAPIKey:   "test-key",
		VLMProvider:    config.ProviderGemini,
		BackendTimeout: 5 * time.Second,
		MaxImageBytes:  config.DefaultMaxImageBytes,
		OutputDir:      t.TempDir(),
	}
}

func newDispatcher(t *testing.T, fake *backendtest.Fake, cfg *config.Config) *dispatch.Dispatcher {
	t.Helper()
	registry, err := tools.NewRegistry(tools.Definitions(fake, cfg)...)
	require.NoError(t, err)
	d, err := dispatch.New(registry, cfg)
	require.NoError(t, err)
	return d
}

func TestDispatch_GenerateDiagramSuccess(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	res, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool: "generate_diagram",
		Arguments: map[string]any{
			"source_context": "Two-phase pipeline with retrieval and reranking.",
			"caption":        "Overview",
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 2)
	assert.Equal(t, "image", res.Content[0].Type)
	assert.NotEmpty(t, res.Content[0].Data)
	assert.Equal(t, "image/png", res.Content[0].MIMEType)
	assert.Contains(t, res.Content[1].Text, "Saved to")

	require.Equal(t, 1, fake.CallCount())
	call := fake.Calls()[0]
	assert.Equal(t, "GenerateDiagram", call.Method)
	assert.Equal(t, "Overview", call.Args[1])
}

func TestDispatch_GeneratePlotSuccess(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	res, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool: "generate_plot",
		Arguments: map[string]any{
			"data":   map[string]any{"models": []any{"A", "B"}, "accuracy": []any{0.9, 0.95}},
			"intent": "bar chart",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "image", res.Content[0].Type)

	call := fake.Calls()[0]
	assert.Equal(t, "GeneratePlot", call.Method)
	// The structured payload reaches the backend as JSON text.
	assert.Contains(t, call.Args[0], "accuracy")
	assert.Equal(t, "bar chart", call.Args[1])
}

func TestDispatch_EvaluateDiagramSuccess(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	res, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool: "evaluate_diagram",
		Arguments: map[string]any{
			"candidate_path": "./out.png",
			"reference_path": "./ref.png",
			"context":        "methodology text",
			"caption":        "Figure 1",
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 2)

	for _, dim := range []string{"Faithfulness", "Conciseness", "Readability", "Aesthetics"} {
		assert.Contains(t, res.Content[0].Text, dim)
	}

	var scores map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content[1].Text), &scores))
	for _, dim := range []string{"faithfulness", "conciseness", "readability", "aesthetics"} {
		assert.Contains(t, scores, dim)
	}
}

func TestDispatch_UnknownToolNoBackendCall(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	_, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool:      "generate_video",
		Arguments: map[string]any{},
	})
	require.Error(t, err)

	fe, ok := faults.As(err)
	require.True(t, ok)
	assert.Equal(t, faults.KindUnknownTool, fe.Kind)
	assert.Equal(t, "generate_video", fe.Tool)
	assert.Equal(t, 0, fake.CallCount())
}

func TestDispatch_MissingFieldNoBackendCall(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	_, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool:      "generate_diagram",
		Arguments: map[string]any{"caption": "Overview"},
	})
	require.Error(t, err)

	fe, ok := faults.As(err)
	require.True(t, ok)
	assert.Equal(t, faults.KindMissingField, fe.Kind)
	assert.Equal(t, "source_context", fe.Field)
	assert.Equal(t, 0, fake.CallCount())
}

func TestDispatch_BackendFailureCarriesToolName(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir, Err: errors.New("upstream rejected the request")}
	d := newDispatcher(t, fake, cfg)

	_, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool: "generate_diagram",
		Arguments: map[string]any{
			"source_context": "text",
			"caption":        "Overview",
		},
	})
	require.Error(t, err)

	fe, ok := faults.As(err)
	require.True(t, ok)
	assert.Equal(t, faults.KindBackend, fe.Kind)
	assert.Equal(t, "generate_diagram", fe.Tool)
	// Upstream message is preserved verbatim.
	assert.Equal(t, "upstream rejected the request", fe.Message)
}

func TestDispatch_TimeoutSurfacesAsBackendError(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackendTimeout = 20 * time.Millisecond
	fake := &backendtest.Fake{OutDir: cfg.OutputDir, Delay: 5 * time.Second}
	d := newDispatcher(t, fake, cfg)

	_, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool: "generate_diagram",
		Arguments: map[string]any{
			"source_context": "text",
			"caption":        "Overview",
		},
	})
	require.Error(t, err)
	assert.Equal(t, faults.KindBackend, faults.KindOf(err))
}

func TestDispatch_CoercedIterationsReachBackend(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	_, err := d.Dispatch(context.Background(), dispatch.Invocation{
		Tool: "generate_diagram",
		Arguments: map[string]any{
			"source_context": "text",
			"caption":        "Overview",
			"iterations":     "5",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, fake.Calls()[0].Iterations)
}

func TestDispatch_IdempotentForDeterministicBackend(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	d := newDispatcher(t, fake, cfg)

	inv := dispatch.Invocation{
		Tool: "generate_diagram",
		Arguments: map[string]any{
			"source_context": "text",
			"caption":        "Overview",
		},
	}
	first, err := d.Dispatch(context.Background(), inv)
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), inv)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}
