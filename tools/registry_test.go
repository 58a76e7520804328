package tools_test

import (
	"testing"
	"time"

	"github.com/figgen/mcp-server/internal/backend/backendtest"
	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/tools"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GoogleAPIKey:   "test-key",
		VLMProvider:    config.ProviderGemini,
		BackendTimeout: time.Second,
		MaxImageBytes:  config.DefaultMaxImageBytes,
		OutputDir:      t.TempDir(),
	}
}

func TestDefinitions_ToolCount(t *testing.T) {
	cfg := testConfig(t)
	defs := tools.Definitions(&backendtest.Fake{OutDir: cfg.OutputDir}, cfg)
	wantCount := 3 // generate_diagram, generate_plot, evaluate_diagram
	if len(defs) != wantCount {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), wantCount)
	}
}

func TestDefinitions_ToolNames(t *testing.T) {
	cfg := testConfig(t)
	defs := tools.Definitions(&backendtest.Fake{OutDir: cfg.OutputDir}, cfg)
	want := map[string]struct{}{
		"generate_diagram": {},
		"generate_plot":    {},
		"evaluate_diagram": {},
	}

	// Unexpected names detected
	for _, d := range defs {
		if _, ok := want[d.Name]; !ok {
			t.Fatalf("unexpected tool in registry: %q", d.Name)
		}
	}

	// Missing expected names
	got := map[string]struct{}{}
	for _, d := range defs {
		got[d.Name] = struct{}{}
	}
	for name := range want {
		if _, ok := got[name]; !ok {
			t.Errorf("missing expected tool: %q", name)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

func TestRegistry_LookupAllRegisteredNames(t *testing.T) {
	cfg := testConfig(t)
	reg, err := tools.NewRegistry(tools.Definitions(&backendtest.Fake{OutDir: cfg.OutputDir}, cfg)...)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"generate_diagram", "generate_plot", "evaluate_diagram"} {
		def, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("lookup %q: not found", name)
		}
		if def.Handler == nil {
			t.Fatalf("lookup %q: nil handler", name)
		}
		if len(def.InputSchema) == 0 {
			t.Fatalf("lookup %q: empty input schema", name)
		}
	}

	if _, ok := reg.Lookup("generate_video"); ok {
		t.Fatal("lookup of unregistered tool should fail")
	}
}

func TestRegistry_DuplicateNameIsFatal(t *testing.T) {
	cfg := testConfig(t)
	fake := &backendtest.Fake{OutDir: cfg.OutputDir}
	def := tools.GenerateDiagramDefinition(fake, cfg)

	if _, err := tools.NewRegistry(def, def); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
