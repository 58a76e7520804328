package telemetry_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/figgen/mcp-server/internal/telemetry"
)

func TestEmit_HappyPath(t *testing.T) {
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FIGGEN_OBSERVE_JSON", "1")

	telemetry.Emit("invocation", map[string]any{
		"tool_name":   "generate_diagram",
		"duration_ms": int64(42),
		"outcome":     "success",
	})

	b, err := os.ReadFile(filepath.Join(".figgen", "events.jsonl"))
	if err != nil {
		t.Fatalf("expected events file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 event line, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("event is not valid JSON: %v", err)
	}
	if m["event"] != "invocation" {
		t.Errorf("event name: got %v want invocation", m["event"])
	}
	if m["tool_name"] != "generate_diagram" {
		t.Errorf("tool_name: got %v", m["tool_name"])
	}
	if _, ok := m["time"]; !ok {
		t.Error("missing time field")
	}
}

func TestEmit_DisabledWritesNothing(t *testing.T) {
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FIGGEN_OBSERVE_JSON", "0")

	telemetry.Emit("invocation", map[string]any{"tool_name": "generate_plot"})

	if _, err := os.Stat(filepath.Join(".figgen", "events.jsonl")); !os.IsNotExist(err) {
		t.Fatalf("expected no events file, stat err=%v", err)
	}
}

func TestEmit_DoesNotMutateCallerMap(t *testing.T) {
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(origDir)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FIGGEN_OBSERVE_JSON", "1")

	fields := map[string]any{"tool_name": "evaluate_diagram"}
	telemetry.Emit("invocation", fields)
	if len(fields) != 1 {
		t.Fatalf("caller map mutated: %v", fields)
	}
}
