package faults_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/figgen/mcp-server/internal/faults"
)

func TestError_CompactJSONBody(t *testing.T) {
	err := faults.MissingField("generate_diagram", "caption")

	var body map[string]string
	if jerr := json.Unmarshal([]byte(err.Error()), &body); jerr != nil {
		t.Fatalf("error body is not JSON: %v", jerr)
	}
	if body["kind"] != "MissingFieldError" {
		t.Errorf("kind: got %q", body["kind"])
	}
	if body["field"] != "caption" {
		t.Errorf("field: got %q", body["field"])
	}
	if body["tool"] != "generate_diagram" {
		t.Errorf("tool: got %q", body["tool"])
	}
}

func TestKindOf_Classification(t *testing.T) {
	cases := []struct {
		err  error
		want faults.Kind
	}{
		{faults.UnknownTool("x"), faults.KindUnknownTool},
		{faults.MissingField("t", "f"), faults.KindMissingField},
		{faults.TypeMismatch("t", "f", "string"), faults.KindTypeMismatch},
		{faults.UnknownField("t", "f"), faults.KindUnknownField},
		{faults.Backend("t", errors.New("boom")), faults.KindBackend},
		{faults.Configuration("missing key"), faults.KindConfiguration},
		{errors.New("plain"), faults.KindBackend},
		{fmt.Errorf("wrapped: %w", faults.UnknownTool("y")), faults.KindUnknownTool},
	}
	for _, tc := range cases {
		if got := faults.KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v): got %s want %s", tc.err, got, tc.want)
		}
	}
}

func TestBackend_PreservesUpstreamMessage(t *testing.T) {
	upstream := errors.New("503 from generation endpoint")
	err := faults.Backend("generate_plot", upstream)
	if err.Message != upstream.Error() {
		t.Errorf("message altered: %q", err.Message)
	}
	if err.Tool != "generate_plot" {
		t.Errorf("tool: %q", err.Tool)
	}
}
