// Package dispatch routes validated invocations to tool handlers and
// normalizes outcomes. Per-invocation failures never escape this layer as
// anything other than a kinded error; the server process never crashes on
// a bad invocation or a failing backend.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/faults"
	"github.com/figgen/mcp-server/internal/logger"
	"github.com/figgen/mcp-server/internal/telemetry"
	"github.com/figgen/mcp-server/internal/validate"
	"github.com/figgen/mcp-server/tools"
)

// Invocation is one request to execute a tool. Created per incoming request
// and discarded once the response is produced.
type Invocation struct {
	Tool      string
	Arguments map[string]any
}

// Dispatcher owns the registry, the compiled validators, and the timeout
// policy. All fields are read-only after New, so one dispatcher serves
// concurrent invocations without locking.
type Dispatcher struct {
	registry   *tools.Registry
	validators map[string]*validate.Validator
	timeout    time.Duration
	log        *logger.Entry
}

// New compiles a validator per registered tool and returns the dispatcher.
func New(registry *tools.Registry, cfg *config.Config) (*Dispatcher, error) {
	validators := make(map[string]*validate.Validator)
	for _, def := range registry.List() {
		v, err := validate.Compile(def.Name, def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("compile validator for %s: %w", def.Name, err)
		}
		validators[def.Name] = v
	}
	return &Dispatcher{
		registry:   registry,
		validators: validators,
		timeout:    cfg.BackendTimeout,
		log:        logger.Named("dispatch"),
	}, nil
}

// Dispatch resolves, validates, and executes one invocation.
//
// Exactly one backend call happens per successful validation; the call runs
// under a finite timeout so a hung backend surfaces as a backend error
// instead of stalling the session.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (res *tools.Result, err error) {
	start := time.Now()
	invID := "inv-" + uuid.NewString()[:8]
	ctx = telemetry.WithInvocationID(ctx, invID)

	defer func() {
		if r := recover(); r != nil {
			err = faults.Backend(inv.Tool, fmt.Errorf("handler panic: %v", r))
		}
		d.emit(inv, invID, start, res, err)
	}()

	def, ok := d.registry.Lookup(inv.Tool)
	if !ok {
		return nil, faults.UnknownTool(inv.Tool)
	}

	normalized, err := d.validators[inv.Tool].Validate(inv.Arguments)
	if err != nil {
		// Validation error kinds propagate unchanged.
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err = def.Handler(callCtx, normalized)
	if err != nil {
		if _, kinded := faults.As(err); kinded {
			return nil, err
		}
		return nil, faults.Backend(inv.Tool, err)
	}
	return res, nil
}

func (d *Dispatcher) emit(inv Invocation, invID string, start time.Time, res *tools.Result, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(faults.KindOf(err))
	}
	outSize := 0
	if res != nil {
		if b, merr := json.Marshal(res); merr == nil {
			outSize = len(b)
		}
	}
	telemetry.Emit("invocation", map[string]any{
		"invocation_id": invID,
		"tool_name":     inv.Tool,
		"duration_ms":   time.Since(start).Milliseconds(),
		"outcome":       outcome,
		"output_size":   outSize,
	})
	entry := d.log.WithFields(logger.Fields{
		"invocation_id": invID,
		"tool":          inv.Tool,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithField("outcome", outcome).Warn("invocation failed")
		return
	}
	entry.Info("invocation complete")
}
