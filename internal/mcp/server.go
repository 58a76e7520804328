package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/figgen/mcp-server/internal/dispatch"
	"github.com/figgen/mcp-server/internal/logger"
	"github.com/figgen/mcp-server/tools"
)

// maxLineBytes bounds a single request line. Methodology excerpts can be
// long, but nothing legitimate approaches this.
const maxLineBytes = 32 * 1024 * 1024

// Server serves tool invocations over an NDJSON stdio session.
type Server struct {
	name       string
	version    string
	registry   *tools.Registry
	dispatcher *dispatch.Dispatcher
	log        *logger.Entry

	writeMu sync.Mutex
	out     io.Writer
}

// NewServer wires the transport to the dispatcher.
func NewServer(name, version string, registry *tools.Registry, d *dispatch.Dispatcher, out io.Writer) *Server {
	return &Server{
		name:       name,
		version:    version,
		registry:   registry,
		dispatcher: d,
		log:        logger.Named("mcp"),
		out:        out,
	}
}

// Run reads requests from in until EOF or ctx cancellation. Each request is
// handled in its own goroutine so a slow backend call never blocks another
// invocation; the registry and configuration are read-only, so no further
// synchronization is needed beyond the response writer.
func (s *Server) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var wg sync.WaitGroup
	defer wg.Wait()

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(&response{JSONRPC: "2.0", ID: json.RawMessage("null"),
				Error: &rpcError{Code: codeParseError, Message: fmt.Sprintf("invalid JSON: %v", err)}})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, &req)
		}()
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("read transport: %w", err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, req *request) {
	if req.isNotification() {
		// notifications/initialized and friends need no reply.
		s.log.WithField("method", req.Method).Debug("notification received")
		return
	}

	resp := &response{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "initialize":
		resp.Result = initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		}
	case "ping":
		resp.Result = struct{}{}
	case "tools/list":
		resp.Result = s.listTools()
	case "tools/call":
		resp.Result, resp.Error = s.callTool(ctx, req.Params)
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)}
	}
	s.write(resp)
}

func (s *Server) listTools() toolsListResult {
	defs := s.registry.List()
	out := toolsListResult{Tools: make([]toolDescriptor, 0, len(defs))}
	for _, def := range defs {
		out.Tools = append(out.Tools, toolDescriptor{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	return out
}

// callTool runs one invocation. Per-invocation failures come back as an
// isError result carrying the kinded failure body; only malformed params are
// protocol-level errors.
func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *rpcError) {
	var p toolsCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid tools/call params: %v", err)}
	}
	if p.Name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "tool name is required"}
	}

	res, err := s.dispatcher.Dispatch(ctx, dispatch.Invocation{Tool: p.Name, Arguments: p.Arguments})
	if err != nil {
		return toolsCallResult{
			Content: []tools.Content{tools.TextContent(err.Error())},
			IsError: true,
		}, nil
	}
	return toolsCallResult{Content: res.Content}, nil
}

func (s *Server) write(resp *response) {
	b, err := json.Marshal(resp)
	if err != nil {
		s.log.WithField("error", err).Error("marshal response")
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.out.Write(append(b, '\n')); err != nil {
		s.log.WithField("error", err).Error("write response")
	}
}
