// Command figgen-mcp starts the figgen MCP server on stdio and serves tool
// invocations until the transport session ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/figgen/mcp-server/internal/backend"
	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/dispatch"
	"github.com/figgen/mcp-server/internal/logger"
	"github.com/figgen/mcp-server/internal/mcp"
	"github.com/figgen/mcp-server/tools"
)

const (
	serverName    = "figgen"
	serverVersion = "0.3.0"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.figgen/config.toml)")
	verbose := flag.Bool("verbose", false, "enable debug logging on stderr")
	flag.Parse()

	logger.SetVerbose(*verbose)
	log := logger.Named("main")

	// Configuration resolves exactly once, before the transport opens.
	// A missing credential is fatal: no invocation is ever served.
	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "figgen-mcp: %v\n", err)
		os.Exit(1)
	}

	engine, err := backend.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "figgen-mcp: %v\n", err)
		os.Exit(1)
	}

	registry, err := tools.NewRegistry(tools.Definitions(engine, cfg)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "figgen-mcp: build registry: %v\n", err)
		os.Exit(1)
	}

	dispatcher, err := dispatch.New(registry, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "figgen-mcp: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logger.Fields{
		"tools":    len(registry.List()),
		"provider": cfg.VLMProvider,
	}).Info("serving MCP on stdio")

	srv := mcp.NewServer(serverName, serverVersion, registry, dispatcher, os.Stdout)
	if err := srv.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "figgen-mcp: %v\n", err)
		os.Exit(1)
	}
}
