package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serves the loaded trees as an MCP Server, so AI agents can list, describe and
evaluate them as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		lib, cfg, logger, closeFn, err := openLibrary(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		transport := cfg.MCPTransport
		if cmd.Flags().Changed("transport") {
			transport, _ = cmd.Flags().GetString("transport")
		}
		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		if events, err := lib.Watch(ctx); err == nil {
			go func() {
				for evt := range events {
					logger.Debug("tree reloaded", "tree", evt.ID, "err", evt.Err)
				}
			}()
		}

		srv := mcp.NewServer(lib, logger)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting arbor MCP server (stdio)", "trees", len(lib.List()))
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting arbor MCP server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse' (default $ARBOR_MCP_TRANSPORT)")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
