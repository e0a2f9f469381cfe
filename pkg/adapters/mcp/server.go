package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TreesURI is the resource listing every loaded tree.
const TreesURI = "arbor://trees"

// EvaluateResponse aligns with the OpenAPI schema and provides a unified structure across adapters.
type EvaluateResponse struct {
	Tree   string      `json:"tree" jsonschema_description:"The evaluated tree"`
	Result any         `json:"result" jsonschema_description:"The result object built from the selected leaf"`
	Trace  []tree.Step `json:"trace,omitempty" jsonschema_description:"The nodes visited, when requested"`
}

// ListResponse is the output of list_trees.
type ListResponse struct {
	Trees []string `json:"trees" jsonschema_description:"Loaded tree identifiers"`
}

type describeArgs struct {
	ID string `json:"id"`
}

type evaluateArgs struct {
	ID    string         `json:"id"`
	Facts map[string]any `json:"facts"`
	Trace bool           `json:"trace"`
}

// Server exposes a TreeSource as an MCP Server.
type Server struct {
	source    ports.TreeSource
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(source ports.TreeSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		source:    source,
		logger:    logger,
		mcpServer: server.NewMCPServer("arbor-mcp", arbor.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_trees",
		mcp.WithDescription("List the identifiers of every loaded decision tree."),
		mcp.WithOutputSchema[ListResponse](),
	), mcp.NewStructuredToolHandler(s.handleList))

	s.mcpServer.AddTool(mcp.NewTool("describe_tree",
		mcp.WithDescription("Describe the inputs a tree branches on and the result it produces."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tree identifier")),
		mcp.WithOutputSchema[dto.TreeSummary](),
	), mcp.NewStructuredToolHandler(s.handleDescribe))

	s.mcpServer.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a tree against a set of facts and return the selected result."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Tree identifier")),
		mcp.WithObject("facts", mcp.Required(), mcp.Description("Facts keyed by input name; values are booleans, integers or strings")),
		mcp.WithBoolean("trace", mcp.Description("Include the visited nodes in the response")),
		mcp.WithOutputSchema[EvaluateResponse](),
	), mcp.NewStructuredToolHandler(s.handleEvaluate))
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (ListResponse, error) {
	return ListResponse{Trees: s.source.List()}, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args describeArgs) (dto.TreeSummary, error) {
	ev, err := s.source.Evaluator(args.ID)
	if err != nil {
		return dto.TreeSummary{}, err
	}
	return dto.Summarize(args.ID, ev), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args evaluateArgs) (EvaluateResponse, error) {
	ev, err := s.source.Evaluator(args.ID)
	if err != nil {
		return EvaluateResponse{}, err
	}

	facts := domain.MapFacts(args.Facts)
	resp := EvaluateResponse{Tree: args.ID}
	if args.Trace {
		tr, err := ev.Trace(ctx, facts)
		if err != nil {
			return EvaluateResponse{}, s.evaluationError(args.ID, err)
		}
		resp.Result, resp.Trace = tr.Result, tr.Steps
		return resp, nil
	}

	out, err := ev.Evaluate(ctx, facts)
	if err != nil {
		return EvaluateResponse{}, s.evaluationError(args.ID, err)
	}
	resp.Result = out
	return resp, nil
}

func (s *Server) evaluationError(id string, err error) error {
	if errors.Is(err, domain.ErrResultConstruction) {
		s.logger.Error("MCP evaluate failed", "tree", id, "err", err)
	}
	return fmt.Errorf("evaluate %s: %w", id, err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TreesURI, "Loaded Decision Trees",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids := s.source.List()
		summaries := make([]dto.TreeSummary, 0, len(ids))
		for _, id := range ids {
			ev, err := s.source.Evaluator(id)
			if err != nil {
				// Removed between List and Evaluator.
				continue
			}
			summaries = append(summaries, dto.Summarize(id, ev))
		}
		jsonBytes, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to encode trees: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
