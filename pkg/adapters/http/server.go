package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

//go:embed openapi.yaml
var rawSpec []byte

// Error codes carried in the "code" field of error bodies.
const (
	CodeNotFound   = "not_found"
	CodeBadRequest = "bad_request"
)

// Server exposes a TreeSource over HTTP.
type Server struct {
	Source  ports.TreeSource
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
	spec    *openapi3.T
	router  routers.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// New loads and validates the embedded OpenAPI document and creates a server
// for source.
func New(source ports.TreeSource, opts ...Option) (*Server, error) {
	s := &Server{
		Source:  source,
		Streams: NewStreamManager(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	router, err := legacy.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}
	s.spec = spec
	s.router = router
	return s, nil
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return spec, nil
}

// NewHandler creates a new HTTP handler for source.
func NewHandler(source ports.TreeSource, opts ...Option) (http.Handler, error) {
	s, err := New(source, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.validateRequest)
		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/trees", s.ListTrees)
		r.Get("/trees/{id}", s.DescribeTree)
		r.Post("/trees/{id}/evaluate", s.EvaluateTree)
		r.Get("/trees/{id}/graph", s.GetTreeGraph)
		r.Get("/events", s.SubscribeEvents)
	})

	return enableCORS(r)
}

// validateRequest checks requests against the embedded OpenAPI document.
// Routes the document does not describe pass through untouched.
func (s *Server) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := s.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    &openapi3filter.Options{MultiError: false},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.logger.Warn("request rejected", "path", r.URL.Path, "err", err)
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Arbor API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// EvaluateRequest is the body of POST /trees/{id}/evaluate.
type EvaluateRequest struct {
	Facts map[string]any `json:"facts"`
}

// EvaluateResponse is the result of one evaluation.
type EvaluateResponse struct {
	ID     string      `json:"id"`
	Tree   string      `json:"tree"`
	Result any         `json:"result"`
	Trace  []tree.Step `json:"trace,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "arbor-http",
		"version":     arbor.Version,
		"api_version": apiVersion,
	})
}

// ListTrees handles the GET /trees request.
func (s *Server) ListTrees(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"trees": s.Source.List()})
}

// DescribeTree handles the GET /trees/{id} request.
func (s *Server) DescribeTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, ok := s.evaluator(w, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, dto.Summarize(id, ev))
}

// GetTreeGraph handles the GET /trees/{id}/graph request.
func (s *Server) GetTreeGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, ok := s.evaluator(w, id)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(ev.Tree(), nil)))
}

// EvaluateTree handles the POST /trees/{id}/evaluate request.
func (s *Server) EvaluateTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ev, ok := s.evaluator(w, id)
	if !ok {
		return
	}

	var body EvaluateRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	withTrace := false
	if raw := r.URL.Query().Get("trace"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid trace parameter: %w", err))
			return
		}
		withTrace = v
	}

	resp := EvaluateResponse{ID: uuid.NewString(), Tree: id}
	facts := domain.MapFacts(body.Facts)
	if withTrace {
		tr, err := ev.Trace(r.Context(), facts)
		if err != nil {
			s.writeEvaluationError(w, id, err)
			return
		}
		resp.Result = tr.Result
		resp.Trace = tr.Steps
	} else {
		out, err := ev.Evaluate(r.Context(), facts)
		if err != nil {
			s.writeEvaluationError(w, id, err)
			return
		}
		resp.Result = out
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) evaluator(w http.ResponseWriter, id string) (ports.Evaluator, bool) {
	ev, err := s.Source.Evaluator(id)
	if err != nil {
		if errors.Is(err, domain.ErrTreeNotFound) {
			s.writeError(w, http.StatusNotFound, CodeNotFound, err)
			return nil, false
		}
		s.logger.Error("tree lookup failed", "tree", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, observability.OutcomeError, err)
		return nil, false
	}
	return ev, true
}

// StatusFor maps an evaluation error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	if errors.Is(err, domain.ErrTreeNotFound) {
		return http.StatusNotFound, CodeNotFound
	}
	code := observability.Outcome(err)
	switch code {
	case observability.OutcomeMissingFact, observability.OutcomeTypeMismatch:
		return http.StatusUnprocessableEntity, code
	case observability.OutcomeNoMapping:
		return http.StatusNotFound, code
	default:
		return http.StatusInternalServerError, code
	}
}

func (s *Server) writeEvaluationError(w http.ResponseWriter, id string, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("evaluation failed", "tree", id, "code", code, "err", err)
	} else {
		s.logger.Debug("evaluation rejected", "tree", id, "code", code, "err", err)
	}
	s.writeError(w, status, code, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// Notify publishes a reload event to subscribers of the tree and to global
// subscribers.
func (s *Server) Notify(evt arbor.ReloadEvent) {
	msg := reloadMessage{Tree: evt.ID}
	if evt.Err != nil {
		msg.Error = evt.Err.Error()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("reload event encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(evt.ID, string(payload))
}

type reloadMessage struct {
	Tree  string `json:"tree"`
	Error string `json:"error,omitempty"`
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // tree ID ("" for all) -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for events about treeID, or every tree when
// treeID is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(treeID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[treeID]; !ok {
		sm.subscribers[treeID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[treeID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[treeID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, treeID)
			}
		}
	}
}

// Broadcast sends msg to subscribers of treeID and to global subscribers.
func (sm *StreamManager) Broadcast(treeID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	targets := []string{treeID}
	if treeID != "" {
		targets = append(targets, "")
	}
	for _, key := range targets {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "tree", treeID)
			}
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, observability.OutcomeError, errors.New("streaming not supported"))
		return
	}

	treeID := r.URL.Query().Get("tree")
	ch, cancel := s.Streams.Subscribe(treeID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: client subscribed", "tree", treeID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "tree", treeID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
