package dev

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/jsxc/internal/build"
	"github.com/vango-dev/jsxc/internal/config"
	"github.com/vango-dev/jsxc/internal/telemetry"
	"github.com/vango-dev/jsxc/pkg/compiler"
	"github.com/vango-dev/jsxc/pkg/diag"
	"github.com/vango-dev/jsxc/pkg/jsx"
)

// maxCompileBody bounds the AST accepted by POST /compile.
const maxCompileBody = 16 << 20

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics is served on /metrics and records compilations. A private
	// registry is created when nil.
	Metrics *telemetry.Metrics

	// OnBuildComplete is called after the initial build and every full
	// rebuild.
	OnBuildComplete func(result *build.Result)
}

// ModuleState is the last known outcome for one input file.
type ModuleState struct {
	Input       string        `json:"input"`
	Output      string        `json:"output"`
	URL         string        `json:"url"`
	Diagnostics []*diag.Error `json:"diagnostics,omitempty"`
	Error       string        `json:"error,omitempty"`
	Updated     time.Time     `json:"updated"`
}

// Server is the development server. It keeps the output directory in sync
// with the input directory and pushes compile results to connected
// browsers.
type Server struct {
	config     *config.Config
	options    ServerOptions
	builder    *build.Builder
	compiler   *compiler.Compiler
	metrics    *telemetry.Metrics
	watcher    *Watcher
	hub        *Hub
	logger     *slog.Logger
	changeCh   chan []Change
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
	modules    map[string]ModuleState
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := options.Metrics
	if metrics == nil {
		metrics = telemetry.New(telemetry.WithRegistry(prometheus.NewRegistry()))
	}

	debounce, err := cfg.DebounceDuration()
	if err != nil {
		debounce = config.DefaultDebounce
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    CollectWatchPaths(cfg),
		Ignore:   watchIgnore(cfg),
		Debounce: debounce,
	})

	return &Server{
		config:   cfg,
		options:  options,
		builder:  build.New(cfg, build.Options{Logger: logger, Metrics: metrics}),
		compiler: compiler.New(compiler.WithObserver(metrics)),
		metrics:  metrics,
		watcher:  watcher,
		hub:      NewHub(metrics),
		logger:   logger.With("component", "dev"),
		modules:  make(map[string]ModuleState),
	}
}

// Start builds the project, starts watching and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if _, err := s.Build(ctx); err != nil {
		s.logger.Error("initial build failed", "error", err)
	}

	s.changeCh = make(chan []Change, 64)
	s.watcher.OnChange(func(changes []Change) {
		select {
		case s.changeCh <- changes:
		default:
			s.logger.Warn("dropping file changes, rebuild queue is full", "files", len(changes))
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{
		Addr:              s.config.DevAddress(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.Stop()
		return err
	}
	s.logger.Info("server running", "url", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// Build runs a full build and replaces the known module states.
func (s *Server) Build(ctx context.Context) (*build.Result, error) {
	result, err := s.builder.Build(ctx)
	if err != nil {
		s.hub.Broadcast(Message{Type: MessageError, Error: err.Error()})
		return nil, err
	}

	s.mu.Lock()
	s.modules = make(map[string]ModuleState, len(result.Files))
	for _, fr := range result.Files {
		s.modules[fr.Input] = s.stateFor(fr)
	}
	s.mu.Unlock()

	s.logger.Info("built",
		"files", len(result.Files),
		"cached", result.Cached,
		"failed", result.Failed,
		"duration", result.Duration.Round(time.Millisecond),
	)
	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(result)
	}
	s.hub.Broadcast(Message{Type: MessageRebuilt})
	return result, nil
}

// Modules returns the module states sorted by input path.
func (s *Server) Modules() []ModuleState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ModuleState, 0, len(s.modules))
	for _, m := range s.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Input < out[j].Input })
	return out
}

func (s *Server) stateFor(fr build.FileResult) ModuleState {
	st := ModuleState{
		Input:       fr.Input,
		Output:      fr.Output,
		URL:         moduleURL(fr.Input),
		Diagnostics: fr.Diagnostics,
		Updated:     time.Now(),
	}
	if fr.Err != nil {
		st.Error = fr.Err.Error()
	}
	return st
}

func moduleURL(input string) string {
	return "/modules/" + filepath.ToSlash(strings.TrimSuffix(input, build.InputSuffix)) + ".js"
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-s.changeCh:
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next...)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges recompiles changed inputs one by one. A change to any
// other watched file triggers a full rebuild.
func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	s.metrics.Rebuild()

	for _, c := range changes {
		if !c.IsInput() {
			s.logger.Info("changed", "file", c.Path)
			s.Build(ctx)
			return
		}
	}

	for _, c := range changes {
		if c.Removed {
			s.removeModule(c.Path)
			continue
		}
		fr := s.builder.BuildFile(ctx, c.Path)
		st := s.stateFor(fr)

		s.mu.Lock()
		s.modules[fr.Input] = st
		s.mu.Unlock()

		if fr.Err != nil {
			s.logger.Error("compile failed", "file", fr.Input, "error", fr.Err)
			s.hub.Broadcast(Message{Type: MessageError, File: fr.Input, Error: st.Error})
			continue
		}
		s.logger.Info("compiled", "file", fr.Input, "cached", fr.Cached, "diagnostics", len(fr.Diagnostics))
		s.hub.Broadcast(Message{Type: MessageCompiled, File: fr.Input, Diagnostics: fr.Diagnostics})
	}
}

func (s *Server) removeModule(path string) {
	rel, err := filepath.Rel(s.config.InputPath(), path)
	if err != nil {
		rel = filepath.Base(path)
	}
	out := s.builder.OutputFor(rel)
	os.Remove(out)
	os.Remove(out + ".map")

	s.mu.Lock()
	delete(s.modules, rel)
	s.mu.Unlock()

	s.logger.Info("removed", "file", rel)
	s.hub.Broadcast(Message{Type: MessageRemoved, File: rel})
}

// Handler returns the HTTP handler of the dev server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/modules", s.handleModuleList)
	r.Get("/modules/*", s.handleModule)
	r.Post("/compile", s.handleCompile)
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	templ.Handler(indexPage(s.config.DevURL(), s.Modules())).ServeHTTP(w, r)
}

func (s *Server) handleModuleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Modules())
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + chi.URLParam(r, "*"))
	switch {
	case strings.HasSuffix(name, ".js"):
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	case strings.HasSuffix(name, ".js.map"):
		w.Header().Set("Content-Type", "application/json")
	default:
		http.NotFound(w, r)
		return
	}

	file := filepath.Join(s.config.OutputPath(), filepath.FromSlash(name))
	if _, err := os.Stat(file); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, file)
}

// handleCompile compiles the AST in the request body with the project's
// compiler options. The mode, hydratable and filename query parameters
// override them.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	opts := s.config.Compiler
	q := r.URL.Query()
	if mode := q.Get("mode"); mode != "" {
		opts.GenerateMode = compiler.Mode(mode)
	}
	if v := q.Get("hydratable"); v != "" {
		h, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, diag.New("E120").WithDetailf("hydratable is %q; expected a boolean", v))
			return
		}
		opts.Hydratable = h
	}
	if name := q.Get("filename"); name != "" {
		opts.Filename = name
	}
	if v := q.Get("sourceMap"); v != "" {
		opts.EmitSourceMap, _ = strconv.ParseBool(v)
	}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	mod, err := jsx.Decode(http.MaxBytesReader(w, r.Body, maxCompileBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, diag.FromError(err, "E142"))
		return
	}

	res, err := s.compiler.Compile(r.Context(), mod, opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type errorResponse struct {
	Error *diag.Error `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: diag.FromError(err, "E140")})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
