package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/kinetic"
	"github.com/aretw0/kinetic/internal/logging"
	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/aretw0/kinetic/pkg/lifecycle"
	"github.com/aretw0/kinetic/pkg/scene"
	"github.com/go-chi/chi/v5"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a running stage over HTTP. The stage can be swapped while
// serving (e.g. on scene reload); open event streams are then closed.
type Server struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	health   healthcheck.Handler

	mu      sync.RWMutex
	stage   *kinetic.Stage
	scene   *scene.Scene
	swapped chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithScene publishes the scene the stage was built from on GET /scene.
func WithScene(sc *scene.Scene) Option {
	return func(s *Server) {
		s.scene = sc
	}
}

// WithGatherer serves g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates a server for stage.
func NewServer(stage *kinetic.Stage, opts ...Option) *Server {
	s := &Server{
		logger:  logging.NewNop(),
		stage:   stage,
		swapped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health = healthcheck.NewHandler()
	s.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutines))
	s.health.AddReadinessCheck("scheduler", func() error {
		stage, _, _ := s.current()
		if stage.Scheduler().Stopped() {
			return domain.ErrSchedulerStopped
		}
		return nil
	})
	return s
}

const maxGoroutines = 10000

// Swap replaces the served stage and scene.
func (s *Server) Swap(stage *kinetic.Stage, sc *scene.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
	s.scene = sc
	close(s.swapped)
	s.swapped = make(chan struct{})
	s.logger.Info("stage swapped", "stage", stage.ID())
}

func (s *Server) current() (*kinetic.Stage, *scene.Scene, <-chan struct{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage, s.scene, s.swapped
}

// NewHandler creates the HTTP handler of s.
func NewHandler(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Handle("/live", s.health)
	r.Handle("/ready", s.health)
	r.Get("/info", s.GetInfo)
	r.Get("/scene", s.GetScene)
	r.Get("/coordinators", s.ListCoordinators)
	r.Get("/coordinators/{id}", s.GetCoordinator)
	r.Get("/routers", s.ListRouters)
	r.Post("/routers/{name}/{action}", s.PostRouterAction)
	r.Get("/trace", s.GetTrace)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
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

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	stage, sc, _ := s.current()
	resp := map[string]string{
		"app":     "kinetic-http",
		"version": strings.TrimSpace(kinetic.Version),
		"stage":   stage.ID(),
	}
	if sc != nil {
		resp["scene"] = sc.Name
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetScene handles GET /scene.
func (s *Server) GetScene(w http.ResponseWriter, r *http.Request) {
	_, sc, _ := s.current()
	if sc == nil {
		http.Error(w, "No scene loaded", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}

// ListCoordinators handles GET /coordinators. The list can be narrowed with
// ?state=<lifecycle state> and ?started=true|false.
func (s *Server) ListCoordinators(w http.ResponseWriter, r *http.Request) {
	stage, _, _ := s.current()
	snaps := stage.Snapshots()

	query := r.URL.Query()
	if v := query.Get("state"); v != "" {
		state, err := domain.ParseLifecycleState(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snaps = lifecycle.Filter(snaps, lifecycle.InState(state))
	}
	if v := query.Get("started"); v != "" {
		started, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid started filter %q", v), http.StatusBadRequest)
			return
		}
		snaps = lifecycle.Filter(snaps, lifecycle.HasStarted(started))
	}
	s.writeJSON(w, http.StatusOK, snaps)
}

// GetCoordinator handles GET /coordinators/{id}.
func (s *Server) GetCoordinator(w http.ResponseWriter, r *http.Request) {
	stage, _, _ := s.current()
	id := chi.URLParam(r, "id")
	snap, ok := stage.Snapshot(id)
	if !ok {
		http.Error(w, fmt.Sprintf("Coordinator %q not found", id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// ListRouters handles GET /routers.
func (s *Server) ListRouters(w http.ResponseWriter, r *http.Request) {
	stage, _, _ := s.current()
	s.writeJSON(w, http.StatusOK, stage.Routers().Snapshot())
}

// RouterActionRequest is the optional body of POST /routers/{name}/{action}.
type RouterActionRequest struct {
	Visible bool `json:"visible"`
	Data    any  `json:"data,omitempty"`
}

// PostRouterAction handles POST /routers/{name}/{action} where action is
// show, hide or set.
func (s *Server) PostRouterAction(w http.ResponseWriter, r *http.Request) {
	stage, _, _ := s.current()

	var body RouterActionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("router action: invalid request body", "err", err)
			return
		}
	}

	step := scene.Step{
		Router:  chi.URLParam(r, "name"),
		Action:  chi.URLParam(r, "action"),
		Visible: body.Visible,
		Data:    body.Data,
	}
	t, err := scene.Apply(stage.Routers(), step)
	switch {
	case errors.Is(err, domain.ErrRouterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, scene.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Debug("router action", "router", step.Router, "action", step.Action, "action_count", t.ActionCount)
	s.writeJSON(w, http.StatusOK, t)
}

// GetTrace handles GET /trace.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	stage, _, _ := s.current()
	trace, err := stage.Trace(r.Context())
	if errors.Is(err, domain.ErrTraceNotFound) {
		http.Error(w, "No trace recorded", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Trace error: %v", err), http.StatusInternalServerError)
		s.logger.Error("trace failed", "err", err)
		return
	}
	s.writeJSON(w, http.StatusOK, trace)
}

// SubscribeEvents handles GET /events (SSE). The optional coordinator query
// parameter, a comma separated list of ids, filters the stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("events: streaming not supported")
		return
	}

	var watch map[string]bool
	if v := r.URL.Query().Get("coordinator"); v != "" {
		watch = make(map[string]bool)
		for _, id := range strings.Split(v, ",") {
			watch[strings.TrimSpace(id)] = true
		}
	}

	stage, _, swapped := s.current()
	ch, cancel := stage.Events().Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("events: client connected", "stage", stage.ID())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("events: client disconnected")
			return
		case <-swapped:
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", stage.ID())
			flusher.Flush()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil && !watched(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func watched(msg string, watch map[string]bool) bool {
	var base domain.EventBase
	if err := json.Unmarshal([]byte(msg), &base); err != nil {
		return false
	}
	return watch[base.Coordinator]
}
