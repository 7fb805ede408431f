package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/membrane-dev/membrane/pkg/observable"
)

// ServerOptions configures the inspector server.
type ServerOptions struct {
	// Addr is the listen address (default: "127.0.0.1:6780").
	Addr string

	// Membrane is the membrane to inspect.
	Membrane *observable.Membrane

	// Hub receives mutation events. Attach it to the membrane via
	// observable.WithObserver; the server only serves it.
	Hub *EventHub

	// Logger for server lifecycle messages (default: slog.Default()).
	Logger *slog.Logger
}

// Server is the live inspector: a metrics endpoint, a registry/cache
// snapshot endpoint, and a websocket stream of mutation events. It is a
// development aid and binds to loopback by default.
type Server struct {
	opts       ServerOptions
	httpServer *http.Server
}

// NewServer creates an inspector server.
func NewServer(opts ServerOptions) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:6780"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Hub == nil {
		opts.Hub = NewEventHub()
	}

	s := &Server{opts: opts}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Hub returns the server's event hub, for wiring into the membrane.
func (s *Server) Hub() *EventHub {
	return s.opts.Hub
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/stats", s.handleStats)
	r.Get("/events", s.opts.Hub.HandleWebSocket)
	return r
}

// statsResponse is the JSON shape of the /stats endpoint.
type statsResponse struct {
	Registry observable.RegistryStats `json:"registry"`
	Proxies  int                      `json:"proxies"`
	Clients  int                      `json:"clients"`
}

func (s *Server) handleStats(w http.ResponseWriter, req *http.Request) {
	resp := statsResponse{Clients: s.opts.Hub.Clients()}
	if m := s.opts.Membrane; m != nil {
		resp.Registry = m.Registry().Stats()
		resp.Proxies = m.CacheSize()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.opts.Logger.Error("inspector: encoding stats failed", "error", err)
	}
}

// Start begins serving. Blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.opts.Logger.Info("inspector listening", "addr", s.opts.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
