// Package server exposes flow documents over a small JSON HTTP API.
//
// Each document is loaded into a [store.Graph] on first use and kept in
// memory, so undo and redo work across requests. Every change is written
// back to the document store. Requests for one document are serialised;
// different documents are edited in parallel.
//
// Routes:
//
//	GET    /flows                    list stored documents
//	PUT    /flows/{id}               create or replace a document (flow JSON)
//	GET    /flows/{id}               current flow JSON
//	DELETE /flows/{id}               delete a document
//	POST   /flows/{id}/actions       apply one action envelope or a script
//	POST   /flows/{id}/undo          undo the last entry
//	POST   /flows/{id}/redo          redo the last undone entry
//	GET    /flows/{id}/history       undo/redo stack sizes
//	POST   /flows/{id}/convert?to=   switch canvas mode (auto or free)
//	GET    /flows/{id}/dot           Graphviz DOT of the current flow
//	GET    /version                  build information
//
// Errors are RFC 7807 problem documents whose type is the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowcanvas/pkg/buildinfo"
	"github.com/matzehuels/flowcanvas/pkg/config"
	"github.com/matzehuels/flowcanvas/pkg/docstore"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// Server serves the flow API.
type Server struct {
	docs   docstore.Store
	cfg    config.Config
	logger *log.Logger

	mu   sync.Mutex
	open map[string]*document
}

// document is one flow held in memory. ready is closed once the flow is
// loaded; err is set when loading failed. A stale document has been
// replaced or deleted and must not be used once mu is held.
type document struct {
	ready chan struct{}
	err   error

	mu    sync.Mutex
	stale bool
	graph *store.Graph
	store store.Store
}

// New creates a server backed by docs.
func New(docs docstore.Store, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		docs:   docs,
		cfg:    cfg,
		logger: logger,
		open:   make(map[string]*document),
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.listFlows)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(validID)
			r.Put("/", s.putFlow)
			r.Get("/", s.getFlow)
			r.Delete("/", s.deleteFlow)
			r.Post("/actions", s.applyActions)
			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)
			r.Get("/history", s.history)
			r.Post("/convert", s.convert)
			r.Get("/dot", s.dot)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", status, "elapsed", elapsed.Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// document returns the in-memory document for id, loading it from the
// document store on first use. Loads run outside s.mu; concurrent requests
// for the same id wait for the first load.
func (s *Server) document(ctx context.Context, id string) (*document, error) {
	s.mu.Lock()
	d, ok := s.open[id]
	if !ok {
		d = &document{ready: make(chan struct{})}
		s.open[id] = d
	}
	s.mu.Unlock()

	if ok {
		select {
		case <-d.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if d.err != nil {
			return nil, d.err
		}
		return d, nil
	}

	d.err = s.load(context.WithoutCancel(ctx), id, d)
	if d.err != nil {
		s.mu.Lock()
		if s.open[id] == d {
			delete(s.open, id)
		}
		s.mu.Unlock()
	}
	close(d.ready)
	if d.err != nil {
		return nil, d.err
	}
	return d, nil
}

// acquire returns the current document for id with its mutex held.
func (s *Server) acquire(ctx context.Context, id string) (*document, error) {
	for {
		d, err := s.document(ctx, id)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		if !d.stale {
			return d, nil
		}
		d.mu.Unlock()
	}
}

func (s *Server) load(ctx context.Context, id string, d *document) error {
	m, err := docstore.Load(ctx, s.docs, id)
	if err != nil {
		return err
	}
	return s.attach(d, m)
}

// attach builds the store for m into d.
func (s *Server) attach(d *document, m *flow.Model) error {
	graph, err := store.New(m,
		store.WithHistory(s.cfg.HistoryOptions()...),
		store.WithLogger(s.logger))
	if err != nil {
		return err
	}
	d.graph, d.store = graph, s.decorate(graph)
	return nil
}

func (s *Server) decorate(g *store.Graph) store.Store {
	var st store.Store = g
	if s.cfg.Debug.AssertState || s.cfg.Debug.AssertRoundTrip {
		st = store.WithAssertions(st, store.AssertOptions{
			RoundTrip: s.cfg.Debug.AssertRoundTrip,
			Layout:    s.cfg.LayoutOptions(),
			Logger:    s.logger,
		})
	}
	return store.WithLogging(st, s.logger)
}

// install makes d the document for id and retires the previous one. It
// returns once no request holds the previous document, so nothing written
// through it can land after the caller's own write.
func (s *Server) install(id string, d *document) {
	s.mu.Lock()
	old := s.open[id]
	s.open[id] = d
	s.mu.Unlock()

	if old == nil {
		return
	}
	<-old.ready
	old.mu.Lock()
	old.stale = true
	old.mu.Unlock()
}

// retire removes d from the open documents and marks it stale. The caller
// holds d.mu or has not yet closed d.ready.
func (s *Server) retire(id string, d *document) {
	s.mu.Lock()
	if s.open[id] == d {
		delete(s.open, id)
	}
	s.mu.Unlock()
	d.stale = true
}
