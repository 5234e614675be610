// Package server is the HTTP API behind browser org charts.
//
// Each client opens a session holding one interactive chart. The browser
// forwards user input (clicks on a box, wheel events, drag gestures,
// container resizes) and repaints from the snapshot returned by every call:
//
//	POST   /sessions                   open a chart {scope, period, focus, container, tree}
//	GET    /sessions                   list live sessions
//	GET    /sessions/{id}              current snapshot
//	DELETE /sessions/{id}              close
//	POST   /sessions/{id}/reload       re-read the source, expansion is reset
//	POST   /sessions/{id}/toggle       {id} expand or collapse a position
//	POST   /sessions/{id}/expand-all
//	POST   /sessions/{id}/collapse
//	POST   /sessions/{id}/zoom-in
//	POST   /sessions/{id}/zoom-out
//	POST   /sessions/{id}/wheel        {delta_y}
//	POST   /sessions/{id}/drag/begin   {x, y}
//	POST   /sessions/{id}/drag/move    {x, y}
//	POST   /sessions/{id}/drag/end
//	POST   /sessions/{id}/drag/cancel
//	PUT    /sessions/{id}/container    {width, height}
//	POST   /sessions/{id}/fit
//	GET    /sessions/{id}/hit?x=&y=    box under a screen point
//	GET    /sessions/{id}/svg          the chart as the client sees it
//
// Errors are JSON {"code", "message"} with the status derived from the
// error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/pipeline"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/source"
)

// Config wires the server's collaborators.
type Config struct {
	Runner   *pipeline.Runner
	Source   source.Source // nil: sessions must post their tree
	Store    *session.Store
	Chart    chart.Config
	Counters *observability.Counters
	Logger   *log.Logger
}

// Server serves the session API.
type Server struct {
	runner   *pipeline.Runner
	source   source.Source
	store    *session.Store
	chart    chart.Config
	counters *observability.Counters
	logger   *log.Logger
	router   chi.Router
}

// New builds the router. Nil collaborators get in-memory defaults.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		source:   cfg.Source,
		store:    cfg.Store,
		chart:    cfg.Chart,
		counters: cfg.Counters,
		logger:   cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = session.NewStore(session.DefaultTTL)
	}
	if s.counters == nil {
		s.counters = &observability.Counters{}
	}
	if s.chart == (chart.Config{}) {
		s.chart = chart.DefaultConfig()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/stats", s.handleStats)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)

		r.Route("/{session}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleSnapshot)
			r.Delete("/", s.handleDelete)
			r.Post("/reload", s.handleReload)
			r.Post("/toggle", s.handleToggle)
			r.Post("/expand-all", s.handleExpandAll)
			r.Post("/collapse", s.handleCollapse)
			r.Post("/zoom-in", s.handleZoomIn)
			r.Post("/zoom-out", s.handleZoomOut)
			r.Post("/wheel", s.handleWheel)
			r.Post("/drag/begin", s.handleDragBegin)
			r.Post("/drag/move", s.handleDragMove)
			r.Post("/drag/end", s.handleDragEnd)
			r.Post("/drag/cancel", s.handleDragCancel)
			r.Put("/container", s.handleResize)
			r.Post("/fit", s.handleFit)
			r.Get("/hit", s.handleHit)
			r.Get("/svg", s.handleSVG)
		})
	})
	return r
}

// Handler returns the API's root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store returns the session store.
func (s *Server) Store() *session.Store { return s.store }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Expired sessions are swept once a minute.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.store.Run(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
