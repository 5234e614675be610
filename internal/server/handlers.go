package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orgchart/pkg/buildinfo"
	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/orgtree"
	"github.com/matzehuels/orgchart/pkg/render/svg"
	"github.com/matzehuels/orgchart/pkg/session"
	"github.com/matzehuels/orgchart/pkg/source"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// =============================================================================
// Requests and responses
// =============================================================================

type createRequest struct {
	Scope     string         `json:"scope"`
	Period    string         `json:"period"`
	Focus     string         `json:"focus"`
	Container *viewport.Size `json:"container"`
	Tree      *orgtree.Node  `json:"tree"` // overrides the server's source
}

type toggleRequest struct {
	ID string `json:"id"`
}

type wheelRequest struct {
	DeltaY float64 `json:"delta_y"`
}

type sessionSummary struct {
	*session.Session
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionResponse struct {
	sessionSummary
	Orphans int `json:"orphans,omitempty"`
	chart.Snapshot
}

type toggleResponse struct {
	Toggled bool `json:"toggled"`
	chart.Snapshot
}

type hitResponse struct {
	Hit bool        `json:"hit"`
	Box *layout.Box `json:"box,omitempty"`
}

type statsResponse struct {
	Sessions int                           `json:"sessions"`
	Counters observability.CounterSnapshot `json:"counters"`
	Build    buildinfo.Info                `json:"build"`
}

// =============================================================================
// Service endpoints
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Current())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Sessions: s.store.Len(),
		Counters: s.counters.Snapshot(),
		Build:    buildinfo.Current(),
	})
}

// =============================================================================
// Sessions
// =============================================================================

type ctxKey int

const sessionKey ctxKey = 0

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Get(r.Context(), chi.URLParam(r, "session"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey).(*session.Session)
}

func (s *Server) summary(sess *session.Session) sessionSummary {
	return sessionSummary{
		Session:   sess,
		UpdatedAt: sess.View.Updated(),
		ExpiresAt: sess.ExpiresAt(s.store.TTL()),
	}
}

// load fetches the tree behind key and loads it into view.
func (s *Server) load(ctx context.Context, view *chart.View, src source.Source, key source.Key, refresh bool) (int, error) {
	res, _, err := s.runner.FetchWithCacheInfo(ctx, src, key, refresh)
	if err != nil {
		return 0, err
	}
	if err := view.Load(ctx, res.Root); err != nil {
		return 0, err
	}
	return len(res.Orphans), nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	src := s.source
	if req.Tree != nil {
		src = source.NewStaticSource(req.Tree)
	}
	if src == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "no source configured, post a tree"))
		return
	}

	view := chart.New(s.chart, chart.WithLayouter(s.runner))
	if req.Container != nil {
		if err := view.Resize(*req.Container); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	key := source.Key{Scope: req.Scope, Period: req.Period, Focus: req.Focus}
	orphans, err := s.load(r.Context(), view, src, key, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.store.Create(view, src, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session opened", "id", sess.ID, "source", src.Name(), "positions", orgtree.Count(view.Tree()))
	writeJSON(w, http.StatusCreated, sessionResponse{
		sessionSummary: s.summary(sess),
		Orphans:        orphans,
		Snapshot:       view.Snapshot(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	live := s.store.List(r.Context())
	out := make([]sessionSummary, len(live))
	for i, sess := range live {
		out[i] = s.summary(sess)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, sessionResponse{sessionSummary: s.summary(sess), Snapshot: sess.View.Snapshot()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	orphans, err := s.load(r.Context(), sess.View, sess.Source, sess.Key, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		sessionSummary: s.summary(sess),
		Orphans:        orphans,
		Snapshot:       sess.View.Snapshot(),
	})
}

// =============================================================================
// Chart interaction
// =============================================================================

// update runs fn on the session's view and replies with the new snapshot.
func (s *Server) update(fn func(r *http.Request, v *chart.View) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := sessionFrom(r).View
		if err := fn(r, v); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v.Snapshot())
	}
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateNodeID(req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	v := sessionFrom(r).View
	toggled, err := v.Toggle(r.Context(), req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Toggled: toggled, Snapshot: v.Snapshot()})
}

func (s *Server) handleExpandAll(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error { return v.ExpandAll(r.Context()) })(w, r)
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error { return v.CollapseDefault(r.Context()) })(w, r)
}

func (s *Server) handleZoomIn(w http.ResponseWriter, r *http.Request) {
	s.update(func(_ *http.Request, v *chart.View) error { v.ZoomIn(); return nil })(w, r)
}

func (s *Server) handleZoomOut(w http.ResponseWriter, r *http.Request) {
	s.update(func(_ *http.Request, v *chart.View) error { v.ZoomOut(); return nil })(w, r)
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error {
		var req wheelRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		v.Wheel(req.DeltaY)
		return nil
	})(w, r)
}

func (s *Server) handleDragBegin(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error {
		var p viewport.Point
		if err := decode(r, &p); err != nil {
			return err
		}
		v.BeginDrag(p)
		return nil
	})(w, r)
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error {
		var p viewport.Point
		if err := decode(r, &p); err != nil {
			return err
		}
		v.Drag(p)
		return nil
	})(w, r)
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	s.update(func(_ *http.Request, v *chart.View) error { v.EndDrag(); return nil })(w, r)
}

func (s *Server) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	s.update(func(_ *http.Request, v *chart.View) error { v.CancelDrag(); return nil })(w, r)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error {
		var size viewport.Size
		if err := decode(r, &size); err != nil {
			return err
		}
		return v.Resize(size)
	})(w, r)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	s.update(func(r *http.Request, v *chart.View) error { return v.Fit(r.Context()) })(w, r)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}
	b, ok := sessionFrom(r).View.BoxAt(viewport.Point{X: x, Y: y})
	if !ok {
		writeJSON(w, http.StatusOK, hitResponse{})
		return
	}
	writeJSON(w, http.StatusOK, hitResponse{Hit: true, Box: &b})
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).View.Snapshot()
	var opts []svg.Option
	if snap.Container.Valid() {
		opts = append(opts, svg.WithViewport(snap.Viewport, snap.Container))
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	svg.Write(w, layout.Layout{Boxes: snap.Boxes, Edges: snap.Edges}, opts...)
}
