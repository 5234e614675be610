// Package session keeps interactive charts for the HTTP server.
//
// Each session holds one chart.View and is addressed by a random UUID.
// Sessions live in memory only and expire after a period without
// interaction; nothing is persisted.
//
//	store := session.NewStore(session.DefaultTTL)
//	sess, _ := store.Create(view, src, source.Key{Scope: "emea"})
//	sess, err := store.Get(ctx, sess.ID)
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/source"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Session is one client's interactive chart.
type Session struct {
	ID        string     `json:"id"`
	Key       source.Key `json:"key"`
	CreatedAt time.Time  `json:"created_at"`

	// Source is re-read when the session reloads.
	Source source.Source `json:"-"`
	View   *chart.View   `json:"-"`

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed returns when the session was created or last fetched from its
// store, by the store's clock.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastUsed = t
	s.mu.Unlock()
}

// ExpiresAt returns when the session lapses unless used again.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.LastUsed().Add(ttl)
}

// Store is an in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns an empty store. A non-positive ttl means DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// TTL returns the idle timeout.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create registers view, and the source it was loaded from, under a new id.
func (s *Store) Create(view *chart.View, src source.Source, key source.Key) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}
	now := s.now()
	sess := &Session{ID: id.String(), Key: key, CreatedAt: now, Source: src, View: view, lastUsed: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns the session with the given id and restarts its idle timer.
// Unknown, malformed and expired ids yield SESSION_NOT_FOUND.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	now := s.now()
	if now.After(sess.ExpiresAt(s.ttl)) {
		_ = s.Delete(ctx, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	sess.touch(now)
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List returns the live sessions ordered by creation time.
func (s *Store) List(ctx context.Context) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if !now.After(sess.ExpiresAt(s.ttl)) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Cleanup drops expired sessions and returns how many were removed.
func (s *Store) Cleanup(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt(s.ttl)) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Cleanup(ctx)
		}
	}
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
