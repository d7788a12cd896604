package storage

import (
	"log/slog"
	"time"

	"github.com/MalinduDS/styleshot/internal/studio"
	"github.com/patrickmn/go-cache"
)

// SessionStore keeps live sessions in memory. Sessions idle for longer than the TTL are
// evicted and their uploads removed from disk.
type SessionStore struct {
	sessions *cache.Cache
}

func New(ttl time.Duration) *SessionStore {
	cleanup := ttl / 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return newStore(ttl, cleanup)
}

// newStore builds a store with an explicit janitor interval. A cleanup of zero runs
// no janitor.
func newStore(ttl, cleanup time.Duration) *SessionStore {
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(id string, v interface{}) {
		sess, ok := v.(*studio.Session)
		if !ok {
			return
		}
		if err := sess.Close(); err != nil {
			slog.Warn("Failed to clean up session", "session_id", id, "err", err)
			return
		}
		slog.Debug("Session evicted", "session_id", id)
	})

	return &SessionStore{sessions: c}
}

// Get returns the session and refreshes its expiry.
func (s *SessionStore) Get(sessionID string) (*studio.Session, bool) {
	v, exists := s.sessions.Get(sessionID)
	if !exists {
		return nil, false
	}
	session := v.(*studio.Session)
	s.sessions.Set(sessionID, session, cache.DefaultExpiration)
	return session, true
}

func (s *SessionStore) Set(sessionID string, session *studio.Session) {
	s.sessions.Set(sessionID, session, cache.DefaultExpiration)
}

func (s *SessionStore) GetAll() map[string]*studio.Session {
	items := s.sessions.Items()
	result := make(map[string]*studio.Session, len(items))
	for k, item := range items {
		if session, ok := item.Object.(*studio.Session); ok {
			result[k] = session
		}
	}
	return result
}

// Delete removes the session and its uploads.
func (s *SessionStore) Delete(sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *SessionStore) Count() int {
	return s.sessions.ItemCount()
}

// Close evicts every session, including expired ones the janitor has not reached yet.
func (s *SessionStore) Close() {
	s.sessions.DeleteExpired()
	for id := range s.sessions.Items() {
		s.sessions.Delete(id)
	}
}
