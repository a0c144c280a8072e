// Package session keeps the per-browser state of the frontend: the
// credential cookies and the view host with its pending notices.
package session

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erazemk/trznica/internal/notify"
	"github.com/erazemk/trznica/internal/view"
)

// DefaultLimit bounds the number of live sessions when none is configured.
const DefaultLimit = 1024

// Session is the state of one browser.
type Session struct {
	ID      string
	Host    *view.Host
	Notices *notify.Queue
}

func newSession(id string) *Session {
	return &Session{ID: id, Host: &view.Host{}, Notices: &notify.Queue{}}
}

// Store holds the sessions. The least recently used session is evicted
// once the limit is reached, and its mounted view is unmounted.
type Store struct {
	cache *lru.Cache[string, *Session]
}

// NewStore creates a store holding at most limit sessions.
func NewStore(limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	cache, err := lru.NewWithEvict(limit, func(id string, s *Session) {
		slog.Debug("session closed", "session", id)
		s.Host.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Get returns the session of the requesting browser, starting a new one
// (and setting its cookie) when the browser has none or it was evicted.
func (s *Store) Get(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.cache.Get(c.Value); ok {
			return sess
		}
	}

	sess := newSession(uuid.NewString())
	s.cache.Add(sess.ID, sess)
	setCookie(w, SessionCookie, sess.ID, 0)
	return sess
}

// Remove closes and forgets a session.
func (s *Store) Remove(id string) {
	s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Close closes every session.
func (s *Store) Close() {
	s.cache.Purge()
}
