package store

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"wlrecon/pkg/contracts/domain"
)

// Session is a set of uploaded input files waiting to be compared
type Session struct {
	ID        string                 `json:"id"`
	Dir       string                 `json:"-"`
	Files     map[domain.Role]string `json:"files"`
	CreatedAt time.Time              `json:"created_at"`
	LastRunID string                 `json:"last_run_id,omitempty"`
}

// SessionStore holds upload sessions until they expire
type SessionStore struct {
	cache *gocache.Cache
}

// NewSessionStore creates a session store with the given TTL
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{cache: gocache.New(ttl, 2*ttl)}
}

// OnEvicted registers fn to run when a session expires or is deleted
func (s *SessionStore) OnEvicted(fn func(*Session)) {
	s.cache.OnEvicted(func(_ string, v interface{}) {
		fn(v.(*Session))
	})
}

// Create starts a session whose files live in dir
func (s *SessionStore) Create(dir func(id string) string) *Session {
	id := uuid.NewString()
	sess := &Session{
		ID:        id,
		Dir:       dir(id),
		Files:     make(map[domain.Role]string),
		CreatedAt: time.Now(),
	}
	s.cache.Set(id, sess, gocache.DefaultExpiration)
	return sess
}

// Get returns the session or ErrSessionNotFound. A hit refreshes its TTL.
func (s *SessionStore) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*Session)
	s.cache.Set(id, sess, gocache.DefaultExpiration)
	return sess, nil
}

// Delete removes a session
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
