// Package store keeps reconciliation runs and upload sessions in memory
// between the requests that create and read them. Entries expire after a TTL.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"wlrecon/internal/reconcile"
	"wlrecon/pkg/contracts/domain"
)

// Lookup errors
var (
	ErrRunNotFound     = errors.New("run not found or expired")
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Run is one completed reconciliation
type Run struct {
	ID           string                 `json:"id"`
	SessionID    string                 `json:"session_id,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	Result       *reconcile.Result      `json:"-"`
	Fingerprints map[domain.Role]string `json:"fingerprints,omitempty"`
}

// RunStore holds runs until they expire
type RunStore struct {
	cache *gocache.Cache
	clock func() time.Time
}

// NewRunStore creates a store whose entries live for ttl. Expired entries
// are purged every 2*ttl.
func NewRunStore(ttl time.Duration) *RunStore {
	return &RunStore{
		cache: gocache.New(ttl, 2*ttl),
		clock: time.Now,
	}
}

// Put stores run under a fresh ID, which is returned and written to run.ID
func (s *RunStore) Put(run *Run) string {
	run.ID = uuid.NewString()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock()
	}
	s.cache.Set(run.ID, run, gocache.DefaultExpiration)
	return run.ID
}

// Get returns the run or ErrRunNotFound
func (s *RunStore) Get(id string) (*Run, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrRunNotFound
	}
	return v.(*Run), nil
}

// Delete removes a run. Unknown IDs are ignored.
func (s *RunStore) Delete(id string) {
	s.cache.Delete(id)
}

// Flush removes every run
func (s *RunStore) Flush() {
	s.cache.Flush()
}

// Len returns the number of unexpired runs
func (s *RunStore) Len() int {
	return s.cache.ItemCount()
}
