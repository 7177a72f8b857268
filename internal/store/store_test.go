package store

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wlrecon/internal/reconcile"
)

func TestRunStore(t *testing.T) {
	s := NewRunStore(time.Hour)

	run := &Run{Result: &reconcile.Result{CCPSymbolColumn: "symbol"}}
	id := s.Put(run)
	require.NotEmpty(t, id)
	assert.Equal(t, id, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, run, got)

	other := s.Put(&Run{})
	assert.NotEqual(t, id, other)

	s.Delete(id)
	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrRunNotFound)

	s.Flush()
	assert.Equal(t, 0, s.Len())
}

func TestRunStore_Expiry(t *testing.T) {
	s := NewRunStore(20 * time.Millisecond)
	id := s.Put(&Run{})

	time.Sleep(50 * time.Millisecond)

	_, err := s.Get(id)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore(time.Hour)
	base := t.TempDir()

	var evicted atomic.Int32
	s.OnEvicted(func(*Session) { evicted.Add(1) })

	sess := s.Create(func(id string) string { return filepath.Join(base, id) })
	assert.Equal(t, filepath.Join(base, sess.ID), sess.Dir)
	assert.Empty(t, sess.Files)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	s.Delete(sess.ID)
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, int32(1), evicted.Load())
}
