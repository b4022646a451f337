package memory

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/incident-drill/internal/drill"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// lruReaper is the expiry goroutine started by expirable.NewLRU. It has no
// way to stop in golang-lru v2.
const lruReaper = "github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"

func newSession() *drill.Session {
	return drill.NewSession(uuid.NewString(), time.Now(), drill.NewController(drill.NewIncident(), nil))
}

func TestStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Config{MaxSessions: 10, IdleTTL: time.Hour})

	sess := newSession()
	require.NoError(t, store.Create(ctx, sess))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	assert.Error(t, store.Create(ctx, sess), "duplicate id must be rejected")

	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, drill.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, sess.ID), drill.ErrSessionNotFound)
}

func TestStore_EvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Config{MaxSessions: 2, IdleTTL: time.Hour})

	first, second, third := newSession(), newSession(), newSession()
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	// Touch first so that second becomes the least recently used.
	_, err := store.Get(ctx, first.ID)
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, third))
	assert.Equal(t, 2, store.Len())

	_, err = store.Get(ctx, second.ID)
	assert.ErrorIs(t, err, drill.ErrSessionNotFound)

	_, err = store.Get(ctx, first.ID)
	assert.NoError(t, err)
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Config{MaxSessions: 10, IdleTTL: 50 * time.Millisecond})

	sess := newSession()
	require.NoError(t, store.Create(ctx, sess))

	// Get resets the idle timer, so probe only once the TTL has passed.
	time.Sleep(150 * time.Millisecond)

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, drill.ErrSessionNotFound)
}

func TestStore_OnlyReaperOutlivesStore(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent(), goleak.IgnoreAnyFunction(lruReaper))

	ctx := context.Background()
	store := NewStore(Config{MaxSessions: 2, IdleTTL: time.Hour})
	sess := newSession()
	require.NoError(t, store.Create(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))
}
