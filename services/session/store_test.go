package session

import (
	"context"
	"testing"
	"time"

	"clinicbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)}
	return NewMemoryStore(30*time.Minute, clock.Now), clock
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, &models.Session{
		UserID: 42,
		State:  models.StateAwaitingTime,
		Day:    day,
	}))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StateAwaitingTime, got.State)
	assert.True(t, got.Day.Equal(day))
}

func TestMemoryStoreMissingUser(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Session{UserID: 42, State: models.StateAwaitingDate}))

	clock.Advance(29 * time.Minute)
	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, got, "session should survive inside the TTL")

	clock.Advance(2 * time.Minute)
	got, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got, "session should expire after the TTL")
}

func TestMemoryStorePutRefreshesTTL(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Session{UserID: 42, State: models.StateAwaitingDate}))
	clock.Advance(20 * time.Minute)
	require.NoError(t, store.Put(ctx, &models.Session{UserID: 42, State: models.StateAwaitingTime}))
	clock.Advance(20 * time.Minute)

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StateAwaitingTime, got.State)
}

func TestMemoryStoreClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Session{UserID: 42}))
	require.NoError(t, store.Clear(ctx, 42))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreSweepEvictsAbandonedSessions(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		require.NoError(t, store.Put(ctx, &models.Session{UserID: id}))
	}
	assert.Equal(t, 5, store.Len())

	clock.Advance(31 * time.Minute)
	store.sweep()
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.Session{UserID: 42, State: models.StateAwaitingDate}))

	first, err := store.Get(ctx, 42)
	require.NoError(t, err)
	first.State = models.StateAwaitingTime

	second, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingDate, second.State)
}
