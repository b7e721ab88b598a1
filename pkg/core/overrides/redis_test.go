package overrides

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_dashboard/pkg/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_GetAbsent(t *testing.T) {
	store, _ := newTestRedisStore(t)

	ov, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, ov)
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	err := store.Set(ctx, Override{
		PropertyID: "prop-1",
		Items:      []models.ExpenseItem{{Category: "Landscaping", MonthlyAmount: fp(140)}},
		UpdatedBy:  "pm@example.com",
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("overrides:property:prop-1"))

	ov, err := store.Get(ctx, "prop-1")
	require.NoError(t, err)
	require.NotNil(t, ov)
	require.Len(t, ov.Items, 1)
	assert.Equal(t, "Landscaping", ov.Items[0].Category)
	assert.Equal(t, 140.0, *ov.Items[0].MonthlyAmount)
	assert.False(t, ov.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, "prop-1"))
	assert.False(t, mr.Exists("overrides:property:prop-1"))

	ov, err = store.Get(ctx, "prop-1")
	require.NoError(t, err)
	assert.Nil(t, ov)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set("overrides:property:prop-1", "not json"))

	_, err := store.Get(context.Background(), "prop-1")
	assert.Error(t, err)
}

func TestRedisStore_WatchDeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, _ := newTestRedisStore(t)

	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, Override{
		PropertyID: "prop-1",
		Items:      []models.ExpenseItem{{Category: "Trash", MonthlyAmount: fp(45)}},
	}))

	select {
	case ev := <-ch:
		assert.Equal(t, Event{PropertyID: "prop-1", Kind: EventSet}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no event within 2s")
	}

	require.NoError(t, store.Delete(ctx, "prop-1"))
	select {
	case ev := <-ch:
		assert.Equal(t, Event{PropertyID: "prop-1", Kind: EventDeleted}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no delete event within 2s")
	}
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	// A dead address fails fast instead of limping into runtime.
	addr := mr.Addr()
	mr.Close()
	_, err = DialRedis(addr, "", 0)
	assert.Error(t, err)
}
