package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCacheGetSetExpire(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache().WithClock(clock.Now)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Expire(ctx, "k", time.Hour))
	clock.Advance(30 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheSetNX(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache().WithClock(clock.Now)

	ok, err := c.SetNX(ctx, "message:1", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "message:1", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Hour)
	ok, err = c.SetNX(ctx, "message:1", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheHistory(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	msgs, err := c.RecentHistory(ctx, "h", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	for i := 0; i < 60; i++ {
		require.NoError(t, c.AppendHistory(ctx, "h", domain.UserMessage(fmt.Sprintf("m%d", i))))
	}

	msgs, err = c.RecentHistory(ctx, "h", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "m57", msgs[0].Content)
	assert.Equal(t, "m59", msgs[2].Content)

	all, err := c.RecentHistory(ctx, "h", 0)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	assert.Equal(t, "m10", all[0].Content)
}
