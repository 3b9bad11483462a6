package memory

import (
	"context"
	"sync"
	"time"

	"github.com/PabloGalante/taborra-agent/internal/adapters/cache"
	"github.com/PabloGalante/taborra-agent/internal/domain"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

type list struct {
	items     [][]byte // newest first
	expiresAt time.Time
}

// Cache is an in-process stand-in for the redis cache, used in local mode and tests.
type Cache struct {
	mu      sync.Mutex
	values  map[string]entry
	lists   map[string]list
	nowFunc func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		values:  make(map[string]entry),
		lists:   make(map[string]list),
		nowFunc: time.Now,
	}
}

// WithClock replaces the time source; tests use it to expire keys.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.nowFunc = now
	return c
}

func (c *Cache) expired(at time.Time) bool {
	return !at.IsZero() && !c.nowFunc().Before(at)
}

func (c *Cache) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.nowFunc().Add(ttl)
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.expired(e.expiresAt) {
		delete(c.values, key)
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	c.values[key] = entry{value: v, expiresAt: c.deadline(ttl)}
	return nil
}

func (c *Cache) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.values[key]; ok && !c.expired(e.expiresAt) {
		return false, nil
	}
	v := make([]byte, len(value))
	copy(v, value)
	c.values[key] = entry{value: v, expiresAt: c.deadline(ttl)}
	return true, nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)
	delete(c.lists, key)
	return nil
}

func (c *Cache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.values[key]; ok {
		e.expiresAt = c.deadline(ttl)
		c.values[key] = e
	}
	if l, ok := c.lists[key]; ok {
		l.expiresAt = c.deadline(ttl)
		c.lists[key] = l
	}
	return nil
}

func (c *Cache) AppendHistory(_ context.Context, key string, msg domain.Message) error {
	data, err := cache.EncodeHistory(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.lists[key]
	if c.expired(l.expiresAt) {
		l = list{}
	}
	l.items = append([][]byte{data}, l.items...)
	if len(l.items) > cache.HistoryMaxLen {
		l.items = l.items[:cache.HistoryMaxLen]
	}
	l.expiresAt = c.deadline(cache.HistoryTTL)
	c.lists[key] = l
	return nil
}

// RecentHistory returns up to limit of the newest entries in chronological order.
func (c *Cache) RecentHistory(_ context.Context, key string, limit int) ([]domain.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lists[key]
	if !ok {
		return nil, nil
	}
	if c.expired(l.expiresAt) {
		delete(c.lists, key)
		return nil, nil
	}

	n := len(l.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Message, 0, n)
	for i := n - 1; i >= 0; i-- {
		msg, err := cache.DecodeHistory(l.items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}
