// Package session persists troubleshooting sessions in the keyed cache so a
// guided dialogue can resume across independent inbound deliveries.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PabloGalante/taborra-agent/internal/domain"
	"github.com/PabloGalante/taborra-agent/internal/observability"
)

const DefaultTTL = 30 * time.Minute

// Key is the cache key of the session of one (recipient, conversation) pair.
func Key(phone string, conversationID domain.ConversationID) string {
	return fmt.Sprintf("taborra:chat:%s:%s:state", phone, conversationID)
}

type Store struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewStore(cache domain.Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache, ttl: ttl}
}

// Load returns the persisted state. A missing record is Inactive; so is a
// corrupt one, which is also deleted so the next turn starts clean.
func (s *Store) Load(ctx context.Context, key string) (domain.SessionState, error) {
	data, err := s.cache.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.InactiveSession(), nil
	}
	if err != nil {
		return domain.InactiveSession(), fmt.Errorf("load session %s: %w", key, err)
	}

	sess, err := Unmarshal(data)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("discarding corrupt session record",
			"key", key,
			"error", err,
		)
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			observability.LoggerFromContext(ctx).Warn("failed to delete corrupt session record",
				"key", key,
				"error", delErr,
			)
		}
		return domain.InactiveSession(), nil
	}
	return domain.ActiveSession(sess), nil
}

// Save writes an active session with the store TTL and deletes the key for an
// inactive one.
func (s *Store) Save(ctx context.Context, key string, st domain.SessionState) error {
	sess, ok := st.Session()
	if !ok {
		return s.Clear(ctx, key)
	}
	data, err := Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", key, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear session %s: %w", key, err)
	}
	return nil
}
