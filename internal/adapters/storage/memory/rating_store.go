package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// RatingStore is an in-memory implementation of domain.RatingStore.
// It is NOT persistent and is only suitable for development / local mode.
type RatingStore struct {
	mu      sync.RWMutex
	ratings []*domain.Rating
}

func NewRatingStore() *RatingStore {
	return &RatingStore{}
}

func (s *RatingStore) SaveRating(_ context.Context, rating *domain.Rating) error {
	if rating == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	r := *rating
	s.ratings = append(s.ratings, &r)
	return nil
}

// ListRatings returns ratings in insertion order; an empty deviceType matches all.
func (s *RatingStore) ListRatings(_ context.Context, deviceType string) ([]*domain.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Rating
	for _, r := range s.ratings {
		if deviceType != "" && r.DeviceType != deviceType {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	return out, nil
}
