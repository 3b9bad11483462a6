// Package ratings reads back the ratings left at the end of troubleshooting sessions.
package ratings

import (
	"context"
	"fmt"
	"sort"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// Entry aggregates the ratings of one (device, problem) pair.
type Entry struct {
	DeviceType  string  `json:"device_type"`
	ProblemType string  `json:"problem_type"`
	Count       int     `json:"count"`
	Average     float64 `json:"average"`
}

// Summary is the ratings report. Entries are sorted by device then problem.
type Summary struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
	Entries []Entry `json:"entries"`
}

// Service holds the logic of reading ratings
type Service struct {
	store domain.RatingStore
}

// NewService creates a ratings service from a RatingStore
func NewService(store domain.RatingStore) *Service {
	return &Service{
		store: store,
	}
}

// Summary aggregates ratings, restricted to deviceType when it is not empty.
func (s *Service) Summary(ctx context.Context, deviceType string) (Summary, error) {
	if s.store == nil {
		return Summary{Entries: []Entry{}}, nil
	}

	list, err := s.store.ListRatings(ctx, deviceType)
	if err != nil {
		return Summary{}, fmt.Errorf("list ratings: %w", err)
	}

	type key struct{ device, problem string }
	sums := make(map[key]int)
	counts := make(map[key]int)
	total := 0
	for _, r := range list {
		k := key{r.DeviceType, r.ProblemType}
		sums[k] += r.Rating
		counts[k]++
		total += r.Rating
	}

	out := Summary{Total: len(list), Entries: make([]Entry, 0, len(counts))}
	if len(list) > 0 {
		out.Average = float64(total) / float64(len(list))
	}
	for k, n := range counts {
		out.Entries = append(out.Entries, Entry{
			DeviceType:  k.device,
			ProblemType: k.problem,
			Count:       n,
			Average:     float64(sums[k]) / float64(n),
		})
	}
	sort.Slice(out.Entries, func(i, j int) bool {
		if out.Entries[i].DeviceType != out.Entries[j].DeviceType {
			return out.Entries[i].DeviceType < out.Entries[j].DeviceType
		}
		return out.Entries[i].ProblemType < out.Entries[j].ProblemType
	})
	return out, nil
}
