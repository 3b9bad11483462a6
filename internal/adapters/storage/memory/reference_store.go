package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/taborra-agent/internal/domain"
)

// ReferenceStore holds the business facts and per-user automation configs.
type ReferenceStore struct {
	mu         sync.RWMutex
	business   domain.BusinessInfo
	automation map[domain.UserID]*domain.AutomationConfig
}

func NewReferenceStore(business domain.BusinessInfo) *ReferenceStore {
	return &ReferenceStore{
		business:   business,
		automation: make(map[domain.UserID]*domain.AutomationConfig),
	}
}

func (s *ReferenceStore) LoadBusinessInfo(_ context.Context) (domain.BusinessInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(domain.BusinessInfo, len(s.business))
	for k, v := range s.business {
		out[k] = v
	}
	return out, nil
}

func (s *ReferenceStore) SetBusinessInfo(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.business == nil {
		s.business = make(domain.BusinessInfo)
	}
	s.business[key] = value
}

func (s *ReferenceStore) PutAutomationConfig(cfg domain.AutomationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cfg
	c.AvailableMethods = append([]string(nil), cfg.AvailableMethods...)
	s.automation[cfg.UserID] = &c
}

func (s *ReferenceStore) GetAutomationConfig(_ context.Context, userID domain.UserID) (*domain.AutomationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.automation[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	return &out, nil
}
