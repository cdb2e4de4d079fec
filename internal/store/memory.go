package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Heightsdesign/stockwatch/internal/model"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu     sync.Mutex
	alerts map[string]*model.Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[string]*model.Alert)}
}

func (s *MemoryStore) Save(_ context.Context, alert *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *alert
	s.alerts[alert.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *alert
	return &cp, nil
}

func (s *MemoryStore) ListActive(_ context.Context) ([]*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var alerts []*model.Alert
	for _, alert := range s.alerts {
		if alert.IsActive {
			cp := *alert
			alerts = append(alerts, &cp)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Symbol != alerts[j].Symbol {
			return alerts[i].Symbol < alerts[j].Symbol
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts, nil
}

func (s *MemoryStore) MarkTriggered(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok || !alert.IsActive {
		return false, nil
	}
	alert.IsActive = false
	t := at
	alert.LastTriggeredAt = &t
	return true, nil
}

func (s *MemoryStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	alert.IsActive = active
	return nil
}

func (s *MemoryStore) Close() error { return nil }
