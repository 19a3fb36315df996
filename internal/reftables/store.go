package reftables

import (
    "sync"
    "time"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// Store publishes the current tables. Readers take a snapshot and keep using
// it for a whole calculation; Apply swaps in a new value.
type Store struct {
    mu     sync.RWMutex
    tables *Tables
}

func NewStore(t *Tables) *Store {
    return &Store{tables: t}
}

func (s *Store) Snapshot() *Tables {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return s.tables
}

// Overlay replaces coefficients loaded from persistence.
func (s *Store) Overlay(cs []domain.Coefficient) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.tables = s.tables.WithCoefficients(cs)
}

// Apply sets every adjusted coefficient to its proposed value.
func (s *Store) Apply(adjs []domain.Adjustment, at time.Time) *Tables {
    cs := make([]domain.Coefficient, 0, len(adjs))
    for _, a := range adjs {
        cs = append(cs, domain.Coefficient{CoefficientKey: a.CoefficientKey, Value: a.Proposed, UpdatedAt: at})
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    s.tables = s.tables.WithCoefficients(cs)
    return s.tables
}
