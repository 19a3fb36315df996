// Package memory implements the repository ports in process memory. The
// server falls back to it when no DATABASE_URL is configured; tests use it
// everywhere.
package memory

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
)

type Store struct {
    mu       sync.Mutex
    coeffs   map[domain.CoefficientKey]domain.Coefficient
    feedback map[string]domain.CalculationFeedback
    batches  map[string]domain.CalibrationBatch
}

func New() *Store {
    return &Store{
        coeffs:   map[domain.CoefficientKey]domain.Coefficient{},
        feedback: map[string]domain.CalculationFeedback{},
        batches:  map[string]domain.CalibrationBatch{},
    }
}

// ReferenceTableRepository

func (s *Store) LoadCoefficients(_ context.Context) ([]domain.Coefficient, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]domain.Coefficient, 0, len(s.coeffs))
    for _, c := range s.coeffs {
        out = append(out, c)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
    return out, nil
}

func (s *Store) SeedCoefficients(_ context.Context, cs []domain.Coefficient) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, c := range cs {
        if _, ok := s.coeffs[c.CoefficientKey]; !ok {
            s.coeffs[c.CoefficientKey] = c
        }
    }
    return nil
}

func (s *Store) ApplyAdjustments(_ context.Context, batch domain.CalibrationBatch, appliedAt time.Time) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if cur, ok := s.batches[batch.ID]; ok && cur.Status == domain.BatchApplied {
        return false, nil
    }
    for _, a := range batch.Adjustments {
        s.coeffs[a.CoefficientKey] = domain.Coefficient{CoefficientKey: a.CoefficientKey, Value: a.Proposed, UpdatedAt: appliedAt}
    }
    batch.Status = domain.BatchApplied
    batch.AppliedAt = &appliedAt
    s.batches[batch.ID] = cloneBatch(batch)
    return true, nil
}

// FeedbackRepository

func (s *Store) UpsertFeedback(_ context.Context, fb domain.CalculationFeedback) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    fb.Components = append([]domain.FeedbackComponent(nil), fb.Components...)
    s.feedback[fb.CalculationID] = fb
    return nil
}

func (s *Store) ListFeedback(_ context.Context, from, to time.Time) ([]domain.CalculationFeedback, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.CalculationFeedback{}
    for _, fb := range s.feedback {
        if !from.IsZero() && fb.RecordedAt.Before(from) {
            continue
        }
        if !to.IsZero() && !fb.RecordedAt.Before(to) {
            continue
        }
        out = append(out, fb)
    }
    sort.Slice(out, func(i, j int) bool {
        if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
            return out[i].RecordedAt.Before(out[j].RecordedAt)
        }
        return out[i].CalculationID < out[j].CalculationID
    })
    return out, nil
}

// CalibrationRepository

func (s *Store) SaveBatch(_ context.Context, b domain.CalibrationBatch) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.batches[b.ID] = cloneBatch(b)
    return nil
}

func (s *Store) GetBatch(_ context.Context, id string) (domain.CalibrationBatch, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.batches[id]
    if !ok {
        return domain.CalibrationBatch{}, domain.ErrNotFound
    }
    return cloneBatch(b), nil
}

func (s *Store) ListBatches(_ context.Context) ([]domain.CalibrationBatch, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]domain.CalibrationBatch, 0, len(s.batches))
    for _, b := range s.batches {
        out = append(out, cloneBatch(b))
    }
    sort.Slice(out, func(i, j int) bool {
        if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
            return out[i].CreatedAt.After(out[j].CreatedAt)
        }
        return out[i].ID < out[j].ID
    })
    return out, nil
}

func cloneBatch(b domain.CalibrationBatch) domain.CalibrationBatch {
    b.Adjustments = append([]domain.Adjustment{}, b.Adjustments...)
    if b.AppliedAt != nil {
        at := *b.AppliedAt
        b.AppliedAt = &at
    }
    return b
}

var (
    _ ports.ReferenceTableRepository = (*Store)(nil)
    _ ports.FeedbackRepository       = (*Store)(nil)
    _ ports.CalibrationRepository    = (*Store)(nil)
)
