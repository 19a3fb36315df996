package ports

import (
    "context"
    "time"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// ReferenceTableRepository persists the calibratable coefficients. Static
// table data ships with the binary; only coefficients live in storage.
type ReferenceTableRepository interface {
    LoadCoefficients(ctx context.Context) ([]domain.Coefficient, error)
    // SeedCoefficients inserts coefficients that are not stored yet and
    // leaves existing rows alone.
    SeedCoefficients(ctx context.Context, cs []domain.Coefficient) error
    // ApplyAdjustments sets every adjusted coefficient to its proposed value
    // and marks the batch applied, atomically. applied is false when the
    // stored batch was already applied; nothing is written then.
    ApplyAdjustments(ctx context.Context, batch domain.CalibrationBatch, appliedAt time.Time) (applied bool, err error)
}

// FeedbackRepository stores estimate-vs-actual outcomes keyed by calculation.
type FeedbackRepository interface {
    UpsertFeedback(ctx context.Context, fb domain.CalculationFeedback) error
    // ListFeedback returns records with from <= RecordedAt < to; a zero bound
    // is open.
    ListFeedback(ctx context.Context, from, to time.Time) ([]domain.CalculationFeedback, error)
}

// CalibrationRepository keeps proposed and applied batches.
type CalibrationRepository interface {
    SaveBatch(ctx context.Context, b domain.CalibrationBatch) error
    GetBatch(ctx context.Context, id string) (domain.CalibrationBatch, error)
    ListBatches(ctx context.Context) ([]domain.CalibrationBatch, error)
}
