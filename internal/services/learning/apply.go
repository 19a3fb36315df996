package learning

import (
    "context"
    "fmt"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// ApplyCalibration moves every coefficient in the batch to its proposed
// value, persists that atomically and publishes new tables. Applying a batch
// that is already applied changes nothing.
func (s *Service) ApplyCalibration(ctx context.Context, batch domain.CalibrationBatch) (domain.CalibrationBatch, error) {
    switch batch.Status {
    case domain.BatchApplied:
        return batch, nil
    case domain.BatchProposed:
    default:
        return batch, fmt.Errorf("apply batch %s in state %q: %w", batch.ID, batch.Status, domain.ErrBatchNotProposed)
    }

    keys := make([]string, 0, len(batch.Adjustments))
    for _, a := range batch.Adjustments {
        keys = append(keys, a.String())
    }
    unlock := s.locks.Lock(keys...)
    defer unlock()

    at := s.opts.Now().UTC()
    applied, err := s.coeffs.ApplyAdjustments(ctx, batch, at)
    if err != nil {
        return batch, fmt.Errorf("apply batch %s: %w", batch.ID, err)
    }
    if !applied {
        // Already applied, and later batches may have moved the same keys;
        // the live tables stay as they are.
        stored, err := s.batches.GetBatch(ctx, batch.ID)
        if err != nil {
            return batch, fmt.Errorf("reload applied batch %s: %w", batch.ID, err)
        }
        return stored, nil
    }
    s.tables.Apply(batch.Adjustments, at)

    batch.Status = domain.BatchApplied
    batch.AppliedAt = &at
    s.log.Info("calibration applied", "batch_id", batch.ID, "adjustments", len(batch.Adjustments))
    return batch, nil
}

// ApplyBatch applies a stored batch by ID.
func (s *Service) ApplyBatch(ctx context.Context, id string) (domain.CalibrationBatch, error) {
    b, err := s.batches.GetBatch(ctx, id)
    if err != nil {
        return domain.CalibrationBatch{}, err
    }
    return s.ApplyCalibration(ctx, b)
}
