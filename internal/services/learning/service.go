// Package learning compares past estimates with recorded outcomes and turns
// the differences into coefficient adjustments and risk-buffer suggestions.
//
// Nothing here changes the reference tables except ApplyCalibration and
// ApplyBatch. Analysis with too little data yields empty results, not errors.
package learning

import (
    "context"
    "fmt"
    "time"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/platform/logger"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

type Options struct {
    MinSamples       int
    MaxStepPct       float64
    RiskBufferMinPct float64
    RiskBufferMaxPct float64
    // Now is the clock; tests pin it.
    Now func() time.Time
}

func DefaultOptions() Options {
    return Options{MinSamples: 5, MaxStepPct: 20, RiskBufferMinPct: 3, RiskBufferMaxPct: 25}
}

type Service struct {
    tables   *reftables.Store
    feedback ports.FeedbackRepository
    batches  ports.CalibrationRepository
    coeffs   ports.ReferenceTableRepository
    opts     Options
    locks    *keyLock
    log      *logger.Logger
}

func New(tables *reftables.Store, feedback ports.FeedbackRepository, batches ports.CalibrationRepository, coeffs ports.ReferenceTableRepository, opts Options, log *logger.Logger) *Service {
    d := DefaultOptions()
    if opts.MinSamples < 1 {
        opts.MinSamples = d.MinSamples
    }
    if opts.MaxStepPct <= 0 {
        opts.MaxStepPct = d.MaxStepPct
    }
    if opts.RiskBufferMaxPct <= 0 {
        opts.RiskBufferMaxPct = d.RiskBufferMaxPct
    }
    if opts.RiskBufferMinPct < 0 || opts.RiskBufferMinPct > opts.RiskBufferMaxPct {
        opts.RiskBufferMinPct = d.RiskBufferMinPct
    }
    if opts.Now == nil {
        opts.Now = time.Now
    }
    if log == nil {
        log = logger.Nop()
    }
    return &Service{
        tables:   tables,
        feedback: feedback,
        batches:  batches,
        coeffs:   coeffs,
        opts:     opts,
        locks:    newKeyLock(),
        log:      log,
    }
}

// RecordFeedback validates an outcome, derives its variance fields and
// stores it. Recording the same calculation again replaces the earlier record.
func (s *Service) RecordFeedback(ctx context.Context, fb domain.CalculationFeedback) (domain.CalculationFeedback, error) {
    if err := validateFeedback(fb); err != nil {
        return fb, err
    }
    if fb.RecordedAt.IsZero() {
        fb.RecordedAt = s.opts.Now().UTC()
    }
    fb.HoursVariancePercent = variancePct(fb.EstimatedHours, fb.ActualHours)
    fb.MaterialVariancePercent = variancePct(fb.EstimatedMaterialCost, fb.ActualMaterialCost)
    if err := s.feedback.UpsertFeedback(ctx, fb); err != nil {
        return fb, fmt.Errorf("record feedback %s: %w", fb.CalculationID, err)
    }
    s.log.Debug("feedback recorded", "calculation_id", fb.CalculationID, "hours_variance_pct", fb.HoursVariancePercent)
    return fb, nil
}

func validateFeedback(fb domain.CalculationFeedback) error {
    if fb.CalculationID == "" {
        return &domain.ValidationError{Field: "calculation_id", Message: "is required"}
    }
    nonNeg := []struct {
        field string
        v     float64
    }{
        {"estimated_hours", fb.EstimatedHours},
        {"actual_hours", fb.ActualHours},
        {"estimated_material_cost", fb.EstimatedMaterialCost},
        {"actual_material_cost", fb.ActualMaterialCost},
        {"complexity_score", fb.ComplexityScore},
    }
    for _, n := range nonNeg {
        if n.v < 0 {
            return &domain.ValidationError{Field: n.field, Message: "must not be negative"}
        }
    }
    if fb.CustomerSatisfaction < 0 || fb.CustomerSatisfaction > 5 {
        return &domain.ValidationError{Field: "customer_satisfaction", Message: "must be between 0 and 5"}
    }
    for i, c := range fb.Components {
        if c.Code == "" {
            return &domain.ValidationError{Field: fmt.Sprintf("components[%d].code", i), Message: "is required"}
        }
        if c.Quantity < 0 {
            return &domain.ValidationError{Field: fmt.Sprintf("components[%d].quantity", i), Message: "must not be negative"}
        }
    }
    return nil
}

// variancePct is (actual - estimated) / estimated in percent; zero when
// there was no estimate to compare against.
func variancePct(estimated, actual float64) float64 {
    if estimated <= 0 {
        return 0
    }
    return (actual - estimated) / estimated * 100
}

func (s *Service) allFeedback(ctx context.Context) ([]domain.CalculationFeedback, error) {
    return s.feedbackBetween(ctx, time.Time{}, time.Time{})
}

func (s *Service) feedbackBetween(ctx context.Context, from, to time.Time) ([]domain.CalculationFeedback, error) {
    fbs, err := s.feedback.ListFeedback(ctx, from, to)
    if err != nil {
        return nil, fmt.Errorf("list feedback: %w", err)
    }
    return fbs, nil
}

// hasHours reports whether a record has both an estimate and an actual
// for hours.
func hasHours(fb domain.CalculationFeedback) bool {
    return fb.EstimatedHours > 0 && fb.ActualHours > 0
}

var _ ports.Calibrator = (*Service)(nil)
