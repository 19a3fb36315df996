package learning

import (
    "context"
    "fmt"
    "math"
    "sort"

    "github.com/google/uuid"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// AnalyzeComponentCalibration proposes new install minutes for every
// component seen in at least MinSamples comparable projects. A project's
// hours variance counts once for each distinct component it contains.
func (s *Service) AnalyzeComponentCalibration(ctx context.Context) ([]domain.ComponentCalibration, error) {
    fbs, err := s.allFeedback(ctx)
    if err != nil {
        return nil, err
    }
    t := s.tables.Snapshot()

    samples := map[string][]float64{}
    for _, fb := range fbs {
        if !hasHours(fb) {
            continue
        }
        seen := map[string]bool{}
        for _, c := range fb.Components {
            if seen[c.Code] || c.Quantity == 0 {
                continue
            }
            seen[c.Code] = true
            samples[c.Code] = append(samples[c.Code], fb.HoursVariancePercent)
        }
    }

    out := []domain.ComponentCalibration{}
    for code, vs := range samples {
        comp, ok := t.Component(code)
        if !ok || len(vs) < s.opts.MinSamples {
            continue
        }
        m := mean(vs)
        proposed, clamped := s.step(comp.TimeMinutes, m)
        out = append(out, domain.ComponentCalibration{
            ComponentCode:       code,
            Samples:             len(vs),
            CurrentMinutes:      comp.TimeMinutes,
            MeanVariancePercent: m,
            ProposedMinutes:     proposed,
            ChangePercent:       changePct(comp.TimeMinutes, proposed),
            Clamped:             clamped,
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ComponentCode < out[j].ComponentCode })
    return out, nil
}

// AnalyzeBuildingProfiles proposes building multipliers from how far each
// building type's mean hours variance sits from the corpus mean.
func (s *Service) AnalyzeBuildingProfiles(ctx context.Context) ([]domain.BuildingProfileCalibration, error) {
    fbs, err := s.allFeedback(ctx)
    if err != nil {
        return nil, err
    }
    t := s.tables.Snapshot()

    var all []float64
    byType := map[string][]float64{}
    for _, fb := range fbs {
        if !hasHours(fb) {
            continue
        }
        all = append(all, fb.HoursVariancePercent)
        if fb.BuildingType != "" {
            byType[fb.BuildingType] = append(byType[fb.BuildingType], fb.HoursVariancePercent)
        }
    }
    corpus := mean(all)

    out := []domain.BuildingProfileCalibration{}
    for bt, vs := range byType {
        if len(vs) < s.opts.MinSamples {
            continue
        }
        current := t.BuildingMultiplier(bt)
        residual := mean(vs) - corpus
        proposed, clamped := s.step(current, residual)
        out = append(out, domain.BuildingProfileCalibration{
            BuildingType:        bt,
            Samples:             len(vs),
            CurrentMultiplier:   current,
            ResidualVariancePct: residual,
            ProposedMultiplier:  proposed,
            ChangePercent:       changePct(current, proposed),
            Clamped:             clamped,
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].BuildingType < out[j].BuildingType })
    return out, nil
}

// AutoCalibrate runs both analyses and returns the non-zero changes as a
// proposed batch. Nothing is stored or applied.
func (s *Service) AutoCalibrate(ctx context.Context) (domain.CalibrationBatch, error) {
    comps, err := s.AnalyzeComponentCalibration(ctx)
    if err != nil {
        return domain.CalibrationBatch{}, err
    }
    profiles, err := s.AnalyzeBuildingProfiles(ctx)
    if err != nil {
        return domain.CalibrationBatch{}, err
    }

    adjs := []domain.Adjustment{}
    for _, c := range comps {
        if c.ProposedMinutes == c.CurrentMinutes {
            continue
        }
        adjs = append(adjs, domain.Adjustment{
            CoefficientKey: domain.CoefficientKey{Kind: domain.KindComponentTime, Key: c.ComponentCode},
            Previous:       c.CurrentMinutes,
            Proposed:       c.ProposedMinutes,
            ChangePercent:  c.ChangePercent,
            SampleCount:    c.Samples,
            Reason:         reason("mean hours variance", c.MeanVariancePercent, c.Samples, c.Clamped),
        })
    }
    for _, p := range profiles {
        if p.ProposedMultiplier == p.CurrentMultiplier {
            continue
        }
        adjs = append(adjs, domain.Adjustment{
            CoefficientKey: domain.CoefficientKey{Kind: domain.KindBuildingMultiplier, Key: p.BuildingType},
            Previous:       p.CurrentMultiplier,
            Proposed:       p.ProposedMultiplier,
            ChangePercent:  p.ChangePercent,
            SampleCount:    p.Samples,
            Reason:         reason("residual hours variance", p.ResidualVariancePct, p.Samples, p.Clamped),
        })
    }
    sort.Slice(adjs, func(i, j int) bool { return adjs[i].String() < adjs[j].String() })

    return domain.CalibrationBatch{
        ID:          uuid.NewString(),
        Status:      domain.BatchProposed,
        CreatedAt:   s.opts.Now().UTC(),
        Adjustments: adjs,
    }, nil
}

// ProposeCalibration is AutoCalibrate plus persistence. A batch without
// adjustments is returned but not stored.
func (s *Service) ProposeCalibration(ctx context.Context) (domain.CalibrationBatch, error) {
    b, err := s.AutoCalibrate(ctx)
    if err != nil {
        return b, err
    }
    if len(b.Adjustments) == 0 {
        s.log.Info("calibration: nothing to propose")
        return b, nil
    }
    if err := s.batches.SaveBatch(ctx, b); err != nil {
        return b, fmt.Errorf("save calibration batch: %w", err)
    }
    s.log.Info("calibration proposed", "batch_id", b.ID, "adjustments", len(b.Adjustments))
    return b, nil
}

func (s *Service) ListBatches(ctx context.Context) ([]domain.CalibrationBatch, error) {
    return s.batches.ListBatches(ctx)
}

func (s *Service) GetBatch(ctx context.Context, id string) (domain.CalibrationBatch, error) {
    return s.batches.GetBatch(ctx, id)
}

// step moves current by variancePct percent, bounded to ±MaxStepPct of
// current, rounded to two decimals.
func (s *Service) step(current, variancePct float64) (float64, bool) {
    change := variancePct
    clamped := false
    if change > s.opts.MaxStepPct {
        change, clamped = s.opts.MaxStepPct, true
    } else if change < -s.opts.MaxStepPct {
        change, clamped = -s.opts.MaxStepPct, true
    }
    return round2(current * (1 + change/100)), clamped
}

func changePct(from, to float64) float64 {
    if from == 0 {
        return 0
    }
    return (to - from) / from * 100
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func reason(what string, pct float64, n int, clamped bool) string {
    r := fmt.Sprintf("%s %+.1f%% over %d projects", what, pct, n)
    if clamped {
        r += ", step clamped"
    }
    return r
}
