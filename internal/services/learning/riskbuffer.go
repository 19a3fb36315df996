package learning

import (
    "context"
    "math"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// GetSuggestedRiskBuffer returns the buffer for the complexity bucket the
// score falls in. A bucket with at least MinSamples comparable projects uses
// mean overrun plus half a standard deviation; thinner buckets keep their
// table default. Suggestions never decrease with complexity and stay within
// [RiskBufferMinPct, RiskBufferMaxPct].
func (s *Service) GetSuggestedRiskBuffer(ctx context.Context, complexity float64) (domain.RiskBufferSuggestion, error) {
    all, err := s.RiskBuffers(ctx)
    if err != nil {
        return domain.RiskBufferSuggestion{}, err
    }
    _, idx := s.tables.Snapshot().BucketFor(complexity)
    if idx < 0 || idx >= len(all) {
        return domain.RiskBufferSuggestion{ComplexityScore: complexity, Bucket: "unknown", Percent: s.opts.RiskBufferMinPct}, nil
    }
    sug := all[idx]
    sug.ComplexityScore = complexity
    return sug, nil
}

// RiskBuffers returns one suggestion per complexity bucket, lowest first.
func (s *Service) RiskBuffers(ctx context.Context) ([]domain.RiskBufferSuggestion, error) {
    fbs, err := s.allFeedback(ctx)
    if err != nil {
        return nil, err
    }
    t := s.tables.Snapshot()

    overruns := make([][]float64, len(t.RiskBuckets))
    for _, fb := range fbs {
        if !hasHours(fb) {
            continue
        }
        if _, i := t.BucketFor(fb.ComplexityScore); i >= 0 {
            overruns[i] = append(overruns[i], fb.HoursVariancePercent)
        }
    }

    out := make([]domain.RiskBufferSuggestion, len(t.RiskBuckets))
    floor := s.opts.RiskBufferMinPct
    for i, b := range t.RiskBuckets {
        sug := domain.RiskBufferSuggestion{
            ComplexityScore: b.MaxScore,
            Bucket:          b.Name,
            Percent:         b.DefaultBufferPct,
            Samples:         len(overruns[i]),
        }
        if sug.Samples >= s.opts.MinSamples {
            m, sd := meanStdDev(overruns[i])
            sug.Percent = math.Max(m, 0) + 0.5*sd
            sug.FromHistory = true
        }
        sug.Percent = math.Min(math.Max(sug.Percent, floor), s.opts.RiskBufferMaxPct)
        sug.Percent = round2(sug.Percent)
        floor = sug.Percent
        out[i] = sug
    }
    return out, nil
}
