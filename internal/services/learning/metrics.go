package learning

import (
    "context"
    "math"
    "time"

    "gonum.org/v1/gonum/stat"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

type ageBucket struct {
    label  string
    maxAge time.Duration // 0 is open-ended
}

const day = 24 * time.Hour

var ageBuckets = []ageBucket{
    {"0-30d", 30 * day},
    {"31-90d", 90 * day},
    {"91-365d", 365 * day},
    {"older", 0},
}

// AnalyzeLearningMetrics summarizes accuracy over all feedback and per
// recency bucket. Buckets without samples are still listed.
func (s *Service) AnalyzeLearningMetrics(ctx context.Context) (domain.LearningMetrics, error) {
    return s.AnalyzeLearningMetricsBetween(ctx, time.Time{}, time.Time{})
}

// AnalyzeLearningMetricsBetween is AnalyzeLearningMetrics restricted to
// feedback recorded in [from, to). A zero bound is open.
func (s *Service) AnalyzeLearningMetricsBetween(ctx context.Context, from, to time.Time) (domain.LearningMetrics, error) {
    if !from.IsZero() && !to.IsZero() && !from.Before(to) {
        return domain.LearningMetrics{}, &domain.ValidationError{Field: "from", Message: "must be before to"}
    }
    fbs, err := s.feedbackBetween(ctx, from, to)
    if err != nil {
        return domain.LearningMetrics{}, err
    }
    now := s.opts.Now().UTC()

    grouped := make([][]domain.CalculationFeedback, len(ageBuckets))
    for _, fb := range fbs {
        age := now.Sub(fb.RecordedAt)
        for i, b := range ageBuckets {
            if b.maxAge == 0 || age <= b.maxAge {
                grouped[i] = append(grouped[i], fb)
                break
            }
        }
    }

    m := domain.LearningMetrics{GeneratedAt: now, Overall: summarize("all", fbs)}
    if !from.IsZero() {
        f := from.UTC()
        m.From = &f
    }
    if !to.IsZero() {
        t := to.UTC()
        m.To = &t
    }
    for i, b := range ageBuckets {
        m.Buckets = append(m.Buckets, summarize(b.label, grouped[i]))
    }
    return m, nil
}

func summarize(label string, fbs []domain.CalculationFeedback) domain.AccuracyBucket {
    b := domain.AccuracyBucket{Label: label, Samples: len(fbs)}
    if len(fbs) == 0 {
        return b
    }
    var hoursAPE, materialAPE, satisfaction, hoursVar []float64
    accepted, profitable := 0, 0
    for _, fb := range fbs {
        if fb.ActualHours > 0 {
            hoursAPE = append(hoursAPE, math.Abs(fb.ActualHours-fb.EstimatedHours)/fb.ActualHours*100)
        }
        if fb.ActualMaterialCost > 0 {
            materialAPE = append(materialAPE, math.Abs(fb.ActualMaterialCost-fb.EstimatedMaterialCost)/fb.ActualMaterialCost*100)
        }
        if fb.CustomerSatisfaction > 0 {
            satisfaction = append(satisfaction, float64(fb.CustomerSatisfaction))
        }
        if hasHours(fb) {
            hoursVar = append(hoursVar, fb.HoursVariancePercent)
        }
        if fb.OfferAccepted {
            accepted++
            if fb.ProjectProfitable {
                profitable++
            }
        }
    }
    b.HoursMAPE = mean(hoursAPE)
    b.MaterialMAPE = mean(materialAPE)
    b.AvgSatisfaction = mean(satisfaction)
    b.MeanHoursVariance = mean(hoursVar)
    b.AcceptanceRate = float64(accepted) / float64(len(fbs))
    if accepted > 0 {
        b.ProfitabilityRate = float64(profitable) / float64(accepted)
    }
    return b
}

func mean(xs []float64) float64 {
    if len(xs) == 0 {
        return 0
    }
    return stat.Mean(xs, nil)
}

// meanStdDev is the sample mean and standard deviation; a single sample has
// no spread.
func meanStdDev(xs []float64) (float64, float64) {
    switch len(xs) {
    case 0:
        return 0, 0
    case 1:
        return xs[0], 0
    }
    return stat.MeanStdDev(xs, nil)
}
