package estimator

import (
    "context"
    "fmt"
    "math"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

const (
    RiskSourceOverride = "override"
    RiskSourceLearning = "learning"
    RiskSourceTable    = "table"
)

// assessRisk scores project complexity on 1..10 from what the takeoff and
// the panel show.
func assessRisk(t *reftables.Tables, req domain.EstimateRequest, q *quantities, panel domain.PanelConfiguration, cc domain.ComplianceCheckResult) domain.RiskAnalysis {
    score := 1.0
    var factors []string

    if q.points > 0 {
        s := math.Min(float64(q.points)/40, 3)
        score += s
        factors = append(factors, fmt.Sprintf("%d installation points", q.points))
    }
    if q.wetRooms > 0 {
        score += math.Min(0.5*float64(q.wetRooms), 1.5)
        factors = append(factors, fmt.Sprintf("%d wet rooms", q.wetRooms))
    }
    if req.IsRenovation {
        score += 1.5
        factors = append(factors, "renovation")
    }
    if q.heavy {
        score++
        factors = append(factors, "EV charger or heat pump")
    }
    if len(panel.Circuits) > 12 {
        score++
        factors = append(factors, fmt.Sprintf("%d circuits", len(panel.Circuits)))
    }
    for _, fd := range cc.Findings {
        if fd.Severity == domain.SeverityCritical {
            score++
            factors = append(factors, "critical compliance findings")
            break
        }
    }
    score = math.Min(math.Max(score, 1), 10)

    bucket, _ := t.BucketFor(score)
    return domain.RiskAnalysis{
        ComplexityScore:   math.Round(score*100) / 100,
        Bucket:            bucket.Name,
        RiskBufferPercent: bucket.DefaultBufferPct,
        RiskBufferSource:  RiskSourceTable,
        Factors:           factors,
    }
}

// chooseRiskBuffer applies the precedence override → learning → table. The
// advisor's percent is used whenever it answers: without history it is the
// table default lifted to the lower bucket's value, which keeps buffers
// monotone in complexity. The source says which of the two it was. A failing
// advisor degrades to the table value and yields a warning.
func chooseRiskBuffer(ctx context.Context, o *domain.CalibrationOverride, advisor ports.RiskAdvisor, ra *domain.RiskAnalysis) string {
    if o != nil && o.RiskBufferPercent != nil {
        ra.RiskBufferPercent = *o.RiskBufferPercent
        ra.RiskBufferSource = RiskSourceOverride
        return ""
    }
    if advisor == nil {
        return ""
    }
    s, err := advisor.GetSuggestedRiskBuffer(ctx, ra.ComplexityScore)
    if err != nil {
        return fmt.Sprintf("risk buffer suggestion unavailable (%v); table value used", err)
    }
    ra.RiskBufferPercent = s.Percent
    if s.FromHistory {
        ra.RiskBufferSource = RiskSourceLearning
    }
    return ""
}
