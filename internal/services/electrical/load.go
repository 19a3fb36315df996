package electrical

import (
    "fmt"
    "math"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

type groupAcc struct {
    connected float64
    effective float64
    factor    float64
    known     bool
}

// CalculateLoad aggregates connected and demand load, spreads single-phase
// loads over L1..L3 and sizes the main breaker.
//
// Demand per group is Σ(effective load) × diversity factor, where the
// effective load of a non-continuous consumer is scaled by its circuit's
// duty cycle. Loads with non-positive power contribute nothing.
func (c *Calculator) CalculateLoad(loads []domain.LoadEntry, phase domain.PhaseType, buildingType string) domain.LoadAnalysisResult {
    if phase != domain.PhaseThree {
        phase = domain.PhaseSingle
    }
    res := domain.LoadAnalysisResult{Phase: phase}

    groups := map[string]*groupAcc{}
    var order []string
    for _, l := range loads {
        if l.PowerW <= 0 {
            continue
        }
        g := l.Group()
        acc, ok := groups[g]
        if !ok {
            f, known := c.diversity(buildingType, g)
            acc = &groupAcc{factor: f, known: known}
            groups[g] = acc
            order = append(order, g)
        }
        acc.connected += l.PowerW
        acc.effective += c.effectiveLoad(l)
    }

    next := 0
    for _, l := range loads {
        if l.PowerW <= 0 {
            continue
        }
        demand := c.effectiveLoad(l) * groups[l.Group()].factor
        switch {
        case phase == domain.PhaseSingle:
            res.PhaseLoads.L1 += demand
        case l.PhaseRequirement == 3:
            res.PhaseLoads.L1 += demand / 3
            res.PhaseLoads.L2 += demand / 3
            res.PhaseLoads.L3 += demand / 3
        default:
            switch next % 3 {
            case 0:
                res.PhaseLoads.L1 += demand
            case 1:
                res.PhaseLoads.L2 += demand
            default:
                res.PhaseLoads.L3 += demand
            }
            next++
        }
    }

    for _, g := range order {
        acc := groups[g]
        demand := acc.effective * acc.factor
        res.TotalConnectedLoadW += acc.connected
        res.TotalDemandLoadW += demand
        res.Groups = append(res.Groups, domain.GroupLoad{
            Group:           g,
            ConnectedLoadW:  acc.connected,
            DemandLoadW:     demand,
            DiversityFactor: acc.factor,
            Known:           acc.known,
        })
        if !acc.known {
            res.UnknownGroups = append(res.UnknownGroups, g)
            res.Warnings = append(res.Warnings, fmt.Sprintf(
                "diversity group %q has no table entry, factor %.2f applied", g, acc.factor))
        }
    }

    res.ImbalancePercent = imbalance(phase, res.PhaseLoads)

    main, ok := c.mainBreaker(res.TotalDemandLoadW, phase)
    res.MainBreakerRatingA = main
    if !ok {
        res.Warnings = append(res.Warnings, fmt.Sprintf(
            "demand %.0f W exceeds the largest main breaker (%.0f A)", res.TotalDemandLoadW, main))
    }
    return res
}

func (c *Calculator) effectiveLoad(l domain.LoadEntry) float64 {
    if l.IsContinuous {
        return l.PowerW
    }
    return l.PowerW * c.tables.DutyCycleFactor(l.CircuitType)
}

// diversity resolves a group's factor and clamps it to (0,1].
func (c *Calculator) diversity(buildingType, group string) (float64, bool) {
    f, ok := c.tables.DiversityFactor(buildingType, group)
    if !ok {
        f = c.limits.UnknownDiversityFactor
    }
    if f <= 0 || f > 1 {
        f = 1
    }
    return f, ok
}

// mainBreaker picks the smallest main breaker carrying the demand current
// with headroom. Zero demand needs no breaker.
func (c *Calculator) mainBreaker(demandW float64, phase domain.PhaseType) (float64, bool) {
    if demandW <= 0 {
        return 0, true
    }
    required := c.designCurrent(demandW, phase) * c.limits.MainBreakerHeadroom
    return reftables.NextSize(c.tables.MainBreakerSizes, required)
}

// imbalance is (max - min) / mean over the three phases, in percent.
func imbalance(phase domain.PhaseType, p domain.PhaseLoads) float64 {
    if phase != domain.PhaseThree {
        return 0
    }
    avg := p.Sum() / 3
    if avg <= 0 {
        return 0
    }
    hi := math.Max(p.L1, math.Max(p.L2, p.L3))
    lo := math.Min(p.L1, math.Min(p.L2, p.L3))
    return (hi - lo) / avg * 100
}
