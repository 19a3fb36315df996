package electrical

import (
    "fmt"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

const (
    CodeRCDWetArea          = "RCD_WET_AREA"
    CodeRCDSocket           = "RCD_SOCKET"
    CodeVoltageDrop         = "VOLTAGE_DROP"
    CodeVoltageDropMargin   = "VOLTAGE_DROP_MARGIN"
    CodeBreakerCable        = "BREAKER_CABLE_COORDINATION"
    CodeCableExhausted      = "CABLE_SIZE_EXHAUSTED"
    CodeCableMissing        = "CABLE_MISSING"
    CodeMainBreakerCapacity = "MAIN_BREAKER_CAPACITY"
    CodeMainBreakerHeadroom = "MAIN_BREAKER_HEADROOM"
    CodeRCDGroupSize        = "RCD_GROUP_SIZE"
    CodeSupplyUpgrade       = "SUPPLY_UPGRADE"
)

type checkContext struct {
    panel  domain.PanelConfiguration
    cables map[string]domain.CableSizingResult
    inRCD  map[string]bool
}

type circuitRule func(*Calculator, checkContext, domain.Circuit) []domain.Finding

// circuitRules run in this order; findings are grouped by rule, then by
// circuit.
var circuitRules = []circuitRule{
    checkWetAreaRCD,
    checkSocketRCD,
    checkCablePresent,
    checkCableExhausted,
    checkBreakerCable,
    checkVoltageDrop,
}

// CheckCompliance evaluates a panel against the code rules. It only reads
// its input. The result is compliant iff there is no critical finding.
//
// Cable sizing is read from panel.Cables, which ConfigurePanelFromLoads
// fills in. A circuit with no matching entry gets a CABLE_MISSING finding
// and the cable rules for it are skipped; use CheckComplianceWithCables to
// check a panel whose cables were sized separately.
func (c *Calculator) CheckCompliance(panel domain.PanelConfiguration) domain.ComplianceCheckResult {
    ctx := checkContext{
        panel:  panel,
        cables: make(map[string]domain.CableSizingResult, len(panel.Cables)),
        inRCD:  map[string]bool{},
    }
    for _, cb := range panel.Cables {
        ctx.cables[cb.CircuitID] = cb
    }
    for _, g := range panel.RcdGroups {
        for _, id := range g.CircuitIDs {
            ctx.inRCD[id] = true
        }
    }

    res := domain.ComplianceCheckResult{Findings: []domain.Finding{}}
    for _, rule := range circuitRules {
        for _, ci := range panel.Circuits {
            res.Findings = append(res.Findings, rule(c, ctx, ci)...)
        }
    }
    res.Findings = append(res.Findings, c.checkMainBreaker(panel)...)
    res.Findings = append(res.Findings, c.checkRCDGroups(panel)...)
    if panel.UpgradeRequired {
        res.Findings = append(res.Findings, domain.Finding{
            Code:     CodeSupplyUpgrade,
            Severity: domain.SeverityInfo,
            Message: fmt.Sprintf("main breaker %.0f A exceeds the existing %.0f A supply; a supply upgrade is needed",
                panel.MainBreakerRatingA, panel.ExistingSupplyA),
        })
    }

    res.Compliant = true
    for _, f := range res.Findings {
        if f.Severity == domain.SeverityCritical {
            res.Compliant = false
            break
        }
    }
    return res
}

// CheckComplianceWithCables checks panel with cables standing in for
// panel.Cables. The caller's panel is not modified.
func (c *Calculator) CheckComplianceWithCables(panel domain.PanelConfiguration, cables []domain.CableSizingResult) domain.ComplianceCheckResult {
    panel.Cables = cables
    return c.CheckCompliance(panel)
}

func checkWetAreaRCD(c *Calculator, ctx checkContext, ci domain.Circuit) []domain.Finding {
    tmpl, ok := c.tables.Room(ci.RoomType)
    if !ok || !tmpl.WetArea || ctx.inRCD[ci.ID] {
        return nil
    }
    return []domain.Finding{{
        Code:             CodeRCDWetArea,
        Severity:         domain.SeverityCritical,
        Message:          fmt.Sprintf("circuit %s serves a wet area (%s) without RCD protection", ci.ID, ci.RoomType),
        RelatedCircuitID: ci.ID,
    }}
}

func checkSocketRCD(_ *Calculator, ctx checkContext, ci domain.Circuit) []domain.Finding {
    if ci.CircuitType != domain.CircuitSocket || ctx.inRCD[ci.ID] {
        return nil
    }
    return []domain.Finding{{
        Code:             CodeRCDSocket,
        Severity:         domain.SeverityCritical,
        Message:          fmt.Sprintf("socket circuit %s is not RCD protected", ci.ID),
        RelatedCircuitID: ci.ID,
    }}
}

func checkCablePresent(_ *Calculator, ctx checkContext, ci domain.Circuit) []domain.Finding {
    if _, ok := ctx.cables[ci.ID]; ok {
        return nil
    }
    return []domain.Finding{{
        Code:             CodeCableMissing,
        Severity:         domain.SeverityWarning,
        Message:          fmt.Sprintf("circuit %s has no cable sizing", ci.ID),
        RelatedCircuitID: ci.ID,
    }}
}

func checkCableExhausted(_ *Calculator, ctx checkContext, ci domain.Circuit) []domain.Finding {
    cb, ok := ctx.cables[ci.ID]
    if !ok || !cb.Exhausted {
        return nil
    }
    return []domain.Finding{{
        Code:             CodeCableExhausted,
        Severity:         domain.SeverityCritical,
        Message:          fmt.Sprintf("circuit %s: no standard cable size carries the load (%s)", ci.ID, cb.Note),
        RelatedCircuitID: ci.ID,
    }}
}

func checkBreakerCable(_ *Calculator, ctx checkContext, ci domain.Circuit) []domain.Finding {
    cb, ok := ctx.cables[ci.ID]
    if !ok || cb.AmpacityA >= ci.BreakerRatingA {
        return nil
    }
    return []domain.Finding{{
        Code:     CodeBreakerCable,
        Severity: domain.SeverityCritical,
        Message: fmt.Sprintf("circuit %s: %.0f A breaker protects a %g mm² cable rated %.1f A",
            ci.ID, ci.BreakerRatingA, cb.CrossSectionMM2, cb.AmpacityA),
        RelatedCircuitID: ci.ID,
    }}
}

func checkVoltageDrop(c *Calculator, ctx checkContext, ci domain.Circuit) []domain.Finding {
    cb, ok := ctx.cables[ci.ID]
    if !ok {
        return nil
    }
    limit := cb.VoltageDropLimitPercent
    if limit <= 0 {
        limit = c.VoltageDropLimit(ci.CircuitType)
    }
    switch {
    case cb.VoltageDropPercent > limit:
        return []domain.Finding{{
            Code:             CodeVoltageDrop,
            Severity:         domain.SeverityCritical,
            Message:          fmt.Sprintf("circuit %s: voltage drop %.1f%% exceeds %.1f%%", ci.ID, cb.VoltageDropPercent, limit),
            RelatedCircuitID: ci.ID,
        }}
    case limit-cb.VoltageDropPercent < c.limits.VoltageDropWarnMarginPct:
        return []domain.Finding{{
            Code:             CodeVoltageDropMargin,
            Severity:         domain.SeverityWarning,
            Message:          fmt.Sprintf("circuit %s: voltage drop %.1f%% is close to the %.1f%% limit", ci.ID, cb.VoltageDropPercent, limit),
            RelatedCircuitID: ci.ID,
        }}
    }
    return nil
}

func (c *Calculator) checkMainBreaker(p domain.PanelConfiguration) []domain.Finding {
    if p.DemandLoadW <= 0 {
        return nil
    }
    current := c.designCurrent(p.DemandLoadW, p.Phase)
    if p.MainBreakerRatingA < current {
        return []domain.Finding{{
            Code:     CodeMainBreakerCapacity,
            Severity: domain.SeverityCritical,
            Message: fmt.Sprintf("main breaker %.0f A cannot carry the %.1f A demand",
                p.MainBreakerRatingA, current),
        }}
    }
    headroom := (p.MainBreakerRatingA - current) / current * 100
    if headroom < c.limits.MinMainHeadroomPct {
        return []domain.Finding{{
            Code:     CodeMainBreakerHeadroom,
            Severity: domain.SeverityWarning,
            Message:  fmt.Sprintf("main breaker headroom is %.1f%%, below %.0f%%", headroom, c.limits.MinMainHeadroomPct),
        }}
    }
    return nil
}

func (c *Calculator) checkRCDGroups(p domain.PanelConfiguration) []domain.Finding {
    var out []domain.Finding
    for _, g := range p.RcdGroups {
        if len(g.CircuitIDs) <= c.limits.MaxCircuitsPerRCD {
            continue
        }
        out = append(out, domain.Finding{
            Code:     CodeRCDGroupSize,
            Severity: domain.SeverityWarning,
            Message: fmt.Sprintf("%s protects %d circuits, more than %d",
                g.ID, len(g.CircuitIDs), c.limits.MaxCircuitsPerRCD),
        })
    }
    return out
}
