package electrical

import (
    "fmt"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

func codes(fs []domain.Finding) []string {
    out := make([]string, 0, len(fs))
    for _, f := range fs {
        out = append(out, f.Code)
    }
    return out
}

func TestComplianceWetAreaWithoutRCD(t *testing.T) {
    c := newCalc(t)
    rooms, loads := bathroomLoads()
    panel := c.ConfigurePanelFromLoads(loads, rooms, domain.PhaseSingle, false, PanelOptions{})

    panel.RcdGroups = nil
    for i := range panel.Circuits {
        panel.Circuits[i].RcdGroupID = ""
    }
    res := c.CheckCompliance(panel)

    assert.False(t, res.Compliant)
    assert.Equal(t, []string{CodeRCDWetArea, CodeRCDWetArea, CodeRCDSocket}, codes(res.Findings))
    assert.Equal(t, "C1", res.Findings[0].RelatedCircuitID)
    assert.Equal(t, domain.SeverityCritical, res.Findings[0].Severity)
    assert.Equal(t, "C2", res.Findings[2].RelatedCircuitID)
}

func TestComplianceDoesNotMutateInput(t *testing.T) {
    c := newCalc(t)
    rooms, loads := bathroomLoads()
    panel := c.ConfigurePanelFromLoads(loads, rooms, domain.PhaseSingle, false, PanelOptions{})
    panel.RcdGroups = nil

    before := fmt.Sprintf("%+v", panel)
    _ = c.CheckCompliance(panel)
    assert.Equal(t, before, fmt.Sprintf("%+v", panel))
}

func TestComplianceVoltageDropRules(t *testing.T) {
    c := newCalc(t)
    panel := domain.PanelConfiguration{
        Phase: domain.PhaseSingle,
        Circuits: []domain.Circuit{
            {ID: "C1", CircuitType: domain.CircuitOther, BreakerRatingA: 10},
            {ID: "C2", CircuitType: domain.CircuitLighting, BreakerRatingA: 10},
        },
        Cables: []domain.CableSizingResult{
            {CircuitID: "C1", CrossSectionMM2: 1.5, AmpacityA: 19.5, VoltageDropPercent: 6.1, VoltageDropLimitPercent: 5},
            {CircuitID: "C2", CrossSectionMM2: 1.5, AmpacityA: 19.5, VoltageDropPercent: 2.8, VoltageDropLimitPercent: 3},
        },
    }
    res := c.CheckCompliance(panel)

    require.Len(t, res.Findings, 2)
    assert.Equal(t, CodeVoltageDrop, res.Findings[0].Code)
    assert.Equal(t, domain.SeverityCritical, res.Findings[0].Severity)
    assert.Equal(t, CodeVoltageDropMargin, res.Findings[1].Code)
    assert.Equal(t, domain.SeverityWarning, res.Findings[1].Severity)
    assert.False(t, res.Compliant)
}

func TestComplianceBreakerCableAndExhaustion(t *testing.T) {
    c := newCalc(t)
    panel := domain.PanelConfiguration{
        Phase:    domain.PhaseSingle,
        Circuits: []domain.Circuit{{ID: "C1", CircuitType: domain.CircuitPower, BreakerRatingA: 63}},
        Cables: []domain.CableSizingResult{
            {CircuitID: "C1", CrossSectionMM2: 50, AmpacityA: 50, VoltageDropPercent: 1, VoltageDropLimitPercent: 5, Exhausted: true},
        },
    }
    res := c.CheckCompliance(panel)
    assert.Equal(t, []string{CodeCableExhausted, CodeBreakerCable}, codes(res.Findings))
    assert.False(t, res.Compliant)
}

func TestComplianceMainBreaker(t *testing.T) {
    c := newCalc(t)

    under := c.CheckCompliance(domain.PanelConfiguration{Phase: domain.PhaseSingle, DemandLoadW: 9200, MainBreakerRatingA: 35})
    assert.Equal(t, []string{CodeMainBreakerCapacity}, codes(under.Findings))
    assert.False(t, under.Compliant)

    // 8000 W single-phase is 34.8 A; 35 A leaves under 1 % headroom.
    tight := c.CheckCompliance(domain.PanelConfiguration{Phase: domain.PhaseSingle, DemandLoadW: 8000, MainBreakerRatingA: 35})
    assert.Equal(t, []string{CodeMainBreakerHeadroom}, codes(tight.Findings))
    assert.True(t, tight.Compliant)
}

func TestComplianceOversizedRCDGroup(t *testing.T) {
    c := newCalc(t)
    g := domain.RcdGroup{ID: "RCD1"}
    for i := 1; i <= 10; i++ {
        g.CircuitIDs = append(g.CircuitIDs, fmt.Sprintf("C%d", i))
    }
    res := c.CheckCompliance(domain.PanelConfiguration{Phase: domain.PhaseSingle, RcdGroups: []domain.RcdGroup{g}})
    assert.Equal(t, []string{CodeRCDGroupSize}, codes(res.Findings))
    assert.True(t, res.Compliant)
}

func TestComplianceMissingCable(t *testing.T) {
    c := newCalc(t)
    res := c.CheckCompliance(domain.PanelConfiguration{
        Phase:    domain.PhaseSingle,
        Circuits: []domain.Circuit{{ID: "C1", CircuitType: domain.CircuitLighting, BreakerRatingA: 10}},
    })
    assert.Equal(t, []string{CodeCableMissing}, codes(res.Findings))
}

func TestComplianceWithSeparateCables(t *testing.T) {
    c := newCalc(t)
    rooms, loads := bathroomLoads()
    full := c.ConfigurePanelFromLoads(loads, rooms, domain.PhaseSingle, false, PanelOptions{})
    require.NotEmpty(t, full.Cables)

    stripped := full
    stripped.Cables = nil
    missing := 0
    for _, f := range c.CheckCompliance(stripped).Findings {
        if f.Code == CodeCableMissing {
            missing++
        }
    }
    assert.Equal(t, len(full.Circuits), missing)
    assert.NotContains(t, codes(c.CheckCompliance(full).Findings), CodeCableMissing)

    assert.Equal(t, c.CheckCompliance(full), c.CheckComplianceWithCables(stripped, full.Cables))
    assert.Nil(t, stripped.Cables)
}
