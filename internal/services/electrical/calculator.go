// Package electrical implements the code-compliance calculators: cable
// sizing, load analysis, panel configuration and the compliance check.
//
// Every method is a pure function of its arguments and the reference-table
// snapshot the Calculator was built with, so one Calculator can serve
// concurrent requests.
package electrical

import (
    "fmt"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

// Limits are the configurable code limits.
type Limits struct {
    LightingVoltageDropPct   float64
    GeneralVoltageDropPct    float64
    VoltageDropWarnMarginPct float64
    MaxCircuitsPerRCD        int
    MainBreakerHeadroom      float64
    MinMainHeadroomPct       float64
    ExistingSupplyA          float64
    UnknownDiversityFactor   float64
    StrictDiversityGroups    bool
}

func DefaultLimits() Limits {
    return Limits{
        LightingVoltageDropPct:   3,
        GeneralVoltageDropPct:    5,
        VoltageDropWarnMarginPct: 0.5,
        MaxCircuitsPerRCD:        8,
        MainBreakerHeadroom:      1.2,
        MinMainHeadroomPct:       10,
        ExistingSupplyA:          25,
        UnknownDiversityFactor:   1.0,
    }
}

type Calculator struct {
    tables *reftables.Tables
    limits Limits
}

func New(tables *reftables.Tables, limits Limits) *Calculator {
    d := DefaultLimits()
    if limits.LightingVoltageDropPct <= 0 { limits.LightingVoltageDropPct = d.LightingVoltageDropPct }
    if limits.GeneralVoltageDropPct <= 0 { limits.GeneralVoltageDropPct = d.GeneralVoltageDropPct }
    if limits.VoltageDropWarnMarginPct <= 0 { limits.VoltageDropWarnMarginPct = d.VoltageDropWarnMarginPct }
    if limits.MaxCircuitsPerRCD < 1 { limits.MaxCircuitsPerRCD = d.MaxCircuitsPerRCD }
    if limits.MainBreakerHeadroom < 1 { limits.MainBreakerHeadroom = d.MainBreakerHeadroom }
    if limits.MinMainHeadroomPct <= 0 { limits.MinMainHeadroomPct = d.MinMainHeadroomPct }
    if limits.ExistingSupplyA <= 0 { limits.ExistingSupplyA = d.ExistingSupplyA }
    if limits.UnknownDiversityFactor <= 0 || limits.UnknownDiversityFactor > 1 {
        limits.UnknownDiversityFactor = d.UnknownDiversityFactor
    }
    return &Calculator{tables: tables, limits: limits}
}

func (c *Calculator) Tables() *reftables.Tables { return c.tables }
func (c *Calculator) Limits() Limits            { return c.limits }

// VoltageDropLimit is the permitted drop for a circuit class, in percent.
func (c *Calculator) VoltageDropLimit(ct domain.CircuitType) float64 {
    if ct == domain.CircuitLighting {
        return c.limits.LightingVoltageDropPct
    }
    return c.limits.GeneralVoltageDropPct
}

// ValidateLoads rejects loads the calculators cannot interpret. Unknown
// diversity groups only fail in strict mode; otherwise they get the
// configured fallback factor.
func (c *Calculator) ValidateLoads(loads []domain.LoadEntry, buildingType string) error {
    for i, l := range loads {
        field := fmt.Sprintf("loads[%d]", i)
        if l.PowerW < 0 {
            return &domain.ValidationError{Field: field + ".power_watts", Message: "must not be negative"}
        }
        if l.PhaseRequirement != 0 && l.PhaseRequirement != 1 && l.PhaseRequirement != 3 {
            return &domain.ValidationError{Field: field + ".phase_requirement", Message: "must be 1 or 3"}
        }
        if l.CircuitType != "" && !l.CircuitType.Valid() {
            return &domain.ValidationError{Field: field + ".circuit_type", Message: fmt.Sprintf("unknown circuit type %q", l.CircuitType)}
        }
        if c.limits.StrictDiversityGroups {
            if _, ok := c.tables.DiversityFactor(buildingType, l.Group()); !ok {
                return &domain.ValidationError{Field: field + ".diversity_group", Message: fmt.Sprintf("unknown diversity group %q", l.Group())}
            }
        }
    }
    return nil
}

// designCurrent is I = P / (V × pf × phase factor).
func (c *Calculator) designCurrent(powerW float64, phase domain.PhaseType) float64 {
    v, k := c.tables.SystemVoltage(phase)
    return powerW / (v * c.tables.PowerFactor * k)
}
