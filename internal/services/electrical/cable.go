package electrical

import (
    "fmt"
    "math"
    "strings"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// CalculateCableSize selects the smallest standard conductor that carries the
// design current and keeps the voltage drop under the circuit's limit.
// Inputs are assumed valid (see domain.ValidateCableInput).
func (c *Calculator) CalculateCableSize(in domain.CableSizingInput) domain.CableSizingResult {
    t := c.tables
    phase := in.Phase
    if phase != domain.PhaseThree {
        phase = domain.PhaseSingle
    }
    pf := in.PowerFactor
    if pf <= 0 || pf > 1 {
        pf = t.PowerFactor
    }
    phaseFactor := 1.0
    if phase == domain.PhaseThree {
        phaseFactor = math.Sqrt(3)
    }

    current := in.PowerW / (in.Voltage * pf * phaseFactor)
    required := math.Max(current, in.MinAmpacityA)
    limit := c.VoltageDropLimit(in.CircuitType)
    minMM2 := t.Rule(in.CircuitType).MinCrossSectionMM2
    rho := t.Resistivity[t.ConductorMaterial]

    derate := 1.0
    if in.AmbientTemperatureC != nil {
        derate = t.TemperatureFactor(*in.AmbientTemperatureC)
    }

    res := domain.CableSizingResult{
        CircuitID:               in.CircuitID,
        ConductorMaterial:       t.ConductorMaterial,
        DesignCurrentA:          current,
        VoltageDropLimitPercent: limit,
    }
    var notes []string

    tbl, method, known := t.AmpacityFor(in.InstallationMethod)
    if !known && in.InstallationMethod != "" {
        notes = append(notes, fmt.Sprintf("installation method %q is not tabulated, sized as %s", in.InstallationMethod, method))
    }
    if len(tbl.Sizes) == 0 {
        res.Exhausted = true
        res.Note = strings.Join(append(notes, "no ampacity table available"), "; ")
        return res
    }

    pick := func(i int) {
        row := tbl.Sizes[i]
        res.CrossSectionMM2 = row.MM2
        res.AmpacityA = row.For(phase) * derate
        res.VoltageDropPercent = voltageDrop(phase, rho, in.LengthM, current, row.MM2, in.Voltage)
        res.MarginToLimitPercent = limit - res.VoltageDropPercent
    }

    start := -1
    for i, row := range tbl.Sizes {
        if row.MM2 < minMM2 {
            continue
        }
        if row.For(phase)*derate >= required {
            start = i
            break
        }
    }
    if start < 0 {
        pick(len(tbl.Sizes) - 1)
        res.Exhausted = true
        notes = append(notes, fmt.Sprintf("no tabulated size carries %.1f A (largest %g mm² carries %.1f A)",
            required, res.CrossSectionMM2, res.AmpacityA))
        res.Note = strings.Join(notes, "; ")
        return res
    }

    for i := start; i < len(tbl.Sizes); i++ {
        pick(i)
        if res.VoltageDropPercent <= limit {
            res.Compliant = true
            break
        }
    }
    if !res.Compliant {
        notes = append(notes, fmt.Sprintf("voltage drop %.1f%% exceeds %.1f%% even at %g mm²",
            res.VoltageDropPercent, limit, res.CrossSectionMM2))
    }
    res.Note = strings.Join(notes, "; ")
    return res
}

// voltageDrop in percent of the nominal voltage: 2ρLI/(AV) for single-phase,
// √3ρLI/(AV) for three-phase line-to-line.
func voltageDrop(phase domain.PhaseType, rho, lengthM, current, mm2, voltage float64) float64 {
    k := 2.0
    if phase == domain.PhaseThree {
        k = math.Sqrt(3)
    }
    return k * rho * lengthM * current / (mm2 * voltage) * 100
}
