package electrical

import (
    "fmt"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
)

func newCalc(t *testing.T) *Calculator {
    t.Helper()
    return New(reftables.MustDefault(), DefaultLimits())
}

func ptr(v float64) *float64 { return &v }

func TestCableSizeSocketCircuit(t *testing.T) {
    c := newCalc(t)
    res := c.CalculateCableSize(domain.CableSizingInput{
        PowerW: 3000, LengthM: 20, Voltage: 230,
        InstallationMethod: "C", CircuitType: domain.CircuitSocket, Phase: domain.PhaseSingle,
    })

    assert.Equal(t, 2.5, res.CrossSectionMM2)
    assert.InDelta(t, 13.04, res.DesignCurrentA, 0.01)
    assert.InDelta(t, 2.04, res.VoltageDropPercent, 0.01)
    assert.True(t, res.Compliant)
    assert.Equal(t, 5.0, res.VoltageDropLimitPercent)
    assert.InDelta(t, 5-res.VoltageDropPercent, res.MarginToLimitPercent, 1e-9)
    assert.Empty(t, res.Note)
}

func TestCableSizeMonotoneInLength(t *testing.T) {
    c := newCalc(t)
    prev := 0.0
    for _, length := range []float64{5, 10, 20, 40, 60, 80, 120, 200} {
        res := c.CalculateCableSize(domain.CableSizingInput{
            PowerW: 3000, LengthM: length, Voltage: 230,
            InstallationMethod: "C", CircuitType: domain.CircuitSocket, Phase: domain.PhaseSingle,
        })
        assert.GreaterOrEqual(t, res.CrossSectionMM2, prev, "length %g", length)
        prev = res.CrossSectionMM2
    }
}

func TestCableSizeMonotoneInPower(t *testing.T) {
    c := newCalc(t)
    prev := 0.0
    for _, p := range []float64{500, 2000, 4000, 8000, 12000, 20000} {
        res := c.CalculateCableSize(domain.CableSizingInput{
            PowerW: p, LengthM: 25, Voltage: 230,
            CircuitType: domain.CircuitPower, Phase: domain.PhaseSingle,
        })
        assert.GreaterOrEqual(t, res.CrossSectionMM2, prev, "power %g", p)
        prev = res.CrossSectionMM2
    }
}

func TestCableSizeLightingUsesTighterLimit(t *testing.T) {
    c := newCalc(t)
    in := domain.CableSizingInput{
        PowerW: 2000, LengthM: 40, Voltage: 230, CircuitType: domain.CircuitLighting, Phase: domain.PhaseSingle,
    }
    light := c.CalculateCableSize(in)
    in.CircuitType = domain.CircuitOther
    other := c.CalculateCableSize(in)

    assert.Equal(t, 3.0, light.VoltageDropLimitPercent)
    assert.LessOrEqual(t, light.VoltageDropPercent, 3.0)
    assert.GreaterOrEqual(t, light.CrossSectionMM2, other.CrossSectionMM2)
}

func TestCableSizeVoltageDropNotMetAtLargestSize(t *testing.T) {
    c := newCalc(t)
    res := c.CalculateCableSize(domain.CableSizingInput{
        PowerW: 2000, LengthM: 1000, Voltage: 230, CircuitType: domain.CircuitLighting, Phase: domain.PhaseSingle,
    })
    assert.Equal(t, 50.0, res.CrossSectionMM2)
    assert.False(t, res.Compliant)
    assert.False(t, res.Exhausted)
    assert.Greater(t, res.VoltageDropPercent, 3.0)
    assert.Negative(t, res.MarginToLimitPercent)
    assert.Contains(t, res.Note, "voltage drop")
}

func TestCableSizeAmpacityExhausted(t *testing.T) {
    c := newCalc(t)
    res := c.CalculateCableSize(domain.CableSizingInput{
        PowerW: 60000, LengthM: 10, Voltage: 230, CircuitType: domain.CircuitPower, Phase: domain.PhaseSingle,
    })
    assert.True(t, res.Exhausted)
    assert.False(t, res.Compliant)
    assert.Equal(t, 50.0, res.CrossSectionMM2)
    assert.NotEmpty(t, res.Note)
}

func TestCableSizeUnknownMethodFallsBack(t *testing.T) {
    c := newCalc(t)
    res := c.CalculateCableSize(domain.CableSizingInput{
        PowerW: 3000, LengthM: 20, Voltage: 230, InstallationMethod: "Z9",
        CircuitType: domain.CircuitSocket, Phase: domain.PhaseSingle,
    })
    assert.Equal(t, 2.5, res.CrossSectionMM2)
    assert.True(t, res.Compliant)
    assert.Contains(t, res.Note, "Z9")
}

func TestCableSizeTemperatureDerating(t *testing.T) {
    c := newCalc(t)
    in := domain.CableSizingInput{
        PowerW: 3000, LengthM: 5, Voltage: 230, InstallationMethod: "C",
        CircuitType: domain.CircuitSocket, Phase: domain.PhaseSingle, MinAmpacityA: 25,
    }
    assert.Equal(t, 2.5, c.CalculateCableSize(in).CrossSectionMM2)

    in.AmbientTemperatureC = ptr(50)
    hot := c.CalculateCableSize(in)
    assert.Equal(t, 4.0, hot.CrossSectionMM2)
    assert.InDelta(t, 36*0.71, hot.AmpacityA, 1e-9)
}

func TestCableSizeThreePhase(t *testing.T) {
    c := newCalc(t)
    res := c.CalculateCableSize(domain.CableSizingInput{
        PowerW: 11000, LengthM: 25, Voltage: 400, CircuitType: domain.CircuitEV, Phase: domain.PhaseThree,
    })
    assert.InDelta(t, 15.88, res.DesignCurrentA, 0.01)
    assert.Equal(t, 2.5, res.CrossSectionMM2)
    assert.Equal(t, 24.0, res.AmpacityA, "three loaded conductors")
    assert.True(t, res.Compliant)
}

func TestLoadDiversityForCookingGroup(t *testing.T) {
    c := newCalc(t)
    loads := make([]domain.LoadEntry, 3)
    for i := range loads {
        loads[i] = domain.LoadEntry{
            Name: fmt.Sprintf("cook-%d", i), PowerW: 2000, PhaseRequirement: 1,
            CircuitType: domain.CircuitPower, IsContinuous: true, DiversityGroup: "cooking",
        }
    }
    res := c.CalculateLoad(loads, domain.PhaseSingle, "")

    assert.Equal(t, 6000.0, res.TotalConnectedLoadW)
    assert.InDelta(t, 4200, res.TotalDemandLoadW, 1e-9)
    require.Len(t, res.Groups, 1)
    assert.Equal(t, 0.7, res.Groups[0].DiversityFactor)
    assert.InDelta(t, 4200, res.PhaseLoads.L1, 1e-9)
    assert.Equal(t, 25.0, res.MainBreakerRatingA)
    assert.Zero(t, res.ImbalancePercent)
}

func TestLoadBuildingTypeDiversity(t *testing.T) {
    c := newCalc(t)
    loads := []domain.LoadEntry{{Name: "s", PowerW: 1000, CircuitType: domain.CircuitSocket, IsContinuous: true}}
    res := c.CalculateLoad(loads, domain.PhaseSingle, "residential")
    assert.InDelta(t, 300, res.TotalDemandLoadW, 1e-9)
}

func TestLoadDutyCycleForNonContinuous(t *testing.T) {
    c := newCalc(t)
    loads := []domain.LoadEntry{{Name: "s", PowerW: 1000, CircuitType: domain.CircuitSocket, DiversityGroup: "heating"}}
    res := c.CalculateLoad(loads, domain.PhaseSingle, "")
    assert.InDelta(t, 800, res.TotalDemandLoadW, 1e-9)
    assert.Equal(t, 1000.0, res.TotalConnectedLoadW)
}

func TestLoadThreePhaseDistribution(t *testing.T) {
    c := newCalc(t)
    loads := []domain.LoadEntry{
        {Name: "a", PowerW: 1000, PhaseRequirement: 1, CircuitType: domain.CircuitHeating, IsContinuous: true},
        {Name: "b", PowerW: 1000, PhaseRequirement: 1, CircuitType: domain.CircuitHeating, IsContinuous: true},
        {Name: "c", PowerW: 1000, PhaseRequirement: 1, CircuitType: domain.CircuitHeating, IsContinuous: true},
        {Name: "d", PowerW: 3000, PhaseRequirement: 3, CircuitType: domain.CircuitHeating, IsContinuous: true},
    }
    res := c.CalculateLoad(loads, domain.PhaseThree, "")

    assert.InDelta(t, 2000, res.PhaseLoads.L1, 1e-9)
    assert.InDelta(t, 2000, res.PhaseLoads.L2, 1e-9)
    assert.InDelta(t, 2000, res.PhaseLoads.L3, 1e-9)
    assert.InDelta(t, res.TotalDemandLoadW, res.PhaseLoads.Sum(), 1e-9)
    assert.InDelta(t, 0, res.ImbalancePercent, 1e-9)
}

func TestLoadImbalance(t *testing.T) {
    c := newCalc(t)
    loads := []domain.LoadEntry{
        {Name: "a", PowerW: 3000, CircuitType: domain.CircuitHeating, IsContinuous: true},
        {Name: "b", PowerW: 1500, CircuitType: domain.CircuitHeating, IsContinuous: true},
    }
    res := c.CalculateLoad(loads, domain.PhaseThree, "")
    // L1 3000, L2 1500, L3 0 → (3000 - 0) / 1500.
    assert.InDelta(t, 200, res.ImbalancePercent, 1e-9)
}

func TestLoadUnknownGroupGetsFallbackFactor(t *testing.T) {
    c := newCalc(t)
    loads := []domain.LoadEntry{{Name: "sauna", PowerW: 6000, CircuitType: domain.CircuitPower, IsContinuous: true, DiversityGroup: "sauna"}}
    res := c.CalculateLoad(loads, domain.PhaseSingle, "residential")

    assert.Equal(t, []string{"sauna"}, res.UnknownGroups)
    assert.InDelta(t, 6000, res.TotalDemandLoadW, 1e-9)
    assert.NotEmpty(t, res.Warnings)
    assert.False(t, res.Groups[0].Known)
}

func TestLoadEmpty(t *testing.T) {
    c := newCalc(t)
    res := c.CalculateLoad(nil, domain.PhaseThree, "")
    assert.Zero(t, res.TotalConnectedLoadW)
    assert.Zero(t, res.TotalDemandLoadW)
    assert.Zero(t, res.MainBreakerRatingA)
    assert.Empty(t, res.Warnings)
}

func TestLoadMainBreakerOverflow(t *testing.T) {
    c := newCalc(t)
    loads := []domain.LoadEntry{{Name: "plant", PowerW: 200000, PhaseRequirement: 3, CircuitType: domain.CircuitPower, IsContinuous: true, DiversityGroup: "heating"}}
    res := c.CalculateLoad(loads, domain.PhaseThree, "")
    assert.Equal(t, 250.0, res.MainBreakerRatingA)
    assert.NotEmpty(t, res.Warnings)
}

func TestValidateLoadsStrictMode(t *testing.T) {
    loads := []domain.LoadEntry{{Name: "sauna", PowerW: 6000, CircuitType: domain.CircuitPower, DiversityGroup: "sauna"}}

    lenient := newCalc(t)
    assert.NoError(t, lenient.ValidateLoads(loads, ""))

    limits := DefaultLimits()
    limits.StrictDiversityGroups = true
    strict := New(reftables.MustDefault(), limits)
    err := strict.ValidateLoads(loads, "")
    require.Error(t, err)
    assert.True(t, domain.IsValidation(err))

    assert.Error(t, lenient.ValidateLoads([]domain.LoadEntry{{PowerW: -1}}, ""))
}
