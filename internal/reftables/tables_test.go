package reftables

import (
    "math"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

func TestDefaultTablesParse(t *testing.T) {
    tbl, err := Default()
    require.NoError(t, err)

    assert.Equal(t, "cu", tbl.ConductorMaterial)
    assert.Equal(t, 230.0, tbl.Voltage.Single)
    assert.Contains(t, tbl.Ampacity, "C")
    assert.Equal(t, []float64{6, 10, 13, 16, 20, 25, 32, 40, 50, 63}, tbl.BreakerSizes)

    sizes := tbl.Ampacity["C"].Sizes
    for i := 1; i < len(sizes); i++ {
        assert.Greater(t, sizes[i].MM2, sizes[i-1].MM2, "sizes must ascend")
        assert.Greater(t, sizes[i].TwoLoaded, sizes[i-1].TwoLoaded, "ampacity must ascend with size")
    }
}

func TestParseRejectsDiversityAboveOne(t *testing.T) {
    doc := []byte(`
conductor_material: cu
resistivity: {cu: 0.0225}
power_factor: 1
voltage: {single: 230, three: 400}
default_installation_method: C
ampacity:
  C: {sizes: [{mm2: 1.5, two_loaded: 19.5, three_loaded: 17.5}]}
diversity:
  default: {socket: 1.4}
risk_buckets: [{name: low, max_score: 10, default_buffer_percent: 5}]
`)
    _, err := Parse(doc)
    assert.ErrorContains(t, err, "diversity")
}

func TestDiversityFactorFallback(t *testing.T) {
    tbl := MustDefault()

    f, ok := tbl.DiversityFactor("residential", "socket")
    assert.True(t, ok)
    assert.Equal(t, 0.3, f)

    f, ok = tbl.DiversityFactor("residential", "ev")
    assert.True(t, ok, "building type without the group falls back to default")
    assert.Equal(t, 1.0, f)

    _, ok = tbl.DiversityFactor("residential", "sauna")
    assert.False(t, ok)
}

func TestTemperatureFactor(t *testing.T) {
    tbl := MustDefault()
    assert.Equal(t, 1.0, tbl.TemperatureFactor(30))
    assert.Equal(t, 0.94, tbl.TemperatureFactor(32), "in-between ambient takes the harsher bracket")
    assert.Equal(t, 1.22, tbl.TemperatureFactor(-5))
    assert.Equal(t, 0.5, tbl.TemperatureFactor(75))
}

func TestSystemVoltage(t *testing.T) {
    tbl := MustDefault()
    v, pf := tbl.SystemVoltage(domain.PhaseSingle)
    assert.Equal(t, 230.0, v)
    assert.Equal(t, 1.0, pf)
    v, pf = tbl.SystemVoltage(domain.PhaseThree)
    assert.Equal(t, 400.0, v)
    assert.InDelta(t, math.Sqrt(3), pf, 1e-12)
}

func TestNextSize(t *testing.T) {
    series := []float64{6, 10, 13, 16}
    s, ok := NextSize(series, 11)
    assert.True(t, ok)
    assert.Equal(t, 13.0, s)

    s, ok = NextSize(series, 40)
    assert.False(t, ok)
    assert.Equal(t, 16.0, s)
}

func TestBucketFor(t *testing.T) {
    tbl := MustDefault()
    b, i := tbl.BucketFor(2)
    assert.Equal(t, "low", b.Name)
    assert.Equal(t, 0, i)
    b, _ = tbl.BucketFor(5)
    assert.Equal(t, "medium", b.Name)
    b, _ = tbl.BucketFor(42)
    assert.Equal(t, "high", b.Name)
}

func TestWithCoefficientsLeavesReceiverUntouched(t *testing.T) {
    tbl := MustDefault()
    before := tbl.Components["socket_double"].TimeMinutes
    at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

    next := tbl.WithCoefficients([]domain.Coefficient{
        {CoefficientKey: domain.CoefficientKey{Kind: domain.KindComponentTime, Key: "socket_double"}, Value: 41, UpdatedAt: at},
        {CoefficientKey: domain.CoefficientKey{Kind: domain.KindBuildingMultiplier, Key: "villa"}, Value: 1.05, UpdatedAt: at},
        {CoefficientKey: domain.CoefficientKey{Kind: domain.KindComponentTime, Key: "no_such_component"}, Value: 10, UpdatedAt: at},
    })

    assert.Equal(t, before, tbl.Components["socket_double"].TimeMinutes)
    assert.Equal(t, 41.0, next.Components["socket_double"].TimeMinutes)
    assert.Equal(t, at, next.Components["socket_double"].UpdatedAt)
    assert.Equal(t, 1.05, next.BuildingMultiplier("villa"))
    assert.NotContains(t, next.Components, "no_such_component")
}

func TestCoefficientsStableOrder(t *testing.T) {
    tbl := MustDefault()
    a := tbl.Coefficients()
    b := tbl.Coefficients()
    require.Equal(t, a, b)
    for i := 1; i < len(a); i++ {
        assert.Less(t, a[i-1].String(), a[i].String())
    }

    c, ok := tbl.Coefficient(domain.CoefficientKey{Kind: domain.KindGlobalFactor, Key: FactorTime})
    assert.True(t, ok)
    assert.Equal(t, 1.0, c.Value)
}

func TestStoreApplyIsIdempotent(t *testing.T) {
    store := NewStore(MustDefault())
    at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
    adj := []domain.Adjustment{{
        CoefficientKey: domain.CoefficientKey{Kind: domain.KindComponentTime, Key: "light_point"},
        Previous:       30, Proposed: 33,
    }}
    old := store.Snapshot()

    store.Apply(adj, at)
    once := store.Snapshot().Components["light_point"].TimeMinutes
    store.Apply(adj, at)
    twice := store.Snapshot().Components["light_point"].TimeMinutes

    assert.Equal(t, 33.0, once)
    assert.Equal(t, once, twice)
    assert.Equal(t, 30.0, old.Components["light_point"].TimeMinutes, "published snapshots are not mutated")
}

func TestStoreConcurrentReadersAndApply(t *testing.T) {
    store := NewStore(MustDefault())
    var wg sync.WaitGroup
    for i := 0; i < 8; i++ {
        wg.Add(2)
        go func(v float64) {
            defer wg.Done()
            store.Apply([]domain.Adjustment{{
                CoefficientKey: domain.CoefficientKey{Kind: domain.KindGlobalFactor, Key: FactorTime},
                Proposed:       v,
            }}, time.Now())
        }(1 + float64(i)/100)
        go func() {
            defer wg.Done()
            _ = store.Snapshot().Factor(FactorTime)
        }()
    }
    wg.Wait()
    assert.GreaterOrEqual(t, store.Snapshot().Factor(FactorTime), 1.0)
}
