// Package reftables holds the unit reference data the calculators read:
// conductor ampacity, breaker series, diversity and duty-cycle factors, room
// templates, component time/material coefficients and pricing defaults.
//
// A *Tables value is treated as immutable once published through a Store.
// Calibration produces a new value (WithCoefficients) instead of mutating the
// one calculators may still be reading.
package reftables

import (
    "math"
    "sort"
    "time"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

type Tables struct {
    ConductorMaterial         string             `yaml:"conductor_material"`
    Resistivity               map[string]float64 `yaml:"resistivity"`
    PowerFactor               float64            `yaml:"power_factor"`
    Voltage                   Voltages           `yaml:"voltage"`
    DefaultInstallationMethod string             `yaml:"default_installation_method"`
    DefaultCableLengthM       float64            `yaml:"default_cable_length_m"`

    Ampacity            map[string]AmpacityTable `yaml:"ampacity"`
    TemperatureDerating []DeratingStep           `yaml:"temperature_derating"`
    BreakerSizes        []float64                `yaml:"breaker_sizes"`
    MainBreakerSizes    []float64                `yaml:"main_breaker_sizes"`
    RCD                 RCDSpec                  `yaml:"rcd"`
    Modules             ModuleTable              `yaml:"modules"`

    CircuitRules  map[domain.CircuitType]CircuitRule `yaml:"circuit_rules"`
    DutyCycle     map[domain.CircuitType]float64     `yaml:"duty_cycle"`
    Diversity     map[string]map[string]float64      `yaml:"diversity"`
    RoomTemplates map[string]RoomTemplate            `yaml:"room_templates"`

    Components       map[string]Component       `yaml:"components"`
    BuildingProfiles map[string]BuildingProfile `yaml:"building_profiles"`
    GlobalFactors    map[string]GlobalFactor    `yaml:"global_factors"`

    PanelWork   PanelWork    `yaml:"panel_work"`
    Cable       CableWork    `yaml:"cable"`
    Pricing     Pricing      `yaml:"pricing"`
    RiskBuckets []RiskBucket `yaml:"risk_buckets"`
}

type Voltages struct {
    Single float64 `yaml:"single"`
    Three  float64 `yaml:"three"`
}

type AmpacityTable struct {
    Description string        `yaml:"description"`
    Sizes       []AmpacityRow `yaml:"sizes"`
}

// AmpacityRow gives the current-carrying capacity for two loaded conductors
// (single-phase) and three loaded conductors (three-phase).
type AmpacityRow struct {
    MM2         float64 `yaml:"mm2"`
    TwoLoaded   float64 `yaml:"two_loaded"`
    ThreeLoaded float64 `yaml:"three_loaded"`
}

func (r AmpacityRow) For(phase domain.PhaseType) float64 {
    if phase == domain.PhaseThree {
        return r.ThreeLoaded
    }
    return r.TwoLoaded
}

type DeratingStep struct {
    AmbientC float64 `yaml:"ambient_c"`
    Factor   float64 `yaml:"factor"`
}

type RCDSpec struct {
    RatingA       float64 `yaml:"rating_a"`
    SensitivityMA float64 `yaml:"sensitivity_ma"`
}

type ModuleTable struct {
    MCBSingle  int     `yaml:"mcb_single"`
    MCBThree   int     `yaml:"mcb_three"`
    RCDSingle  int     `yaml:"rcd_single"`
    RCDThree   int     `yaml:"rcd_three"`
    MainSingle int     `yaml:"main_single"`
    MainThree  int     `yaml:"main_three"`
    RowModules int     `yaml:"row_modules"`
    SpareRatio float64 `yaml:"spare_ratio"`
}

type CircuitRule struct {
    MaxCurrentA        float64 `yaml:"max_current_a"`
    MinCrossSectionMM2 float64 `yaml:"min_mm2"`
    MinBreakerA        float64 `yaml:"min_breaker_a"`
    Dedicated          bool    `yaml:"dedicated"`
    RequiresRCD        bool    `yaml:"requires_rcd"`
}

type RoomTemplate struct {
    Label               string  `yaml:"label"`
    WetArea             bool    `yaml:"wet_area"`
    RequiresRCD         bool    `yaml:"requires_rcd"`
    DefaultCableLengthM float64 `yaml:"default_cable_length_m"`
    InstallationMethod  string  `yaml:"installation_method"`
}

type Component struct {
    Name           string             `yaml:"name"`
    Unit           string             `yaml:"unit"`
    CircuitType    domain.CircuitType `yaml:"circuit_type"`
    DiversityGroup string             `yaml:"diversity_group"`
    PowerW         float64            `yaml:"power_w"`
    Phase          int                `yaml:"phase"`
    Continuous     bool               `yaml:"continuous"`
    TimeMinutes    float64            `yaml:"time_minutes"`
    MaterialCost   float64            `yaml:"material_cost"`
    UpdatedAt      time.Time          `yaml:"-"`
}

type BuildingProfile struct {
    Label      string    `yaml:"label"`
    Multiplier float64   `yaml:"multiplier"`
    UpdatedAt  time.Time `yaml:"-"`
}

type GlobalFactor struct {
    Value     float64   `yaml:"value"`
    UpdatedAt time.Time `yaml:"-"`
}

type WorkItem struct {
    Minutes      float64 `yaml:"minutes"`
    MaterialCost float64 `yaml:"material_cost"`
}

type PanelWork struct {
    Base          WorkItem `yaml:"base"`
    PerCircuit    WorkItem `yaml:"per_circuit"`
    PerRCD        WorkItem `yaml:"per_rcd"`
    SupplyUpgrade WorkItem `yaml:"supply_upgrade"`
}

type CableWork struct {
    MinutesPerM           float64      `yaml:"minutes_per_m"`
    ThreePhasePriceFactor float64      `yaml:"three_phase_price_factor"`
    Prices                []CablePrice `yaml:"prices"`
}

type CablePrice struct {
    MM2       float64 `yaml:"mm2"`
    PricePerM float64 `yaml:"price_per_m"`
}

type Pricing struct {
    Currency          string  `yaml:"currency"`
    HourlyRate        float64 `yaml:"hourly_rate"`
    OverheadPercent   float64 `yaml:"overhead_percent"`
    MarginPercent     float64 `yaml:"margin_percent"`
    VATPercent        float64 `yaml:"vat_percent"`
}

// RiskBucket maps a complexity score range to a default buffer. Buckets are
// ordered by MaxScore; the last bucket is open-ended.
type RiskBucket struct {
    Name             string  `yaml:"name"`
    MaxScore         float64 `yaml:"max_score"`
    DefaultBufferPct float64 `yaml:"default_buffer_percent"`
}

// Global factor names.
const (
    FactorTime           = "time_factor"
    FactorMaterial       = "material_factor"
    FactorRenovationTime = "renovation_time_factor"
)

const defaultDiversityKey = "default"

// SystemVoltage returns the nominal voltage and the phase factor (1 or √3).
func (t *Tables) SystemVoltage(phase domain.PhaseType) (float64, float64) {
    if phase == domain.PhaseThree {
        return t.Voltage.Three, math.Sqrt(3)
    }
    return t.Voltage.Single, 1
}

// DiversityFactor looks up the factor for a group, first under the building
// type, then under the default table. ok is false when neither knows it.
func (t *Tables) DiversityFactor(buildingType, group string) (float64, bool) {
    if byGroup, found := t.Diversity[buildingType]; found {
        if f, found := byGroup[group]; found {
            return f, true
        }
    }
    if f, found := t.Diversity[defaultDiversityKey][group]; found {
        return f, true
    }
    return 0, false
}

func (t *Tables) DutyCycleFactor(ct domain.CircuitType) float64 {
    if f, ok := t.DutyCycle[ct]; ok && f > 0 && f <= 1 {
        return f
    }
    return 1
}

// AmpacityFor returns the table for an installation method, falling back to
// the default method. The returned name is the method actually used.
func (t *Tables) AmpacityFor(method string) (AmpacityTable, string, bool) {
    if tbl, ok := t.Ampacity[method]; ok && len(tbl.Sizes) > 0 {
        return tbl, method, true
    }
    tbl := t.Ampacity[t.DefaultInstallationMethod]
    return tbl, t.DefaultInstallationMethod, false
}

// TemperatureFactor picks the factor of the first tabulated ambient at or
// above the given temperature, so an in-between ambient gets the harsher value.
func (t *Tables) TemperatureFactor(ambientC float64) float64 {
    if len(t.TemperatureDerating) == 0 {
        return 1
    }
    for _, step := range t.TemperatureDerating {
        if ambientC <= step.AmbientC {
            return step.Factor
        }
    }
    return t.TemperatureDerating[len(t.TemperatureDerating)-1].Factor
}

func (t *Tables) Rule(ct domain.CircuitType) CircuitRule {
    if r, ok := t.CircuitRules[ct]; ok {
        return r
    }
    return t.CircuitRules[domain.CircuitOther]
}

func (t *Tables) Room(roomType string) (RoomTemplate, bool) {
    r, ok := t.RoomTemplates[roomType]
    return r, ok
}

func (t *Tables) Component(code string) (Component, bool) {
    c, ok := t.Components[code]
    return c, ok
}

func (t *Tables) BuildingMultiplier(buildingType string) float64 {
    if p, ok := t.BuildingProfiles[buildingType]; ok && p.Multiplier > 0 {
        return p.Multiplier
    }
    return 1
}

func (t *Tables) Factor(name string) float64 {
    if f, ok := t.GlobalFactors[name]; ok && f.Value > 0 {
        return f.Value
    }
    return 1
}

// CablePriceFor returns the price per metre of the smallest tabulated size
// that is at least mm2.
func (t *Tables) CablePriceFor(mm2 float64, phase domain.PhaseType) float64 {
    price := 0.0
    for _, p := range t.Cable.Prices {
        price = p.PricePerM
        if p.MM2 >= mm2 {
            break
        }
    }
    if phase == domain.PhaseThree && t.Cable.ThreePhasePriceFactor > 0 {
        price *= t.Cable.ThreePhasePriceFactor
    }
    return price
}

// BucketFor returns the risk bucket for a complexity score.
func (t *Tables) BucketFor(score float64) (RiskBucket, int) {
    for i, b := range t.RiskBuckets {
        if score <= b.MaxScore || i == len(t.RiskBuckets)-1 {
            return b, i
        }
    }
    return RiskBucket{Name: "unknown"}, -1
}

// NextSize returns the smallest size in an ascending series that is >= v.
func NextSize(series []float64, v float64) (float64, bool) {
    for _, s := range series {
        if s >= v {
            return s, true
        }
    }
    if len(series) == 0 {
        return 0, false
    }
    return series[len(series)-1], false
}

// Coefficients lists every calibratable value in a stable order.
func (t *Tables) Coefficients() []domain.Coefficient {
    out := make([]domain.Coefficient, 0, len(t.Components)+len(t.BuildingProfiles)+len(t.GlobalFactors))
    for code, c := range t.Components {
        out = append(out, domain.Coefficient{
            CoefficientKey: domain.CoefficientKey{Kind: domain.KindComponentTime, Key: code},
            Value:          c.TimeMinutes, UpdatedAt: c.UpdatedAt,
        })
    }
    for bt, p := range t.BuildingProfiles {
        out = append(out, domain.Coefficient{
            CoefficientKey: domain.CoefficientKey{Kind: domain.KindBuildingMultiplier, Key: bt},
            Value:          p.Multiplier, UpdatedAt: p.UpdatedAt,
        })
    }
    for name, f := range t.GlobalFactors {
        out = append(out, domain.Coefficient{
            CoefficientKey: domain.CoefficientKey{Kind: domain.KindGlobalFactor, Key: name},
            Value:          f.Value, UpdatedAt: f.UpdatedAt,
        })
    }
    sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
    return out
}

// Coefficient returns the current value for a key.
func (t *Tables) Coefficient(k domain.CoefficientKey) (domain.Coefficient, bool) {
    c := domain.Coefficient{CoefficientKey: k}
    switch k.Kind {
    case domain.KindComponentTime:
        comp, ok := t.Components[k.Key]
        if !ok { return c, false }
        c.Value, c.UpdatedAt = comp.TimeMinutes, comp.UpdatedAt
    case domain.KindBuildingMultiplier:
        p, ok := t.BuildingProfiles[k.Key]
        if !ok { return c, false }
        c.Value, c.UpdatedAt = p.Multiplier, p.UpdatedAt
    case domain.KindGlobalFactor:
        f, ok := t.GlobalFactors[k.Key]
        if !ok { return c, false }
        c.Value, c.UpdatedAt = f.Value, f.UpdatedAt
    default:
        return c, false
    }
    return c, true
}

// WithCoefficients returns a copy with the given coefficients set. Keys that
// name an unknown component are ignored; unknown building types and global
// factors are added. The receiver is left untouched.
func (t *Tables) WithCoefficients(cs []domain.Coefficient) *Tables {
    out := *t
    out.Components = make(map[string]Component, len(t.Components))
    for k, v := range t.Components {
        out.Components[k] = v
    }
    out.BuildingProfiles = make(map[string]BuildingProfile, len(t.BuildingProfiles))
    for k, v := range t.BuildingProfiles {
        out.BuildingProfiles[k] = v
    }
    out.GlobalFactors = make(map[string]GlobalFactor, len(t.GlobalFactors))
    for k, v := range t.GlobalFactors {
        out.GlobalFactors[k] = v
    }
    for _, c := range cs {
        switch c.Kind {
        case domain.KindComponentTime:
            comp, ok := out.Components[c.Key]
            if !ok { continue }
            comp.TimeMinutes, comp.UpdatedAt = c.Value, c.UpdatedAt
            out.Components[c.Key] = comp
        case domain.KindBuildingMultiplier:
            p := out.BuildingProfiles[c.Key]
            p.Multiplier, p.UpdatedAt = c.Value, c.UpdatedAt
            if p.Label == "" { p.Label = c.Key }
            out.BuildingProfiles[c.Key] = p
        case domain.KindGlobalFactor:
            out.GlobalFactors[c.Key] = GlobalFactor{Value: c.Value, UpdatedAt: c.UpdatedAt}
        }
    }
    return &out
}
