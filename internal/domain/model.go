package domain

// Core electrical models shared by the calculators, the estimator and the
// adapters. They carry no behaviour beyond small helpers; the calculators in
// internal/services/electrical own the rules.

type PhaseType string

const (
    PhaseSingle PhaseType = "single"
    PhaseThree  PhaseType = "three"
)

func (p PhaseType) Valid() bool { return p == PhaseSingle || p == PhaseThree }

type CircuitType string

const (
    CircuitLighting CircuitType = "lighting"
    CircuitSocket   CircuitType = "socket"
    CircuitPower    CircuitType = "power"
    CircuitHeating  CircuitType = "heating"
    CircuitEV       CircuitType = "ev"
    CircuitOther    CircuitType = "other"
)

func (c CircuitType) Valid() bool {
    switch c {
    case CircuitLighting, CircuitSocket, CircuitPower, CircuitHeating, CircuitEV, CircuitOther:
        return true
    }
    return false
}

// LoadEntry is one electrical consumer.
type LoadEntry struct {
    Name             string      `json:"name"`
    PowerW           float64     `json:"power_watts"`
    PhaseRequirement int         `json:"phase_requirement"` // 1 or 3
    CircuitType      CircuitType `json:"circuit_type"`
    IsContinuous     bool        `json:"is_continuous"`
    DiversityGroup   string      `json:"diversity_group"`
    RoomID           string      `json:"room_id,omitempty"`
    ComponentCode    string      `json:"component_code,omitempty"`
}

// Group returns the diversity group, falling back to the circuit type.
func (l LoadEntry) Group() string {
    if l.DiversityGroup != "" {
        return l.DiversityGroup
    }
    return string(l.CircuitType)
}

type Room struct {
    ID               string            `json:"id"`
    Name             string            `json:"name"`
    RoomType         string            `json:"room_type"`
    AreaM2           float64           `json:"area_m2,omitempty"`
    CableLengthM     float64           `json:"cable_length_m,omitempty"`
    ElectricalPoints []ElectricalPoint `json:"electrical_points"`
}

type CableSizingInput struct {
    CircuitID           string      `json:"circuit_id,omitempty"`
    PowerW              float64     `json:"power_watts"`
    LengthM             float64     `json:"length_meters"`
    Voltage             float64     `json:"voltage"`
    InstallationMethod  string      `json:"installation_method"`
    AmbientTemperatureC *float64    `json:"ambient_temperature,omitempty"`
    CircuitType         CircuitType `json:"circuit_type"`
    Phase               PhaseType   `json:"phase"`
    PowerFactor         float64     `json:"power_factor,omitempty"`
    // MinAmpacityA forces the conductor to carry at least this current,
    // e.g. the protecting breaker's rating.
    MinAmpacityA float64 `json:"min_ampacity_a,omitempty"`
}

type CableSizingResult struct {
    CircuitID               string  `json:"circuit_id,omitempty"`
    CrossSectionMM2         float64 `json:"cross_section_mm2"`
    ConductorMaterial       string  `json:"conductor_material"`
    DesignCurrentA          float64 `json:"design_current_a"`
    VoltageDropPercent      float64 `json:"voltage_drop_percent"`
    VoltageDropLimitPercent float64 `json:"voltage_drop_limit_percent"`
    AmpacityA               float64 `json:"ampacity_a"`
    Compliant               bool    `json:"compliant"`
    MarginToLimitPercent    float64 `json:"margin_to_limit_percent"`
    Exhausted               bool    `json:"exhausted,omitempty"`
    Note                    string  `json:"note,omitempty"`
}

type PhaseLoads struct {
    L1 float64 `json:"l1"`
    L2 float64 `json:"l2"`
    L3 float64 `json:"l3"`
}

func (p PhaseLoads) Sum() float64 { return p.L1 + p.L2 + p.L3 }

type GroupLoad struct {
    Group           string  `json:"group"`
    ConnectedLoadW  float64 `json:"connected_load_w"`
    DemandLoadW     float64 `json:"demand_load_w"`
    DiversityFactor float64 `json:"diversity_factor"`
    Known           bool    `json:"known"`
}

type LoadAnalysisResult struct {
    Phase               PhaseType   `json:"phase"`
    TotalConnectedLoadW float64     `json:"total_connected_load_w"`
    TotalDemandLoadW    float64     `json:"total_demand_load_w"`
    PhaseLoads          PhaseLoads  `json:"phase_loads"`
    ImbalancePercent    float64     `json:"imbalance_percent"`
    MainBreakerRatingA  float64     `json:"main_breaker_rating_a"`
    Groups              []GroupLoad `json:"groups"`
    UnknownGroups       []string    `json:"unknown_groups,omitempty"`
    Warnings            []string    `json:"warnings,omitempty"`
}

type Circuit struct {
    ID                   string      `json:"id"`
    LoadRefs             []string    `json:"load_refs"`
    BreakerRatingA       float64     `json:"breaker_rating_a"`
    CableCrossSectionMM2 float64     `json:"cable_cross_section_mm2"`
    RcdGroupID           string      `json:"rcd_group_id,omitempty"`
    RoomID               string      `json:"room_id,omitempty"`
    RoomType             string      `json:"room_type,omitempty"`
    CircuitType          CircuitType `json:"circuit_type"`
    Phase                PhaseType   `json:"phase"`
    PowerW               float64     `json:"power_w"`
    DesignCurrentA       float64     `json:"design_current_a"`
    LengthM              float64     `json:"length_m"`
    RequiresRCD          bool        `json:"requires_rcd"`
}

type RcdGroup struct {
    ID            string   `json:"id"`
    CircuitIDs    []string `json:"circuit_ids"`
    RatingA       float64  `json:"rating_a"`
    SensitivityMA float64  `json:"sensitivity_ma"`
}

type PanelConfiguration struct {
    Phase                PhaseType           `json:"phase"`
    Circuits             []Circuit           `json:"circuits"`
    RcdGroups            []RcdGroup          `json:"rcd_groups"`
    Cables               []CableSizingResult `json:"cables"`
    MainBreakerRatingA   float64             `json:"main_breaker_rating_a"`
    DemandLoadW          float64             `json:"demand_load_w"`
    ExistingSupplyA      float64             `json:"existing_supply_a,omitempty"`
    UsedModules          int                 `json:"used_modules"`
    PanelCapacityModules int                 `json:"panel_capacity_modules"`
    UpgradeRequired      bool                `json:"upgrade_required"`
    Notes                []string            `json:"notes,omitempty"`
}

type Severity string

const (
    SeverityInfo     Severity = "info"
    SeverityWarning  Severity = "warning"
    SeverityCritical Severity = "critical"
)

type Finding struct {
    Code             string   `json:"code"`
    Severity         Severity `json:"severity"`
    Message          string   `json:"message"`
    RelatedCircuitID string   `json:"related_circuit_id,omitempty"`
}

type ComplianceCheckResult struct {
    Compliant bool      `json:"compliant"`
    Findings  []Finding `json:"findings"`
}
