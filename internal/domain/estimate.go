package domain

// EstimateRequest is what a caller sends to the project estimator.
type EstimateRequest struct {
    CalculationID   string               `json:"calculation_id,omitempty"`
    Rooms           []Room               `json:"rooms"`
    SupplyPhase     PhaseType            `json:"supply_phase"`
    BuildingType    string               `json:"building_type,omitempty"`
    IsRenovation    bool                 `json:"is_renovation,omitempty"`
    ExistingSupplyA float64              `json:"existing_supply_a,omitempty"`
    Overrides       *CalibrationOverride `json:"overrides,omitempty"`
}

// CalibrationOverride replaces individual table values for one request.
// Nil fields keep the table value.
type CalibrationOverride struct {
    HourlyRate         *float64 `json:"hourly_rate,omitempty"`
    OverheadPercent    *float64 `json:"overhead_percent,omitempty"`
    RiskBufferPercent  *float64 `json:"risk_buffer_percent,omitempty"`
    MarginPercent      *float64 `json:"margin_percent,omitempty"`
    VATPercent         *float64 `json:"vat_percent,omitempty"`
    BuildingMultiplier *float64 `json:"building_multiplier,omitempty"`
    TimeFactor         *float64 `json:"time_factor,omitempty"`
}

type ElectricalProjectResult struct {
    CalculationID string                `json:"calculation_id,omitempty"`
    Loads         []LoadEntry           `json:"loads"`
    LoadAnalysis  LoadAnalysisResult    `json:"load_analysis"`
    Panel         PanelConfiguration    `json:"panel"`
    Compliance    ComplianceCheckResult `json:"compliance"`
    Estimate      ProjectEstimate       `json:"estimate"`
}

type ProjectEstimate struct {
    Currency string `json:"currency"`

    TimeHours     float64 `json:"time_hours"`
    MaterialCost  float64 `json:"material_cost"`
    HourlyRate    float64 `json:"hourly_rate"`
    LaborCost     float64 `json:"labor_cost"`
    Subtotal      float64 `json:"subtotal"`
    OverheadPct   float64 `json:"overhead_percentage"`
    OverheadAmt   float64 `json:"overhead_amount"`
    RiskBufferPct float64 `json:"risk_buffer_percentage"`
    RiskAmount    float64 `json:"risk_amount"`
    CostBasis     float64 `json:"cost_basis"`
    MarginPct     float64 `json:"margin_percentage"`
    MarginAmount  float64 `json:"margin_amount"`
    SaleExVAT     float64 `json:"sale_ex_vat"`
    VATPct        float64 `json:"vat_percentage"`
    VATAmount     float64 `json:"vat_amount"`
    FinalAmount   float64 `json:"final_amount"`

    Lines        []EstimateLine `json:"lines"`
    Warnings     []string       `json:"warnings"`
    RiskAnalysis RiskAnalysis   `json:"risk_analysis"`
}

// EstimateLine is one time/material contribution, kept for offer text.
type EstimateLine struct {
    Code         string  `json:"code"`
    Description  string  `json:"description"`
    Quantity     float64 `json:"quantity"`
    Unit         string  `json:"unit"`
    Minutes      float64 `json:"minutes"`
    MaterialCost float64 `json:"material_cost"`
}

type RiskAnalysis struct {
    ComplexityScore   float64  `json:"complexity_score"`
    Bucket            string   `json:"bucket"`
    RiskBufferPercent float64  `json:"risk_buffer_percent"`
    RiskBufferSource  string   `json:"risk_buffer_source"` // override|learning|table
    Factors           []string `json:"factors,omitempty"`
}
