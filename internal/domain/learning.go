package domain

import "time"

// CalculationFeedback pairs a past estimate with what actually happened.
// Variance fields are derived when the record is written.
type CalculationFeedback struct {
    CalculationID         string              `json:"calculation_id"`
    BuildingType          string              `json:"building_type,omitempty"`
    ComplexityScore       float64             `json:"complexity_score"`
    Components            []FeedbackComponent `json:"components,omitempty"`
    EstimatedHours        float64             `json:"estimated_hours"`
    ActualHours           float64             `json:"actual_hours"`
    EstimatedMaterialCost float64             `json:"estimated_material_cost"`
    ActualMaterialCost    float64             `json:"actual_material_cost"`
    OfferAccepted         bool                `json:"offer_accepted"`
    ProjectProfitable     bool                `json:"project_profitable"`
    CustomerSatisfaction  int                 `json:"customer_satisfaction"` // 1-5, 0 unknown
    RecordedAt            time.Time           `json:"recorded_at"`

    HoursVariancePercent    float64 `json:"hours_variance_percent"`
    MaterialVariancePercent float64 `json:"material_variance_percent"`
}

type FeedbackComponent struct {
    Code     string `json:"code"`
    Quantity int    `json:"quantity"`
}

type AccuracyBucket struct {
    Label             string  `json:"label"`
    Samples           int     `json:"samples"`
    HoursMAPE         float64 `json:"hours_mape"`
    MaterialMAPE      float64 `json:"material_mape"`
    AcceptanceRate    float64 `json:"acceptance_rate"`
    ProfitabilityRate float64 `json:"profitability_rate"`
    AvgSatisfaction   float64 `json:"avg_satisfaction"`
    MeanHoursVariance float64 `json:"mean_hours_variance_percent"`
}

type LearningMetrics struct {
    GeneratedAt time.Time        `json:"generated_at"`
    From        *time.Time       `json:"from,omitempty"`
    To          *time.Time       `json:"to,omitempty"`
    Overall     AccuracyBucket   `json:"overall"`
    Buckets     []AccuracyBucket `json:"buckets"`
}

type CoefficientKind string

const (
    KindComponentTime      CoefficientKind = "component_time"
    KindBuildingMultiplier CoefficientKind = "building_multiplier"
    KindGlobalFactor       CoefficientKind = "global_factor"
)

// CoefficientKey identifies one calibratable value.
type CoefficientKey struct {
    Kind CoefficientKind `json:"kind"`
    Key  string          `json:"key"`
}

func (k CoefficientKey) String() string { return string(k.Kind) + ":" + k.Key }

type Coefficient struct {
    CoefficientKey
    Value     float64   `json:"value"`
    UpdatedAt time.Time `json:"updated_at"`
}

type ComponentCalibration struct {
    ComponentCode       string  `json:"component_code"`
    Samples             int     `json:"samples"`
    CurrentMinutes      float64 `json:"current_minutes"`
    MeanVariancePercent float64 `json:"mean_variance_percent"`
    ProposedMinutes     float64 `json:"proposed_minutes"`
    ChangePercent       float64 `json:"change_percent"`
    Clamped             bool    `json:"clamped"`
}

type BuildingProfileCalibration struct {
    BuildingType        string  `json:"building_type"`
    Samples             int     `json:"samples"`
    CurrentMultiplier   float64 `json:"current_multiplier"`
    ResidualVariancePct float64 `json:"residual_variance_percent"`
    ProposedMultiplier  float64 `json:"proposed_multiplier"`
    ChangePercent       float64 `json:"change_percent"`
    Clamped             bool    `json:"clamped"`
}

type RiskBufferSuggestion struct {
    ComplexityScore float64 `json:"complexity_score"`
    Bucket          string  `json:"bucket"`
    Percent         float64 `json:"percent"`
    Samples         int     `json:"samples"`
    FromHistory     bool    `json:"from_history"`
}

// Adjustment moves one coefficient to an absolute value. Applying it twice
// leaves the coefficient where one application put it.
type Adjustment struct {
    CoefficientKey
    Previous      float64 `json:"previous"`
    Proposed      float64 `json:"proposed"`
    ChangePercent float64 `json:"change_percent"`
    SampleCount   int     `json:"sample_count"`
    Reason        string  `json:"reason"`
}

type BatchStatus string

const (
    BatchProposed BatchStatus = "proposed"
    BatchApplied  BatchStatus = "applied"
)

// CalibrationBatch is the immutable output of one calibration run.
type CalibrationBatch struct {
    ID          string       `json:"id"`
    Status      BatchStatus  `json:"status"`
    CreatedAt   time.Time    `json:"created_at"`
    AppliedAt   *time.Time   `json:"applied_at,omitempty"`
    Adjustments []Adjustment `json:"adjustments"`
}
