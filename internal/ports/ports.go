package ports

import (
    "context"
    "time"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

// Estimator turns a room list into a compliant panel and a priced estimate.
type Estimator interface {
    Estimate(ctx context.Context, req domain.EstimateRequest) (domain.ElectricalProjectResult, error)
}

// RiskAdvisor suggests a risk buffer for a project complexity score.
type RiskAdvisor interface {
    GetSuggestedRiskBuffer(ctx context.Context, complexity float64) (domain.RiskBufferSuggestion, error)
}

// Calibrator analyzes recorded feedback and proposes or applies coefficient
// adjustments.
type Calibrator interface {
    RiskAdvisor
    RecordFeedback(ctx context.Context, fb domain.CalculationFeedback) (domain.CalculationFeedback, error)
    AnalyzeLearningMetrics(ctx context.Context) (domain.LearningMetrics, error)
    // AnalyzeLearningMetricsBetween limits the corpus to from <= recorded < to;
    // zero bounds are open.
    AnalyzeLearningMetricsBetween(ctx context.Context, from, to time.Time) (domain.LearningMetrics, error)
    AnalyzeComponentCalibration(ctx context.Context) ([]domain.ComponentCalibration, error)
    AnalyzeBuildingProfiles(ctx context.Context) ([]domain.BuildingProfileCalibration, error)
    ProposeCalibration(ctx context.Context) (domain.CalibrationBatch, error)
    ListBatches(ctx context.Context) ([]domain.CalibrationBatch, error)
    GetBatch(ctx context.Context, id string) (domain.CalibrationBatch, error)
    ApplyBatch(ctx context.Context, id string) (domain.CalibrationBatch, error)
}
