package postgres

import (
    "context"
    "time"

    "github.com/jackc/pgx/v5"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
)

// FeedbackRepository

func (db *DB) UpsertFeedback(ctx context.Context, fb domain.CalculationFeedback) error {
    components := fb.Components
    if components == nil {
        components = []domain.FeedbackComponent{}
    }
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO calculation_feedback (
            calculation_id, building_type, complexity_score, components,
            estimated_hours, actual_hours, estimated_material_cost, actual_material_cost,
            offer_accepted, project_profitable, customer_satisfaction,
            hours_variance_percent, material_variance_percent, recorded_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (calculation_id) DO UPDATE SET
            building_type = EXCLUDED.building_type,
            complexity_score = EXCLUDED.complexity_score,
            components = EXCLUDED.components,
            estimated_hours = EXCLUDED.estimated_hours,
            actual_hours = EXCLUDED.actual_hours,
            estimated_material_cost = EXCLUDED.estimated_material_cost,
            actual_material_cost = EXCLUDED.actual_material_cost,
            offer_accepted = EXCLUDED.offer_accepted,
            project_profitable = EXCLUDED.project_profitable,
            customer_satisfaction = EXCLUDED.customer_satisfaction,
            hours_variance_percent = EXCLUDED.hours_variance_percent,
            material_variance_percent = EXCLUDED.material_variance_percent,
            recorded_at = EXCLUDED.recorded_at
    `, fb.CalculationID, fb.BuildingType, fb.ComplexityScore, components,
        fb.EstimatedHours, fb.ActualHours, fb.EstimatedMaterialCost, fb.ActualMaterialCost,
        fb.OfferAccepted, fb.ProjectProfitable, fb.CustomerSatisfaction,
        fb.HoursVariancePercent, fb.MaterialVariancePercent, fb.RecordedAt)
    return err
}

func (db *DB) ListFeedback(ctx context.Context, from, to time.Time) ([]domain.CalculationFeedback, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT calculation_id, building_type, complexity_score, components,
               estimated_hours, actual_hours, estimated_material_cost, actual_material_cost,
               offer_accepted, project_profitable, customer_satisfaction,
               hours_variance_percent, material_variance_percent, recorded_at
        FROM calculation_feedback
        WHERE ($1::timestamptz IS NULL OR recorded_at >= $1)
          AND ($2::timestamptz IS NULL OR recorded_at < $2)
        ORDER BY recorded_at, calculation_id
    `, nullTime(from), nullTime(to))
    if err != nil {
        return nil, err
    }
    return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CalculationFeedback, error) {
        var fb domain.CalculationFeedback
        err := row.Scan(&fb.CalculationID, &fb.BuildingType, &fb.ComplexityScore, &fb.Components,
            &fb.EstimatedHours, &fb.ActualHours, &fb.EstimatedMaterialCost, &fb.ActualMaterialCost,
            &fb.OfferAccepted, &fb.ProjectProfitable, &fb.CustomerSatisfaction,
            &fb.HoursVariancePercent, &fb.MaterialVariancePercent, &fb.RecordedAt)
        return fb, err
    })
}

var _ ports.FeedbackRepository = (*DB)(nil)
