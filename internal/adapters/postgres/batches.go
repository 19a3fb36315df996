package postgres

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/jackc/pgx/v5"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
)

// CalibrationRepository

// SaveBatch stores a proposal. An applied batch with the same ID is never
// downgraded back to proposed.
func (db *DB) SaveBatch(ctx context.Context, b domain.CalibrationBatch) error {
    raw, err := adjustmentsJSON(b.Adjustments)
    if err != nil {
        return err
    }
    _, err = db.Pool.Exec(ctx, `
        INSERT INTO calibration_batches (id, status, created_at, applied_at, adjustments)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET adjustments = EXCLUDED.adjustments
        WHERE calibration_batches.status = 'proposed'
    `, b.ID, string(b.Status), b.CreatedAt, b.AppliedAt, raw)
    return err
}

func (db *DB) GetBatch(ctx context.Context, id string) (domain.CalibrationBatch, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT id, status, created_at, applied_at, adjustments FROM calibration_batches WHERE id = $1
    `, id)
    if err != nil {
        return domain.CalibrationBatch{}, err
    }
    b, err := pgx.CollectExactlyOneRow(rows, scanBatch)
    return b, notFound(err)
}

func (db *DB) ListBatches(ctx context.Context) ([]domain.CalibrationBatch, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT id, status, created_at, applied_at, adjustments FROM calibration_batches
        ORDER BY created_at DESC, id
    `)
    if err != nil {
        return nil, err
    }
    return pgx.CollectRows(rows, scanBatch)
}

func scanBatch(row pgx.CollectableRow) (domain.CalibrationBatch, error) {
    var (
        b         domain.CalibrationBatch
        status    string
        appliedAt *time.Time
        raw       []byte
    )
    if err := row.Scan(&b.ID, &status, &b.CreatedAt, &appliedAt, &raw); err != nil {
        return b, err
    }
    b.Status = domain.BatchStatus(status)
    b.AppliedAt = appliedAt
    b.Adjustments = []domain.Adjustment{}
    if len(raw) > 0 {
        if err := json.Unmarshal(raw, &b.Adjustments); err != nil {
            return b, err
        }
    }
    return b, nil
}

// adjustmentsJSON encodes adjustments for a jsonb column; nil becomes [].
// Non-finite numbers have no JSON form and fail the write.
func adjustmentsJSON(adjs []domain.Adjustment) ([]byte, error) {
    if adjs == nil {
        adjs = []domain.Adjustment{}
    }
    raw, err := json.Marshal(adjs)
    if err != nil {
        return nil, fmt.Errorf("encode adjustments: %w", err)
    }
    return raw, nil
}

var _ ports.CalibrationRepository = (*DB)(nil)
