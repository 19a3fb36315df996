package postgres

import (
    "context"
    "errors"
    "sort"
    "time"

    "github.com/jackc/pgx/v5"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
)

// ReferenceTableRepository

func (db *DB) LoadCoefficients(ctx context.Context) ([]domain.Coefficient, error) {
    rows, err := db.Pool.Query(ctx, `SELECT kind, key, value, updated_at FROM coefficients ORDER BY kind, key`)
    if err != nil {
        return nil, err
    }
    return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Coefficient, error) {
        var c domain.Coefficient
        err := row.Scan(&c.Kind, &c.Key, &c.Value, &c.UpdatedAt)
        return c, err
    })
}

func (db *DB) SeedCoefficients(ctx context.Context, cs []domain.Coefficient) error {
    if len(cs) == 0 {
        return nil
    }
    b := &pgx.Batch{}
    for _, c := range cs {
        updated := c.UpdatedAt
        if updated.IsZero() {
            updated = time.Now().UTC()
        }
        b.Queue(`
            INSERT INTO coefficients (kind, key, value, updated_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (kind, key) DO NOTHING
        `, string(c.Kind), c.Key, c.Value, updated)
    }
    return db.Pool.SendBatch(ctx, b).Close()
}

// ApplyAdjustments writes the proposed values and flips the batch to applied
// in one transaction. The batch row and every touched coefficient are locked
// first (coefficients in key order), so concurrent applies serialize and a
// batch that is already applied is left alone and reported as not applied.
func (db *DB) ApplyAdjustments(ctx context.Context, batch domain.CalibrationBatch, appliedAt time.Time) (applied bool, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return false, err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { _ = tx.Commit(ctx) }
    }()

    var status string
    err = tx.QueryRow(ctx, `SELECT status FROM calibration_batches WHERE id = $1 FOR UPDATE`, batch.ID).Scan(&status)
    switch {
    case errors.Is(err, pgx.ErrNoRows):
        err = nil
    case err != nil:
        return false, err
    case status == string(domain.BatchApplied):
        return false, nil
    }

    adjs := append([]domain.Adjustment(nil), batch.Adjustments...)
    sort.Slice(adjs, func(i, j int) bool { return adjs[i].String() < adjs[j].String() })
    for _, a := range adjs {
        if _, err = tx.Exec(ctx, `SELECT 1 FROM coefficients WHERE kind = $1 AND key = $2 FOR UPDATE`, string(a.Kind), a.Key); err != nil {
            return false, err
        }
    }
    for _, a := range adjs {
        if _, err = tx.Exec(ctx, `
            INSERT INTO coefficients (kind, key, value, updated_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (kind, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
        `, string(a.Kind), a.Key, a.Proposed, appliedAt); err != nil {
            return false, err
        }
    }

    raw, err := adjustmentsJSON(batch.Adjustments)
    if err != nil {
        return false, err
    }
    _, err = tx.Exec(ctx, `
        INSERT INTO calibration_batches (id, status, created_at, applied_at, adjustments)
        VALUES ($1, 'applied', $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET status = 'applied', applied_at = EXCLUDED.applied_at
    `, batch.ID, createdAt(batch, appliedAt), appliedAt, raw)
    return err == nil, err
}

func createdAt(b domain.CalibrationBatch, fallback time.Time) time.Time {
    if b.CreatedAt.IsZero() {
        return fallback
    }
    return b.CreatedAt
}

var _ ports.ReferenceTableRepository = (*DB)(nil)
