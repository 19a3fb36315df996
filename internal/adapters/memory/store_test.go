package memory

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

var key = domain.CoefficientKey{Kind: domain.KindComponentTime, Key: "light_point"}

func TestSeedDoesNotOverwrite(t *testing.T) {
    ctx := context.Background()
    s := New()
    require.NoError(t, s.SeedCoefficients(ctx, []domain.Coefficient{{CoefficientKey: key, Value: 30}}))
    require.NoError(t, s.SeedCoefficients(ctx, []domain.Coefficient{{CoefficientKey: key, Value: 99}}))

    cs, err := s.LoadCoefficients(ctx)
    require.NoError(t, err)
    require.Len(t, cs, 1)
    assert.Equal(t, 30.0, cs[0].Value)
}

func TestApplyAdjustmentsMarksBatchApplied(t *testing.T) {
    ctx := context.Background()
    s := New()
    at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
    b := domain.CalibrationBatch{
        ID: "b1", Status: domain.BatchProposed, CreatedAt: at,
        Adjustments: []domain.Adjustment{{CoefficientKey: key, Previous: 30, Proposed: 33}},
    }
    require.NoError(t, s.SaveBatch(ctx, b))
    applied, err := s.ApplyAdjustments(ctx, b, at)
    require.NoError(t, err)
    assert.True(t, applied)

    got, err := s.GetBatch(ctx, "b1")
    require.NoError(t, err)
    assert.Equal(t, domain.BatchApplied, got.Status)
    require.NotNil(t, got.AppliedAt)
    assert.Equal(t, at, *got.AppliedAt)

    cs, _ := s.LoadCoefficients(ctx)
    require.Len(t, cs, 1)
    assert.Equal(t, 33.0, cs[0].Value)

    // A second apply of the same batch is a no-op.
    applied, err = s.ApplyAdjustments(ctx, b, at.Add(time.Hour))
    require.NoError(t, err)
    assert.False(t, applied)
    got, _ = s.GetBatch(ctx, "b1")
    assert.Equal(t, at, *got.AppliedAt)
}

func TestGetBatchNotFound(t *testing.T) {
    _, err := New().GetBatch(context.Background(), "nope")
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFeedbackWindow(t *testing.T) {
    ctx := context.Background()
    s := New()
    base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
    for i, id := range []string{"a", "b", "c"} {
        require.NoError(t, s.UpsertFeedback(ctx, domain.CalculationFeedback{CalculationID: id, RecordedAt: base.AddDate(0, i, 0)}))
    }
    require.NoError(t, s.UpsertFeedback(ctx, domain.CalculationFeedback{CalculationID: "a", RecordedAt: base, ActualHours: 7}))

    all, err := s.ListFeedback(ctx, time.Time{}, time.Time{})
    require.NoError(t, err)
    require.Len(t, all, 3, "upsert replaces by calculation id")
    assert.Equal(t, 7.0, all[0].ActualHours)

    window, err := s.ListFeedback(ctx, base.AddDate(0, 1, 0), base.AddDate(0, 2, 0))
    require.NoError(t, err)
    require.Len(t, window, 1)
    assert.Equal(t, "b", window[0].CalculationID)
}

func TestListBatchesNewestFirst(t *testing.T) {
    ctx := context.Background()
    s := New()
    base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
    require.NoError(t, s.SaveBatch(ctx, domain.CalibrationBatch{ID: "old", CreatedAt: base}))
    require.NoError(t, s.SaveBatch(ctx, domain.CalibrationBatch{ID: "new", CreatedAt: base.Add(time.Hour)}))

    bs, err := s.ListBatches(ctx)
    require.NoError(t, err)
    require.Len(t, bs, 2)
    assert.Equal(t, "new", bs[0].ID)
}
