package calibrator

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

type fakeProposer struct {
    mu      sync.Mutex
    calls   int
    release chan struct{}
    batch   domain.CalibrationBatch
    err     error
}

func (f *fakeProposer) ProposeCalibration(_ context.Context) (domain.CalibrationBatch, error) {
    f.mu.Lock()
    f.calls++
    f.mu.Unlock()
    if f.release != nil {
        <-f.release
    }
    return f.batch, f.err
}

func TestRunOncePassesThroughBatch(t *testing.T) {
    p := &fakeProposer{batch: domain.CalibrationBatch{ID: "b1", Status: domain.BatchProposed, Adjustments: []domain.Adjustment{{Proposed: 1}}}}
    b, skipped, err := New(p, nil).RunOnce(context.Background())
    require.NoError(t, err)
    assert.False(t, skipped)
    assert.Equal(t, "b1", b.ID)
}

func TestRunOnceReportsError(t *testing.T) {
    p := &fakeProposer{err: errors.New("db down")}
    _, _, err := New(p, nil).RunOnce(context.Background())
    assert.EqualError(t, err, "db down")
}

func TestRunOnceSkipsOverlappingRun(t *testing.T) {
    p := &fakeProposer{release: make(chan struct{})}
    r := New(p, nil)

    done := make(chan struct{})
    go func() {
        defer close(done)
        _, _, _ = r.RunOnce(context.Background())
    }()
    require.Eventually(t, func() bool { return r.running.Load() }, time.Second, time.Millisecond)

    _, skipped, err := r.RunOnce(context.Background())
    require.NoError(t, err)
    assert.True(t, skipped)

    close(p.release)
    <-done
    assert.Equal(t, 1, p.calls)
    assert.False(t, r.running.Load())
}

func TestStartRejectsBadSchedule(t *testing.T) {
    _, err := New(&fakeProposer{}, nil).Start(context.Background(), "not a cron spec")
    assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
    stop, err := New(&fakeProposer{}, nil).Start(context.Background(), "@every 1h")
    require.NoError(t, err)
    stop()
}
