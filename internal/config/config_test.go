package config

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("DATABASE_URL", "postgres://localhost:5432/elta")

    cfg, err := Load()
    require.NoError(t, err)

    assert.Equal(t, ":8080", cfg.ListenAddr)
    assert.Equal(t, 8, cfg.Electrical.MaxCircuitsPerRCD)
    assert.Equal(t, 3.0, cfg.Electrical.LightingVoltageDropPct)
    assert.Equal(t, 5.0, cfg.Electrical.GeneralVoltageDropPct)
    assert.Equal(t, 1.0, cfg.Electrical.UnknownDiversityFactor)
    assert.Equal(t, 5, cfg.Calibration.MinSamples)
    assert.Equal(t, 20.0, cfg.Calibration.MaxStepPct)
}

func TestLoadWithoutDatabaseIsWarning(t *testing.T) {
    t.Setenv("DATABASE_URL", "")

    cfg, err := Load()
    assert.Error(t, err)
    assert.Equal(t, "development", cfg.Env)
}

func TestLoadOverrides(t *testing.T) {
    t.Setenv("DATABASE_URL", "postgres://localhost:5432/elta")
    t.Setenv("MAX_CIRCUITS_PER_RCD", "6")
    t.Setenv("EXISTING_SUPPLY_A", "35")
    t.Setenv("STRICT_DIVERSITY_GROUPS", "true")
    t.Setenv("CALIBRATION_MAX_STEP_PCT", "10")

    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, 6, cfg.Electrical.MaxCircuitsPerRCD)
    assert.Equal(t, 35.0, cfg.Electrical.ExistingSupplyA)
    assert.True(t, cfg.Electrical.StrictDiversityGroups)
    assert.Equal(t, 10.0, cfg.Calibration.MaxStepPct)
}

func TestLoadRejectsBadBounds(t *testing.T) {
    t.Setenv("DATABASE_URL", "postgres://localhost:5432/elta")

    t.Run("diversity factor above one", func(t *testing.T) {
        t.Setenv("UNKNOWN_DIVERSITY_FACTOR", "1.5")
        _, err := Load()
        assert.ErrorContains(t, err, "UNKNOWN_DIVERSITY_FACTOR")
    })

    t.Run("step bound out of range", func(t *testing.T) {
        t.Setenv("CALIBRATION_MAX_STEP_PCT", "150")
        _, err := Load()
        assert.ErrorContains(t, err, "CALIBRATION_MAX_STEP_PCT")
    })
}

func TestCalibrationScheduleOff(t *testing.T) {
    t.Setenv("DATABASE_URL", "postgres://localhost:5432/elta")
    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, "30 2 * * *", cfg.CalibrationSchedule)

    t.Setenv("CALIBRATION_SCHEDULE", "off")
    cfg, err = Load()
    require.NoError(t, err)
    assert.Empty(t, cfg.CalibrationSchedule)
}
