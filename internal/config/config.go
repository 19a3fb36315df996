package config

import (
    "fmt"
    "os"
    "strconv"
    "strings"

    "github.com/joho/godotenv"
)

type Config struct {
    Env         string
    ListenAddr  string
    DatabaseURL string
    LogMode     string

    // CalibrationSchedule is a cron spec for proposal runs; "off" disables the worker.
    CalibrationSchedule string

    Electrical  Electrical
    Calibration Calibration
}

// Electrical holds the code-compliance limits the calculators run with.
type Electrical struct {
    MaxCircuitsPerRCD      int
    ExistingSupplyA        float64
    LightingVoltageDropPct float64
    GeneralVoltageDropPct  float64
    MainBreakerHeadroom    float64
    UnknownDiversityFactor float64
    StrictDiversityGroups  bool
}

// Calibration bounds the learning engine.
type Calibration struct {
    MinSamples       int
    MaxStepPct       float64
    RiskBufferMinPct float64
    RiskBufferMaxPct float64
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func Load() (Config, error) {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()

    cfg := Config{
        Env:                 getenv("APP_ENV", "development"),
        ListenAddr:          getenv("LISTEN_ADDR", ":8080"),
        DatabaseURL:         os.Getenv("DATABASE_URL"),
        LogMode:             getenv("LOG_MODE", "development"),
        CalibrationSchedule: schedule(getenv("CALIBRATION_SCHEDULE", "30 2 * * *")),
        Electrical: Electrical{
            MaxCircuitsPerRCD:      getenvInt("MAX_CIRCUITS_PER_RCD", 8),
            ExistingSupplyA:        getenvFloat("EXISTING_SUPPLY_A", 25),
            LightingVoltageDropPct: getenvFloat("LIGHTING_VDROP_PCT", 3),
            GeneralVoltageDropPct:  getenvFloat("GENERAL_VDROP_PCT", 5),
            MainBreakerHeadroom:    getenvFloat("MAIN_BREAKER_HEADROOM", 1.2),
            UnknownDiversityFactor: getenvFloat("UNKNOWN_DIVERSITY_FACTOR", 1.0),
            StrictDiversityGroups:  getenvBool("STRICT_DIVERSITY_GROUPS", false),
        },
        Calibration: Calibration{
            MinSamples:       getenvInt("CALIBRATION_MIN_SAMPLES", 5),
            MaxStepPct:       getenvFloat("CALIBRATION_MAX_STEP_PCT", 20),
            RiskBufferMinPct: getenvFloat("RISK_BUFFER_MIN_PCT", 3),
            RiskBufferMaxPct: getenvFloat("RISK_BUFFER_MAX_PCT", 25),
        },
    }
    if err := cfg.validate(); err != nil {
        return cfg, err
    }
    if cfg.DatabaseURL == "" {
        // Not fatal: the server falls back to in-memory adapters.
        return cfg, fmt.Errorf("DATABASE_URL not set")
    }
    return cfg, nil
}

func (c *Config) validate() error {
    e := &c.Electrical
    if e.MaxCircuitsPerRCD < 1 {
        return fmt.Errorf("MAX_CIRCUITS_PER_RCD must be >= 1, got %d", e.MaxCircuitsPerRCD)
    }
    if e.UnknownDiversityFactor <= 0 || e.UnknownDiversityFactor > 1 {
        return fmt.Errorf("UNKNOWN_DIVERSITY_FACTOR must be in (0,1], got %g", e.UnknownDiversityFactor)
    }
    if e.MainBreakerHeadroom < 1 {
        return fmt.Errorf("MAIN_BREAKER_HEADROOM must be >= 1, got %g", e.MainBreakerHeadroom)
    }
    cal := &c.Calibration
    if cal.MinSamples < 1 {
        return fmt.Errorf("CALIBRATION_MIN_SAMPLES must be >= 1, got %d", cal.MinSamples)
    }
    if cal.MaxStepPct <= 0 || cal.MaxStepPct >= 100 {
        return fmt.Errorf("CALIBRATION_MAX_STEP_PCT must be in (0,100), got %g", cal.MaxStepPct)
    }
    if cal.RiskBufferMinPct > cal.RiskBufferMaxPct {
        return fmt.Errorf("RISK_BUFFER_MIN_PCT %g exceeds RISK_BUFFER_MAX_PCT %g", cal.RiskBufferMinPct, cal.RiskBufferMaxPct)
    }
    return nil
}

func schedule(v string) string {
    if strings.EqualFold(strings.TrimSpace(v), "off") {
        return ""
    }
    return v
}

func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var out int
        _, err := fmt.Sscanf(v, "%d", &out)
        if err == nil { return out }
    }
    return def
}

func getenvFloat(key string, def float64) float64 {
    if v := strings.TrimSpace(os.Getenv(key)); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil { return f }
    }
    return def
}

func getenvBool(key string, def bool) bool {
    if v := strings.TrimSpace(os.Getenv(key)); v != "" {
        if b, err := strconv.ParseBool(v); err == nil { return b }
    }
    return def
}
