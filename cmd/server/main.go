package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"

    httpadapter "github.com/wukjhc-create/elta-crm-sub010/internal/adapters/http"
    "github.com/wukjhc-create/elta-crm-sub010/internal/adapters/memory"
    pg "github.com/wukjhc-create/elta-crm-sub010/internal/adapters/postgres"
    "github.com/wukjhc-create/elta-crm-sub010/internal/config"
    "github.com/wukjhc-create/elta-crm-sub010/internal/platform/logger"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
    "github.com/wukjhc-create/elta-crm-sub010/internal/reftables"
    "github.com/wukjhc-create/elta-crm-sub010/internal/services/electrical"
    "github.com/wukjhc-create/elta-crm-sub010/internal/services/estimator"
    "github.com/wukjhc-create/elta-crm-sub010/internal/services/learning"
    "github.com/wukjhc-create/elta-crm-sub010/internal/workers/calibrator"
)

// repos bundles the three persistence ports; both adapters implement all of them.
type repos interface {
    ports.ReferenceTableRepository
    ports.FeedbackRepository
    ports.CalibrationRepository
}

func main() {
    cfg, cfgErr := config.Load()

    log, err := logger.New(cfg.LogMode)
    if err != nil {
        panic(err)
    }
    defer log.Sync()
    if cfgErr != nil {
        log.Warn("config", "error", cfgErr)
    }

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    var store repos
    if cfg.DatabaseURL != "" {
        db, err := pg.Connect(ctx, cfg.DatabaseURL)
        if err != nil {
            log.Fatal("db connect error", "error", err)
        }
        defer db.Close()
        if err := db.Migrate(ctx); err != nil {
            log.Fatal("db migrate error", "error", err)
        }
        store = db
    } else {
        log.Warn("DATABASE_URL not set, using in-memory repositories")
        store = memory.New()
    }

    base := reftables.MustDefault()
    if err := store.SeedCoefficients(ctx, base.Coefficients()); err != nil {
        log.Fatal("seed coefficients", "error", err)
    }
    tables := reftables.NewStore(base)
    coeffs, err := store.LoadCoefficients(ctx)
    if err != nil {
        log.Fatal("load coefficients", "error", err)
    }
    tables.Overlay(coeffs)
    log.Info("reference tables loaded", "coefficients", len(coeffs))

    e := cfg.Electrical
    limits := electrical.DefaultLimits()
    limits.MaxCircuitsPerRCD = e.MaxCircuitsPerRCD
    limits.ExistingSupplyA = e.ExistingSupplyA
    limits.LightingVoltageDropPct = e.LightingVoltageDropPct
    limits.GeneralVoltageDropPct = e.GeneralVoltageDropPct
    limits.MainBreakerHeadroom = e.MainBreakerHeadroom
    limits.UnknownDiversityFactor = e.UnknownDiversityFactor
    limits.StrictDiversityGroups = e.StrictDiversityGroups

    c := cfg.Calibration
    learn := learning.New(tables, store, store, store, learning.Options{
        MinSamples:       c.MinSamples,
        MaxStepPct:       c.MaxStepPct,
        RiskBufferMinPct: c.RiskBufferMinPct,
        RiskBufferMaxPct: c.RiskBufferMaxPct,
    }, log.With("component", "learning"))
    est := estimator.New(tables, limits, learn, log.With("component", "estimator"))

    srv := httpadapter.New(est, learn, log.With("component", "http"))
    r := chi.NewRouter()
    r.Mount("/", srv.Routes())

    // Optional scheduled proposals
    if cfg.CalibrationSchedule != "" {
        stop, err := calibrator.New(learn, log.With("component", "calibrator")).Start(ctx, cfg.CalibrationSchedule)
        if err != nil {
            log.Fatal("calibration worker", "error", err)
        }
        defer stop()
    }

    hs := &http.Server{Addr: cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
    errCh := make(chan error, 1)
    go func() { errCh <- hs.ListenAndServe() }()
    log.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    select {
    case sig := <-sigCh:
        log.Info("shutting down", "signal", sig.String())
        cancel()
        shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
        defer done()
        if err := hs.Shutdown(shutdownCtx); err != nil {
            log.Error("shutdown", "error", err)
        }
    case err := <-errCh:
        if !errors.Is(err, http.ErrServerClosed) {
            log.Error("server error", "error", err)
        }
    }
}
