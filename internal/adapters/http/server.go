package httpadapter

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"

    "github.com/wukjhc-create/elta-crm-sub010/internal/platform/logger"
    "github.com/wukjhc-create/elta-crm-sub010/internal/ports"
)

// maxBodyBytes caps request bodies; an estimate with a few hundred rooms is
// well under it.
const maxBodyBytes = 1 << 20

// Server exposes the estimator and the learning engine as JSON over HTTP.
type Server struct {
    estimator  ports.Estimator
    calibrator ports.Calibrator
    log        *logger.Logger
}

func New(estimator ports.Estimator, calibrator ports.Calibrator, log *logger.Logger) *Server {
    if log == nil {
        log = logger.Nop()
    }
    return &Server{estimator: estimator, calibrator: calibrator, log: log}
}

// Routes returns a chi.Router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(middleware.Recoverer)
    r.Use(middleware.Timeout(30 * time.Second))

    r.Get("/healthz", s.getHealthz)

    r.Route("/v1", func(r chi.Router) {
        r.Post("/estimates", s.postEstimate)
        r.Post("/feedback", s.postFeedback)

        r.Route("/learning", func(r chi.Router) {
            r.Get("/metrics", s.getLearningMetrics)
            r.Get("/components", s.getComponentCalibration)
            r.Get("/buildings", s.getBuildingProfiles)
            r.Get("/risk-buffer", s.getRiskBuffer)
        })

        r.Route("/calibration", func(r chi.Router) {
            r.Post("/proposals", s.postProposal)
            r.Get("/batches", s.listBatches)
            r.Get("/batches/{id}", s.getBatch)
            r.Post("/batches/{id}/apply", s.applyBatch)
        })
    })
    return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
