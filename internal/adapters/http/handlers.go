package httpadapter

import (
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

func (s *Server) postEstimate(w http.ResponseWriter, r *http.Request) {
    var req domain.EstimateRequest
    if err := decodeJSON(w, r, &req); err != nil {
        writeError(w, http.StatusBadRequest, err.Error(), "invalid_request")
        return
    }
    res, err := s.estimator.Estimate(r.Context(), req)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, res)
}

func (s *Server) postFeedback(w http.ResponseWriter, r *http.Request) {
    var fb domain.CalculationFeedback
    if err := decodeJSON(w, r, &fb); err != nil {
        writeError(w, http.StatusBadRequest, err.Error(), "invalid_request")
        return
    }
    out, err := s.calibrator.RecordFeedback(r.Context(), fb)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, out)
}

func (s *Server) getLearningMetrics(w http.ResponseWriter, r *http.Request) {
    from, err := queryTime(r, "from")
    if err != nil {
        writeErrorBody(w, http.StatusBadRequest, errorBody{Message: err.Error(), Code: "invalid_request", Field: "from"})
        return
    }
    to, err := queryTime(r, "to")
    if err != nil {
        writeErrorBody(w, http.StatusBadRequest, errorBody{Message: err.Error(), Code: "invalid_request", Field: "to"})
        return
    }
    m, err := s.calibrator.AnalyzeLearningMetricsBetween(r.Context(), from, to)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, m)
}

func (s *Server) getComponentCalibration(w http.ResponseWriter, r *http.Request) {
    cs, err := s.calibrator.AnalyzeComponentCalibration(r.Context())
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"components": cs})
}

func (s *Server) getBuildingProfiles(w http.ResponseWriter, r *http.Request) {
    bs, err := s.calibrator.AnalyzeBuildingProfiles(r.Context())
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"buildings": bs})
}

func (s *Server) getRiskBuffer(w http.ResponseWriter, r *http.Request) {
    raw := strings.TrimSpace(r.URL.Query().Get("complexity"))
    score, err := strconv.ParseFloat(raw, 64)
    if err != nil || score < 0 {
        writeError(w, http.StatusBadRequest, "complexity must be a non-negative number", "invalid_request")
        return
    }
    sug, err := s.calibrator.GetSuggestedRiskBuffer(r.Context(), score)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, sug)
}

func (s *Server) postProposal(w http.ResponseWriter, r *http.Request) {
    b, err := s.calibrator.ProposeCalibration(r.Context())
    if err != nil {
        s.fail(w, r, err)
        return
    }
    // An empty proposal is not stored; say so with 200 instead of 201.
    status := http.StatusCreated
    if len(b.Adjustments) == 0 {
        status = http.StatusOK
    }
    writeJSON(w, status, b)
}

func (s *Server) listBatches(w http.ResponseWriter, r *http.Request) {
    bs, err := s.calibrator.ListBatches(r.Context())
    if err != nil {
        s.fail(w, r, err)
        return
    }
    if bs == nil {
        bs = []domain.CalibrationBatch{}
    }
    writeJSON(w, http.StatusOK, map[string]any{"batches": bs})
}

func (s *Server) getBatch(w http.ResponseWriter, r *http.Request) {
    b, err := s.calibrator.GetBatch(r.Context(), chi.URLParam(r, "id"))
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, b)
}

func (s *Server) applyBatch(w http.ResponseWriter, r *http.Request) {
    b, err := s.calibrator.ApplyBatch(r.Context(), chi.URLParam(r, "id"))
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, b)
}

// queryTime reads an RFC 3339 timestamp or a plain date (midnight UTC); a
// missing parameter is the zero time.
func queryTime(r *http.Request, name string) (time.Time, error) {
    raw := strings.TrimSpace(r.URL.Query().Get(name))
    if raw == "" {
        return time.Time{}, nil
    }
    if t, err := time.Parse(time.RFC3339, raw); err == nil {
        return t, nil
    }
    t, err := time.Parse(time.DateOnly, raw)
    if err != nil {
        return time.Time{}, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", name)
    }
    return t, nil
}
