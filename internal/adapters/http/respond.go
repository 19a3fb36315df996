package httpadapter

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"

    "github.com/go-chi/chi/v5/middleware"

    "github.com/wukjhc-create/elta-crm-sub010/internal/domain"
)

type errorEnvelope struct {
    Error errorBody `json:"error"`
}

type errorBody struct {
    Message string `json:"message"`
    Code    string `json:"code,omitempty"`
    Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
    writeErrorBody(w, status, errorBody{Message: message, Code: code})
}

func writeErrorBody(w http.ResponseWriter, status int, body errorBody) {
    body.Message = strings.TrimSpace(body.Message)
    if body.Message == "" {
        body.Message = http.StatusText(status)
    }
    writeJSON(w, status, errorEnvelope{Error: body})
}

// fail maps service errors onto status codes. Anything unrecognized is a 500
// and gets logged; the client only sees the status text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
    var ve *domain.ValidationError
    switch {
    case errors.As(err, &ve):
        writeErrorBody(w, http.StatusBadRequest, errorBody{Message: err.Error(), Code: "validation_failed", Field: ve.Field})
    case errors.Is(err, domain.ErrNotFound):
        writeError(w, http.StatusNotFound, err.Error(), "not_found")
    case errors.Is(err, domain.ErrBatchNotProposed):
        writeError(w, http.StatusConflict, err.Error(), "batch_not_proposed")
    default:
        s.log.Error("request failed",
            "method", r.Method,
            "path", r.URL.Path,
            "request_id", middleware.GetReqID(r.Context()),
            "error", err,
        )
        writeError(w, http.StatusInternalServerError, "", "internal")
    }
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
    r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(dst); err != nil {
        return fmt.Errorf("invalid JSON body: %w", err)
    }
    if dec.More() {
        return errors.New("invalid JSON body: trailing data")
    }
    return nil
}
