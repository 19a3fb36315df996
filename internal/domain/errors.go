package domain

import (
    "errors"
    "fmt"
)

// ValidationError reports missing or malformed caller input. It is the only
// failure the estimation path returns for well-formed requests.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return "validation: " + e.Message
    }
    return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
    var ve *ValidationError
    return errors.As(err, &ve)
}

var (
    ErrNotFound         = errString("not found")
    ErrInsufficientData = errString("insufficient feedback data")
    ErrBatchNotProposed = errString("calibration batch is not in proposed state")
)

type errString string
func (e errString) Error() string { return string(e) }

// ValidateCableInput guards CalculateCableSize; the calculator itself assumes
// positive power, length and voltage.
func ValidateCableInput(in CableSizingInput) error {
    if in.PowerW <= 0 {
        return &ValidationError{Field: "power_watts", Message: "must be positive"}
    }
    if in.LengthM <= 0 {
        return &ValidationError{Field: "length_meters", Message: "must be positive"}
    }
    if in.Voltage <= 0 {
        return &ValidationError{Field: "voltage", Message: "must be positive"}
    }
    if in.Phase != "" && !in.Phase.Valid() {
        return &ValidationError{Field: "phase", Message: fmt.Sprintf("unknown phase %q", in.Phase)}
    }
    return nil
}
