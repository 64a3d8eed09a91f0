package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDivisionGuard marks a ratio that is undefined because HDL is zero.
	ErrDivisionGuard = errors.New("ratio undefined: hdl is zero")
	// ErrDataAbsent means a window holds no logged days. It is not a zero score.
	ErrDataAbsent = errors.New("no activity logged in window")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrExtractionFailed is matched by every *ExtractionError.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrUpstream wraps failures of the OCR engine or another remote collaborator.
	ErrUpstream = errors.New("upstream service failed")
)

// ValidationError reports a missing or out-of-range required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MissingFields builds a ValidationError naming every absent field.
func MissingFields(fields []string) *ValidationError {
	return &ValidationError{
		Field:  strings.Join(fields, ", "),
		Reason: "required",
	}
}

const (
	ReasonNoText       = "no text"
	ReasonInsufficient = "insufficient data"
)

// ExtractionError carries the raw OCR text and whatever was recovered so a
// human can correct the values instead of re-uploading.
type ExtractionError struct {
	Reason  string
	RawText string
	Partial map[string]any
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}
