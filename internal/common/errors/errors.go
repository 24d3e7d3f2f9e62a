// Package errors provides standardized error handling for the query
// resolution pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLocationNotFound    ErrorCode = "LOCATION_NOT_FOUND"
	ErrCodeImplausibleBBox     ErrorCode = "IMPLAUSIBLE_BBOX"
	ErrCodeGeocoderUnavailable ErrorCode = "GEOCODER_UNAVAILABLE"
	ErrCodeGeocoderTimeout     ErrorCode = "GEOCODER_TIMEOUT"

	ErrCodeMalformedTemporal ErrorCode = "MALFORMED_TEMPORAL"
	ErrCodeComparisonPartial ErrorCode = "COMPARISON_PARTIAL"
	ErrCodeComparisonNoDates ErrorCode = "COMPARISON_NO_DATES"

	ErrCodeInvalidEntities ErrorCode = "INVALID_ENTITIES"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
)

// Sentinels for the pipeline error taxonomy. Components wrap these with
// fmt.Errorf("%w: ...") so callers can branch with errors.Is.
var (
	// ErrNotFound means every location strategy was exhausted. The caller
	// must ask the user for a more specific place, never substitute a
	// default coordinate.
	ErrNotFound = errors.New("location not found")

	// ErrPartialFailure means the comparison parser resolved only one side.
	// The parsed side is preserved on the PartialError wrapper.
	ErrPartialFailure = errors.New("comparison partially resolved")

	// ErrMalformedInput marks non-numeric or out-of-range temporal fields.
	// Recovered locally as "no temporal filter" plus a completeness issue.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUpstreamUnavailable marks a geocoder transport error or timeout.
	// Recovered locally by advancing the cascade.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap maps error codes back onto the taxonomy sentinels so that both
// styles interoperate under errors.Is.
func (e *StandardError) Unwrap() error {
	switch e.Code {
	case ErrCodeLocationNotFound:
		return ErrNotFound
	case ErrCodeComparisonPartial, ErrCodeComparisonNoDates:
		return ErrPartialFailure
	case ErrCodeMalformedTemporal, ErrCodeInvalidEntities:
		return ErrMalformedInput
	case ErrCodeGeocoderUnavailable, ErrCodeGeocoderTimeout:
		return ErrUpstreamUnavailable
	}
	return nil
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLocationNotFoundError creates a non-retryable resolution error for a
// place name no strategy could resolve.
func NewLocationNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocationNotFound,
		Message:   "Location could not be resolved by any strategy",
		Details:   fmt.Sprintf("location: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImplausibleBBoxError creates a non-retryable error for a geocoder hit
// whose extent fails the size sanity check.
func NewImplausibleBBoxError(strategy, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeImplausibleBBox,
		Message:   "Geocoder returned an implausible bounding box",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"strategy": strategy},
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocoderUnavailableError creates a retryable upstream transport error.
func NewGeocoderUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocoderUnavailable,
		Message:   "Geocoding provider request failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocoderTimeoutError creates a retryable upstream timeout error.
func NewGeocoderTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocoderTimeout,
		Message:   "Geocoding provider timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedTemporalError creates a non-retryable error for temporal
// fields that cannot be interpreted (month outside 1-12, non-numeric year).
func NewMalformedTemporalError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedTemporal,
		Message:   "Temporal fields could not be interpreted",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewComparisonPartialError creates a non-retryable error for a comparison
// query where only one side parsed. The parsed interval and the missing
// side label ride along in Metadata.
func NewComparisonPartialError(parsedSide, parsedInterval, missingSide string) *StandardError {
	return &StandardError{
		Code:    ErrCodeComparisonPartial,
		Message: fmt.Sprintf("Only the %s date parsed; please provide the %s date", parsedSide, missingSide),
		Details: fmt.Sprintf("%s: %s", parsedSide, parsedInterval),
		Metadata: map[string]interface{}{
			"parsedSide":     parsedSide,
			"parsedInterval": parsedInterval,
			"missingSide":    missingSide,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewComparisonNoDatesError creates a non-retryable error for a comparison
// query with no parseable date on either side.
func NewComparisonNoDatesError() *StandardError {
	return &StandardError{
		Code:      ErrCodeComparisonNoDates,
		Message:   "No dates found; please provide an explicit before and after date",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidEntitiesError creates a non-retryable error for an inbound
// entity payload that fails schema validation.
func NewInvalidEntitiesError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidEntities,
		Message:   "Extracted entities failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache backend error. Cache
// loss is never a correctness issue, so callers treat this as a miss.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Location cache backend error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
