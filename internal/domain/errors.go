package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Raster errors
	ErrMsgSourceUnavailable = "no raster source available"
	ErrMsgGridNotFound      = "grid file not found"
	ErrMsgInvalidGrid       = "invalid grid file"

	// Detection errors
	ErrMsgInsufficientData = "insufficient data for detection"

	// Registry errors
	ErrMsgRegistryUnavailable = "grower registry unavailable"
	ErrMsgGrowerNotFound      = "grower not found"

	// Alerting errors
	ErrMsgTransport      = "transport failure"
	ErrMsgDuplicateAlert = "alert already sent"
	ErrMsgUnknownChannel = "unknown notification channel"

	// Calendar errors
	ErrMsgCalendarUnavailable = "crop calendar unavailable"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Raster errors
	ErrSourceUnavailable = errors.New(ErrMsgSourceUnavailable)
	ErrGridNotFound      = errors.New(ErrMsgGridNotFound)
	ErrInvalidGrid       = errors.New(ErrMsgInvalidGrid)

	// Detection errors
	ErrInsufficientData = errors.New(ErrMsgInsufficientData)

	// Registry errors
	ErrRegistryUnavailable = errors.New(ErrMsgRegistryUnavailable)
	ErrGrowerNotFound      = errors.New(ErrMsgGrowerNotFound)

	// Alerting errors
	ErrTransport      = errors.New(ErrMsgTransport)
	ErrDuplicateAlert = errors.New(ErrMsgDuplicateAlert)
	ErrUnknownChannel = errors.New(ErrMsgUnknownChannel)

	// Calendar errors
	ErrCalendarUnavailable = errors.New(ErrMsgCalendarUnavailable)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
