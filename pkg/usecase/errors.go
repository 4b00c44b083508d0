package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrInvalidInput rejects a malformed survey request before the
	// pipeline starts; nothing is analyzed or persisted.
	ErrInvalidInput = errors.New("invalid survey input")

	// ErrInference aborts the whole survey when any component analysis
	// fails. No partial record is persisted.
	ErrInference = errors.New("component analysis failed")

	// ErrPersistence signals that a verdict was computed but the record
	// could not be written; the caller decides whether to retry.
	ErrPersistence = errors.New("survey record not persisted")
)

// Context keys for error values
const (
	SurveyIDKey  = "survey_id"
	ComponentKey = "component"
)
