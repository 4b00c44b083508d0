package interfaces

import (
	"context"

	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// SurveyRepository defines the interface for SurveyRecord persistence.
// Records are append-only: there is no update or delete.
type SurveyRepository interface {
	// Create persists a new survey record. The record's ID must be unique;
	// an existing ID is rejected rather than overwritten.
	Create(ctx context.Context, record *model.SurveyRecord) (*model.SurveyRecord, error)

	// Get retrieves a survey record by ID
	Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error)

	// FindNearest returns up to limit historical matches ordered by
	// similarity, closest first. An empty store yields an empty slice, not
	// an error. A result set never contains duplicate survey IDs.
	FindNearest(ctx context.Context, embedding []float32, limit int, opts ...FindNearestOption) ([]*model.HistoricalMatch, error)
}
