package model

import (
	"time"

	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// Image is one raw or normalized component photograph
type Image struct {
	Name string
	Data []byte
}

// SurveyRequest is one incoming inspection request. It is ephemeral: created
// per request and discarded after processing except for derived artifacts.
type SurveyRequest struct {
	Images []Image
	Notes  string
}

// ComponentFinding is the analyzer's output for one image. Immutable after
// the pipeline completes; findings are one-to-one and order-preserving with
// the request's images.
type ComponentFinding struct {
	Index      int
	Label      string
	Assessment string
	Severity   types.Severity
	Score      float64
	Embedding  []float32
}

// HistoricalMatch is a read-only projection of a previously persisted survey
// retrieved by similarity. Similarity is cosine, higher-is-closer.
type HistoricalMatch struct {
	SurveyID   types.SurveyID
	Similarity float64
	Status     types.SurveyStatus
}

// SurveyRecord is the durable unit of one completed survey. Records are
// append-only: a re-analysis creates a new record, never updates one in place.
type SurveyRecord struct {
	ID         types.SurveyID
	Notes      string
	Findings   []ComponentFinding
	Report     string
	Status     types.SurveyStatus
	Confidence float64
	Embedding  []float32
	CreatedAt  time.Time
}
