package interfaces

import (
	"context"

	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// VisionClient is the opaque vision-language capability: one image in, one
// textual assessment out. A failed or timed-out call is an error; the caller
// must never substitute a default assessment.
type VisionClient interface {
	Inspect(ctx context.Context, image model.Image) (string, error)
}

// ImageArchive stores the normalized images of a persisted survey for later
// audit. Archival is best-effort and runs outside the request lifecycle.
type ImageArchive interface {
	Store(ctx context.Context, id types.SurveyID, images []model.Image) error
}
