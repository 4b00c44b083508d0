// Package archive stores the normalized images of persisted surveys in Cloud
// Storage so auditors can revisit what the model actually saw.
package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// Service archives survey images under surveys/<id>/<index>.jpg
type Service struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

var _ interfaces.ImageArchive = &Service{}

func New(ctx context.Context, bucketName string) (*Service, error) {
	if bucketName == "" {
		return nil, goerr.New("archive bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &Service{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

// Store uploads all images of one survey. Objects are written once; archival
// runs after the record is persisted, so a partial upload can be re-driven by
// re-submitting the survey.
func (s *Service) Store(ctx context.Context, id types.SurveyID, images []model.Image) error {
	for i, img := range images {
		name := fmt.Sprintf("surveys/%s/%03d.jpg", id, i)

		w := s.bucket.Object(name).NewWriter(ctx)
		w.ContentType = "image/jpeg"
		if _, err := w.Write(img.Data); err != nil {
			_ = w.Close()
			return goerr.Wrap(err, "failed to write archive object",
				goerr.V("object", name), goerr.V("survey_id", id))
		}
		if err := w.Close(); err != nil {
			return goerr.Wrap(err, "failed to finalize archive object",
				goerr.V("object", name), goerr.V("survey_id", id))
		}
	}

	return nil
}

// Close releases the underlying storage client
func (s *Service) Close() error {
	return s.client.Close()
}
