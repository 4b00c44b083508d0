package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/service/archive"
	"github.com/rigwatch/surveyor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Archive holds CLI flags for image archival configuration
type Archive struct {
	bucket string
}

// Flags returns CLI flags for archive configuration
func (a *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for survey image archival (disabled when empty)",
			Sources:     cli.EnvVars("SURVEYOR_ARCHIVE_BUCKET"),
			Destination: &a.bucket,
		},
	}
}

// Configure creates the archive service, or returns nil when no bucket is
// configured. The caller owns Close() of a non-nil service.
func (a *Archive) Configure(ctx context.Context) (*archive.Service, error) {
	if a.bucket == "" {
		return nil, nil
	}

	svc, err := archive.New(ctx, a.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize image archive")
	}

	logging.Default().Info("Survey image archival enabled", "bucket", a.bucket)
	return svc, nil
}
