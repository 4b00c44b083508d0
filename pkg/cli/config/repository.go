package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/repository/firestore"
	"github.com/rigwatch/surveyor/pkg/repository/memory"
	"github.com/rigwatch/surveyor/pkg/repository/qdrant"
	"github.com/rigwatch/surveyor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	qdrantAddr       string
	qdrantCollection string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore, qdrant or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("SURVEYOR_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("SURVEYOR_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("SURVEYOR_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "qdrant-addr",
			Usage:       "Qdrant gRPC address (required when using qdrant backend)",
			Value:       "localhost:6334",
			Sources:     cli.EnvVars("SURVEYOR_QDRANT_ADDR"),
			Destination: &r.qdrantAddr,
		},
		&cli.StringFlag{
			Name:        "qdrant-collection",
			Usage:       "Qdrant collection name",
			Value:       "surveys",
			Sources:     cli.EnvVars("SURVEYOR_QDRANT_COLLECTION"),
			Destination: &r.qdrantCollection,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "qdrant":
		repo, err := qdrant.New(ctx, r.qdrantAddr, r.qdrantCollection)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize qdrant repository")
		}
		logging.Default().Info("Using Qdrant repository",
			"addr", r.qdrantAddr,
			"collection", r.qdrantCollection,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
