package qdrant

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Qdrant is a repository backed by a self-hosted Qdrant instance over gRPC
type Qdrant struct {
	conn   *grpc.ClientConn
	survey *surveyRepository
}

var _ interfaces.Repository = &Qdrant{}

// New connects to Qdrant at addr and ensures the survey collection exists
// with a cosine vector index of the standard embedding dimension.
func New(ctx context.Context, addr, collection string) (*Qdrant, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to dial qdrant", goerr.V("addr", addr))
	}

	q := &Qdrant{
		conn: conn,
		survey: &surveyRepository{
			points:      pb.NewPointsClient(conn),
			collections: pb.NewCollectionsClient(conn),
			collection:  collection,
		},
	}

	if err := q.survey.ensureCollection(ctx, model.EmbeddingDimension); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, goerr.Wrap(err, "failed to ensure collection (and close connection)",
				goerr.V("closeError", closeErr.Error()))
		}
		return nil, err
	}

	return q, nil
}

func (q *Qdrant) Survey() interfaces.SurveyRepository {
	return q.survey
}

func (q *Qdrant) Close() error {
	return q.conn.Close()
}
