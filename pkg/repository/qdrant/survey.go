package qdrant

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// surveyPayload is the JSON shape of a survey record inside a point payload.
// The embedding lives in the point vector, not the payload.
type surveyPayload struct {
	ID         types.SurveyID           `json:"id"`
	Notes      string                   `json:"notes"`
	Findings   []model.ComponentFinding `json:"findings"`
	Report     string                   `json:"report"`
	Status     string                   `json:"status"`
	Confidence float64                  `json:"confidence"`
	CreatedAt  time.Time                `json:"created_at"`
}

type surveyRepository struct {
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

func (r *surveyRepository) ensureCollection(ctx context.Context, dimension int) error {
	list, err := r.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return goerr.Wrap(err, "failed to list qdrant collections")
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == r.collection {
			return nil
		}
	}

	_, err = r.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create qdrant collection", goerr.V("collection", r.collection))
	}
	return nil
}

func (r *surveyRepository) Create(ctx context.Context, record *model.SurveyRecord) (*model.SurveyRecord, error) {
	created := *record
	if created.ID == "" {
		created.ID = types.NewSurveyID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	existing, err := r.getPoint(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, goerr.Wrap(model.ErrSurveyExists, "survey ID collision", goerr.V("id", created.ID))
	}

	raw, err := json.Marshal(&surveyPayload{
		ID:         created.ID,
		Notes:      created.Notes,
		Findings:   created.Findings,
		Report:     created.Report,
		Status:     created.Status.String(),
		Confidence: created.Confidence,
		CreatedAt:  created.CreatedAt,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal survey payload", goerr.V("id", created.ID))
	}

	wait := true
	_, err = r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{
			{
				Id: &pb.PointId{
					PointIdOptions: &pb.PointId_Uuid{Uuid: string(created.ID)},
				},
				Vectors: &pb.Vectors{
					VectorsOptions: &pb.Vectors_Vector{
						Vector: &pb.Vector{Data: created.Embedding},
					},
				},
				Payload: map[string]*pb.Value{
					"record": {Kind: &pb.Value_StringValue{StringValue: string(raw)}},
					"status": {Kind: &pb.Value_StringValue{StringValue: created.Status.String()}},
				},
			},
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert survey point", goerr.V("id", created.ID))
	}

	return &created, nil
}

// getPoint fetches one point by ID. Returns nil, nil when the point does not exist.
func (r *surveyRepository) getPoint(ctx context.Context, id types.SurveyID) (*pb.RetrievedPoint, error) {
	resp, err := r.points.Get(ctx, &pb.GetPoints{
		CollectionName: r.collection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Uuid{Uuid: string(id)}},
		},
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
		WithVectors: &pb.WithVectorsSelector{
			SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get survey point", goerr.V("id", id))
	}

	result := resp.GetResult()
	if len(result) == 0 {
		return nil, nil
	}
	return result[0], nil
}

func (r *surveyRepository) Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error) {
	point, err := r.getPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	if point == nil {
		return nil, goerr.Wrap(model.ErrSurveyNotFound, "survey not found", goerr.V("id", id))
	}

	raw := point.GetPayload()["record"].GetStringValue()
	var payload surveyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal survey payload", goerr.V("id", id))
	}

	stored, err := types.ParseSurveyStatus(payload.Status)
	if err != nil {
		return nil, goerr.Wrap(err, "corrupted survey status in payload", goerr.V("id", id))
	}

	return &model.SurveyRecord{
		ID:         payload.ID,
		Notes:      payload.Notes,
		Findings:   payload.Findings,
		Report:     payload.Report,
		Status:     stored,
		Confidence: payload.Confidence,
		Embedding:  point.GetVectors().GetVector().GetData(),
		CreatedAt:  payload.CreatedAt,
	}, nil
}

func (r *surveyRepository) FindNearest(ctx context.Context, embedding []float32, limit int, opts ...interfaces.FindNearestOption) ([]*model.HistoricalMatch, error) {
	cfg := interfaces.BuildFindNearestConfig(opts...)

	req := &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	}

	if cfg.Status() != nil {
		req.Filter = &pb.Filter{
			Must: []*pb.Condition{
				{
					ConditionOneOf: &pb.Condition_Field{
						Field: &pb.FieldCondition{
							Key: "status",
							Match: &pb.Match{
								MatchValue: &pb.Match_Keyword{Keyword: cfg.Status().String()},
							},
						},
					},
				},
			},
		}
	}

	resp, err := r.points.Search(ctx, req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search survey points")
	}

	seen := make(map[types.SurveyID]bool, limit)
	matches := make([]*model.HistoricalMatch, 0, limit)
	for _, point := range resp.GetResult() {
		id := types.SurveyID(point.GetId().GetUuid())
		if seen[id] {
			continue
		}
		seen[id] = true

		matches = append(matches, &model.HistoricalMatch{
			SurveyID:   id,
			Similarity: float64(point.GetScore()),
			Status:     types.SurveyStatus(point.GetPayload()["status"].GetStringValue()),
		})
	}

	return matches, nil
}
