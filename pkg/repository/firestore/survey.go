package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// findingDoc is the Firestore representation of model.ComponentFinding
type findingDoc struct {
	Index      int       `firestore:"Index"`
	Label      string    `firestore:"Label"`
	Assessment string    `firestore:"Assessment"`
	Severity   string    `firestore:"Severity"`
	Score      float64   `firestore:"Score"`
	Embedding  []float32 `firestore:"Embedding,omitempty"`
}

// surveyDoc is the Firestore document representation of model.SurveyRecord.
// Embedding is stored as firestore.Vector32 so that FindNearest vector search
// works; Distance is populated only by vector queries.
type surveyDoc struct {
	ID         types.SurveyID     `firestore:"ID"`
	Notes      string             `firestore:"Notes"`
	Findings   []findingDoc       `firestore:"Findings"`
	Report     string             `firestore:"Report"`
	Status     string             `firestore:"Status"`
	Confidence float64            `firestore:"Confidence"`
	Embedding  firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt  time.Time          `firestore:"CreatedAt"`
	Distance   float64            `firestore:"Distance,omitempty"`
}

func toSurveyDoc(r *model.SurveyRecord) *surveyDoc {
	doc := &surveyDoc{
		ID:         r.ID,
		Notes:      r.Notes,
		Report:     r.Report,
		Status:     r.Status.String(),
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt,
	}
	if len(r.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(r.Embedding)
	}
	doc.Findings = make([]findingDoc, len(r.Findings))
	for i, f := range r.Findings {
		doc.Findings[i] = findingDoc{
			Index:      f.Index,
			Label:      f.Label,
			Assessment: f.Assessment,
			Severity:   f.Severity.String(),
			Score:      f.Score,
			Embedding:  f.Embedding,
		}
	}
	return doc
}

func fromSurveyDoc(d *surveyDoc) *model.SurveyRecord {
	r := &model.SurveyRecord{
		ID:         d.ID,
		Notes:      d.Notes,
		Report:     d.Report,
		Status:     types.SurveyStatus(d.Status),
		Confidence: d.Confidence,
		CreatedAt:  d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		r.Embedding = []float32(d.Embedding)
	}
	r.Findings = make([]model.ComponentFinding, len(d.Findings))
	for i, f := range d.Findings {
		r.Findings[i] = model.ComponentFinding{
			Index:      f.Index,
			Label:      f.Label,
			Assessment: f.Assessment,
			Severity:   types.Severity(f.Severity),
			Score:      f.Score,
			Embedding:  f.Embedding,
		}
	}
	return r
}

func docToSurvey(doc *firestore.DocumentSnapshot) (*model.SurveyRecord, error) {
	var d surveyDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromSurveyDoc(&d), nil
}

type surveyRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSurveyRepository(client *firestore.Client) *surveyRepository {
	return &surveyRepository{
		client: client,
	}
}

func (r *surveyRepository) surveysCollection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "surveys")
}

func (r *surveyRepository) Create(ctx context.Context, record *model.SurveyRecord) (*model.SurveyRecord, error) {
	created := *record
	if created.ID == "" {
		created.ID = types.NewSurveyID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.surveysCollection().Doc(string(created.ID))

	// Create (not Set) rejects an existing document, keeping the store
	// append-only even on an ID collision.
	if _, err := docRef.Create(ctx, toSurveyDoc(&created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(model.ErrSurveyExists, "survey ID collision", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create survey", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *surveyRepository) Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error) {
	doc, err := r.surveysCollection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrSurveyNotFound, "survey not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get survey", goerr.V("id", id))
	}

	record, err := docToSurvey(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal survey", goerr.V("id", id))
	}

	return record, nil
}

func (r *surveyRepository) FindNearest(ctx context.Context, embedding []float32, limit int, opts ...interfaces.FindNearestOption) ([]*model.HistoricalMatch, error) {
	cfg := interfaces.BuildFindNearestConfig(opts...)

	query := r.surveysCollection().Query
	if cfg.Status() != nil {
		query = query.Where("Status", "==", cfg.Status().String())
	}

	vq := query.FindNearest("Embedding", firestore.Vector32(embedding), limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: "Distance"})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	seen := make(map[types.SurveyID]bool, limit)
	matches := make([]*model.HistoricalMatch, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var d surveyDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal survey from vector search")
		}

		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true

		// Cosine distance is in [0, 2]; similarity mirrors the other
		// backends' higher-is-closer convention.
		matches = append(matches, &model.HistoricalMatch{
			SurveyID:   d.ID,
			Similarity: 1.0 - d.Distance,
			Status:     types.SurveyStatus(d.Status),
		})
	}

	return matches, nil
}
