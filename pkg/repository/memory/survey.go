package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

type surveyRepository struct {
	mu      sync.RWMutex
	surveys map[types.SurveyID]*model.SurveyRecord
}

func newSurveyRepository() *surveyRepository {
	return &surveyRepository{
		surveys: make(map[types.SurveyID]*model.SurveyRecord),
	}
}

// copySurveyRecord creates a deep copy of a survey record
func copySurveyRecord(r *model.SurveyRecord) *model.SurveyRecord {
	copied := &model.SurveyRecord{
		ID:         r.ID,
		Notes:      r.Notes,
		Report:     r.Report,
		Status:     r.Status,
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt,
	}

	if r.Embedding != nil {
		copied.Embedding = make([]float32, len(r.Embedding))
		copy(copied.Embedding, r.Embedding)
	}

	if r.Findings != nil {
		copied.Findings = make([]model.ComponentFinding, len(r.Findings))
		for i, f := range r.Findings {
			copied.Findings[i] = f
			if f.Embedding != nil {
				copied.Findings[i].Embedding = make([]float32, len(f.Embedding))
				copy(copied.Findings[i].Embedding, f.Embedding)
			}
		}
	}

	return copied
}

func (r *surveyRepository) Create(ctx context.Context, record *model.SurveyRecord) (*model.SurveyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copySurveyRecord(record)
	if created.ID == "" {
		created.ID = types.NewSurveyID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, exists := r.surveys[created.ID]; exists {
		return nil, goerr.Wrap(model.ErrSurveyExists, "survey ID collision", goerr.V("id", created.ID))
	}

	r.surveys[created.ID] = created
	return copySurveyRecord(created), nil
}

func (r *surveyRepository) Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.surveys[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrSurveyNotFound, "survey not found", goerr.V("id", id))
	}

	return copySurveyRecord(record), nil
}

func (r *surveyRepository) FindNearest(ctx context.Context, embedding []float32, limit int, opts ...interfaces.FindNearestOption) ([]*model.HistoricalMatch, error) {
	cfg := interfaces.BuildFindNearestConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*model.HistoricalMatch, 0, len(r.surveys))
	for _, record := range r.surveys {
		if cfg.Status() != nil && record.Status != *cfg.Status() {
			continue
		}
		if len(record.Embedding) == 0 {
			continue
		}
		matches = append(matches, &model.HistoricalMatch{
			SurveyID:   record.ID,
			Similarity: cosineSimilarity(embedding, record.Embedding),
			Status:     record.Status,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors in
// [-1, 1]. Mismatched or zero-norm vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
