package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
	"github.com/rigwatch/surveyor/pkg/service/imaging"
	"github.com/rigwatch/surveyor/pkg/utils/async"
	"github.com/rigwatch/surveyor/pkg/utils/logging"
)

// Submit runs the whole inspection pipeline for one survey request:
// normalize, analyze every image, retrieve historical context, score the
// verdict, synthesize the report, and persist the record. The per-image
// analyses run concurrently but all must succeed before the pipeline
// advances; one failed component fails the whole survey.
func (uc *UseCases) Submit(ctx context.Context, req *model.SurveyRequest) (*model.SurveyRecord, error) {
	if req == nil || len(req.Images) == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "survey requires at least one image")
	}

	images := make([]model.Image, len(req.Images))
	for i, img := range req.Images {
		data, err := imaging.Normalize(img.Data)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidInput, "failed to normalize image",
				goerr.V(ComponentKey, labelFor(img, i)),
				goerr.V("cause", err.Error()))
		}
		images[i] = model.Image{Name: labelFor(img, i), Data: data}
	}

	findings, err := uc.analyzeComponents(ctx, images)
	if err != nil {
		return nil, err
	}

	queryEmbedding := meanEmbedding(findings)
	matches := uc.retrieveHistory(ctx, queryEmbedding)

	verdict, scored, err := evaluateVerdict(uc.profile, findings, matches)
	if err != nil {
		return nil, err
	}

	report := renderReport(uc.profile, req.Notes, scored, matches, verdict)

	record := &model.SurveyRecord{
		ID:         types.NewSurveyID(),
		Notes:      req.Notes,
		Findings:   scored,
		Report:     report,
		Status:     verdict.Status,
		Confidence: verdict.Confidence,
		Embedding:  queryEmbedding,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := uc.repo.Survey().Create(ctx, record)
	if err != nil {
		return nil, goerr.Wrap(ErrPersistence, "verdict computed but record not recorded",
			goerr.V(SurveyIDKey, record.ID),
			goerr.V("status", verdict.Status),
			goerr.V("cause", err.Error()))
	}

	if uc.archive != nil {
		id := created.ID
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.archive.Store(ctx, id, images)
		})
	}

	return created, nil
}

// Get retrieves a persisted survey record by ID
func (uc *UseCases) Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error) {
	return uc.repo.Survey().Get(ctx, id)
}

// FindSimilar returns up to limit historical matches for a persisted survey,
// excluding the survey itself, optionally filtered by status.
func (uc *UseCases) FindSimilar(ctx context.Context, id types.SurveyID, limit int, statusFilter *types.SurveyStatus) ([]*model.HistoricalMatch, error) {
	if limit <= 0 {
		limit = uc.profile.Policy.HistoryLimit
	}

	record, err := uc.repo.Survey().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var opts []interfaces.FindNearestOption
	if statusFilter != nil {
		opts = append(opts, interfaces.WithStatus(*statusFilter))
	}

	// One extra result absorbs the query survey matching itself.
	matches, err := uc.repo.Survey().FindNearest(ctx, record.Embedding, limit+1, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search similar surveys", goerr.V(SurveyIDKey, id))
	}

	filtered := make([]*model.HistoricalMatch, 0, limit)
	for _, m := range matches {
		if m.SurveyID == id {
			continue
		}
		filtered = append(filtered, m)
		if len(filtered) >= limit {
			break
		}
	}

	return filtered, nil
}

// analyzeComponents fans out one analysis per image and joins on the first
// failure. Findings keep the input order regardless of completion order.
func (uc *UseCases) analyzeComponents(ctx context.Context, images []model.Image) ([]model.ComponentFinding, error) {
	findings := make([]model.ComponentFinding, len(images))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, img := range images {
		eg.Go(func() error {
			assessment, err := uc.vision.Inspect(egCtx, img)
			if err != nil {
				return goerr.Wrap(ErrInference, "vision analysis failed",
					goerr.V(ComponentKey, img.Name),
					goerr.V("cause", err.Error()))
			}

			embedding, err := uc.embed(egCtx, assessment)
			if err != nil {
				return goerr.Wrap(ErrInference, "embedding generation failed",
					goerr.V(ComponentKey, img.Name),
					goerr.V("cause", err.Error()))
			}

			findings[i] = model.ComponentFinding{
				Index:      i,
				Label:      img.Name,
				Assessment: assessment,
				Embedding:  embedding,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return findings, nil
}

// retrieveHistory degrades gracefully: historical context is an enhancement,
// not a correctness requirement, so a failing store yields an empty match set
// with a logged warning instead of aborting the survey.
func (uc *UseCases) retrieveHistory(ctx context.Context, embedding []float32) []*model.HistoricalMatch {
	matches, err := uc.repo.Survey().FindNearest(ctx, embedding, uc.profile.Policy.HistoryLimit)
	if err != nil {
		logging.From(ctx).Warn("historical retrieval failed, continuing without context",
			"error", err.Error())
		return nil
	}

	seen := make(map[types.SurveyID]bool, len(matches))
	deduped := matches[:0]
	for _, m := range matches {
		if seen[m.SurveyID] {
			continue
		}
		seen[m.SurveyID] = true
		deduped = append(deduped, m)
	}

	return deduped
}

// embed generates an embedding vector for the given text
func (uc *UseCases) embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := uc.llm.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned")
	}

	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}
	return result, nil
}

// meanEmbedding pools per-finding embeddings into one survey-level query vector
func meanEmbedding(findings []model.ComponentFinding) []float32 {
	if len(findings) == 0 {
		return nil
	}

	dim := len(findings[0].Embedding)
	sum := make([]float64, dim)
	for _, f := range findings {
		for i, v := range f.Embedding {
			if i < dim {
				sum[i] += float64(v)
			}
		}
	}

	mean := make([]float32, dim)
	for i := range sum {
		mean[i] = float32(sum[i] / float64(len(findings)))
	}
	return mean
}

func labelFor(img model.Image, index int) string {
	if img.Name != "" {
		return img.Name
	}
	return fmt.Sprintf("component-%d", index+1)
}
