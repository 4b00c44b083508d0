package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
	"github.com/rigwatch/surveyor/pkg/repository/memory"
	"github.com/rigwatch/surveyor/pkg/usecase"
)

// makePNG produces a small decodable image for pipeline tests
func makePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

type mockVisionClient struct {
	inspectFn func(ctx context.Context, img model.Image) (string, error)
}

func (m *mockVisionClient) Inspect(ctx context.Context, img model.Image) (string, error) {
	if m.inspectFn != nil {
		return m.inspectFn(ctx, img)
	}
	return "Component shows no anomalies and is within limits.", nil
}

type mockLLMSession struct{}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{"mock response"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	embedFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.embedFn != nil {
		return c.embedFn(ctx, dimension, input)
	}
	out := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		vec[0] = 1.0
		out[i] = vec
	}
	return out, nil
}

// countingRepo wraps a repository to observe persistence attempts
type countingRepo struct {
	inner   interfaces.Repository
	surveys *countingSurveys
}

func newCountingRepo(inner interfaces.Repository) *countingRepo {
	return &countingRepo{inner: inner, surveys: &countingSurveys{inner: inner.Survey()}}
}

func (r *countingRepo) Survey() interfaces.SurveyRepository { return r.surveys }
func (r *countingRepo) Close() error                        { return r.inner.Close() }

type countingSurveys struct {
	inner   interfaces.SurveyRepository
	creates int
}

func (s *countingSurveys) Create(ctx context.Context, record *model.SurveyRecord) (*model.SurveyRecord, error) {
	s.creates++
	return s.inner.Create(ctx, record)
}

func (s *countingSurveys) Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error) {
	return s.inner.Get(ctx, id)
}

func (s *countingSurveys) FindNearest(ctx context.Context, embedding []float32, limit int, opts ...interfaces.FindNearestOption) ([]*model.HistoricalMatch, error) {
	return s.inner.FindNearest(ctx, embedding, limit, opts...)
}

// failingSearchRepo simulates a vector store whose similarity search is down
type failingSearchRepo struct {
	inner interfaces.Repository
}

func (r *failingSearchRepo) Survey() interfaces.SurveyRepository {
	return &failingSearchSurveys{inner: r.inner.Survey()}
}

func (r *failingSearchRepo) Close() error { return r.inner.Close() }

type failingSearchSurveys struct {
	inner interfaces.SurveyRepository
}

func (s *failingSearchSurveys) Create(ctx context.Context, record *model.SurveyRecord) (*model.SurveyRecord, error) {
	return s.inner.Create(ctx, record)
}

func (s *failingSearchSurveys) Get(ctx context.Context, id types.SurveyID) (*model.SurveyRecord, error) {
	return s.inner.Get(ctx, id)
}

func (s *failingSearchSurveys) FindNearest(ctx context.Context, embedding []float32, limit int, opts ...interfaces.FindNearestOption) ([]*model.HistoricalMatch, error) {
	return nil, errors.New("vector index unavailable")
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record with ordered findings", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

		req := &model.SurveyRequest{
			Notes: "routine check",
			Images: []model.Image{
				{Name: "nozzle.jpg", Data: makePNG(t)},
				{Name: "pump.jpg", Data: makePNG(t)},
			},
		}

		record, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		gt.Value(t, record).NotNil()

		gt.Array(t, record.Findings).Length(2)
		gt.Value(t, record.Findings[0].Label).Equal("nozzle.jpg")
		gt.Value(t, record.Findings[1].Label).Equal("pump.jpg")
		gt.Value(t, record.Findings[0].Index).Equal(0)
		gt.Value(t, record.Findings[1].Index).Equal(1)

		// "within limits" hits the cosmetic lexicon entry
		gt.Value(t, record.Status).Equal(types.SurveyStatusPass)
		gt.Value(t, record.Confidence).Equal(uc.Profile().Policy.BaselineConfidence)
		gt.Array(t, record.Embedding).Length(model.EmbeddingDimension)
		gt.String(t, record.Report).Contains("## Conclusion")
		gt.Value(t, record.Notes).Equal("routine check")
		gt.Bool(t, record.CreatedAt.IsZero()).False()

		stored, err := repo.Survey().Get(ctx, record.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ID).Equal(record.ID)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		repo := newCountingRepo(memory.New())
		uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

		_, err := uc.Submit(ctx, &model.SurveyRequest{})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
		gt.Value(t, repo.surveys.creates).Equal(0)

		_, err = uc.Submit(ctx, nil)
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("undecodable image is rejected", func(t *testing.T) {
		repo := newCountingRepo(memory.New())
		uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

		req := &model.SurveyRequest{
			Images: []model.Image{{Name: "garbage.bin", Data: []byte("not an image")}},
		}

		_, err := uc.Submit(ctx, req)
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
		gt.Value(t, repo.surveys.creates).Equal(0)
	})

	t.Run("vision failure fails the survey without persisting", func(t *testing.T) {
		repo := newCountingRepo(memory.New())
		vision := &mockVisionClient{
			inspectFn: func(ctx context.Context, img model.Image) (string, error) {
				if img.Name == "pump.jpg" {
					return "", errors.New("model overloaded")
				}
				return "No anomalies.", nil
			},
		}
		uc := usecase.New(repo, vision, &mockLLMClient{})

		req := &model.SurveyRequest{
			Images: []model.Image{
				{Name: "nozzle.jpg", Data: makePNG(t)},
				{Name: "pump.jpg", Data: makePNG(t)},
			},
		}

		_, err := uc.Submit(ctx, req)
		gt.Error(t, err).Is(usecase.ErrInference)
		gt.Value(t, repo.surveys.creates).Equal(0)
	})

	t.Run("severe assessment fails the survey", func(t *testing.T) {
		repo := memory.New()
		vision := &mockVisionClient{
			inspectFn: func(ctx context.Context, img model.Image) (string, error) {
				return "A deep crack runs across the flange.", nil
			},
		}
		uc := usecase.New(repo, vision, &mockLLMClient{})

		req := &model.SurveyRequest{
			Images: []model.Image{{Name: "flange.jpg", Data: makePNG(t)}},
		}

		record, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		gt.Value(t, record.Status).Equal(types.SurveyStatusFail)
	})

	t.Run("resubmission yields distinct records", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

		req := &model.SurveyRequest{
			Images: []model.Image{{Name: "nozzle.jpg", Data: makePNG(t)}},
		}

		first, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		second, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		gt.Value(t, first.ID == second.ID).Equal(false)
	})

	t.Run("retrieval failure degrades to no historical context", func(t *testing.T) {
		repo := &failingSearchRepo{inner: memory.New()}
		uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

		req := &model.SurveyRequest{
			Images: []model.Image{{Name: "nozzle.jpg", Data: makePNG(t)}},
		}

		record, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		gt.Value(t, record.Status).Equal(types.SurveyStatusPass)
		gt.Value(t, record.Confidence).Equal(uc.Profile().Policy.BaselineConfidence)
		gt.String(t, record.Report).Contains("No comparable historical surveys")
	})

	t.Run("historical agreement raises confidence", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

		req := &model.SurveyRequest{
			Images: []model.Image{{Name: "nozzle.jpg", Data: makePNG(t)}},
		}

		first, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		gt.Value(t, first.Confidence).Equal(uc.Profile().Policy.BaselineConfidence)

		// Second submission sees the first as an agreeing PASS neighbor.
		second, err := uc.Submit(ctx, req)
		gt.NoError(t, err).Required()
		gt.Value(t, second.Confidence).Equal(
			uc.Profile().Policy.BaselineConfidence + uc.Profile().Policy.AgreementDelta)
	})
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo, &mockVisionClient{}, &mockLLMClient{})

	req := &model.SurveyRequest{
		Images: []model.Image{{Name: "nozzle.jpg", Data: makePNG(t)}},
	}

	first, err := uc.Submit(ctx, req)
	gt.NoError(t, err).Required()
	second, err := uc.Submit(ctx, req)
	gt.NoError(t, err).Required()

	t.Run("excludes the query survey itself", func(t *testing.T) {
		matches, err := uc.FindSimilar(ctx, first.ID, 5, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
		gt.Value(t, matches[0].SurveyID).Equal(second.ID)
	})

	t.Run("status filter narrows results", func(t *testing.T) {
		fail := types.SurveyStatusFail
		matches, err := uc.FindSimilar(ctx, first.ID, 5, &fail)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(0)

		pass := types.SurveyStatusPass
		matches, err = uc.FindSimilar(ctx, first.ID, 5, &pass)
		gt.NoError(t, err).Required()
		gt.Array(t, matches).Length(1)
	})

	t.Run("unknown survey returns not found", func(t *testing.T) {
		_, err := uc.FindSimilar(ctx, types.NewSurveyID(), 5, nil)
		gt.Error(t, err).Is(model.ErrSurveyNotFound)
	})
}
