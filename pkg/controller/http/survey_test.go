package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/rigwatch/surveyor/pkg/controller/http"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/repository/memory"
	"github.com/rigwatch/surveyor/pkg/usecase"
)

type stubVisionClient struct {
	assessment string
}

func (s *stubVisionClient) Inspect(ctx context.Context, img model.Image) (string, error) {
	if s.assessment != "" {
		return s.assessment, nil
	}
	return "Component shows no anomalies and is within limits.", nil
}

type stubLLMSession struct{}

func (s *stubLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *stubLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *stubLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{"stub"}}, nil
}

func (s *stubLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *stubLLMSession) History() (*gollem.History, error) { return nil, nil }

func (s *stubLLMSession) AppendHistory(*gollem.History) error { return nil }

func (s *stubLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type stubLLMClient struct{}

func (c *stubLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &stubLLMSession{}, nil
}

func (c *stubLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	out := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		vec[0] = 1.0
		out[i] = vec
	}
	return out, nil
}

func newTestServer(t *testing.T) *httpctrl.Server {
	t.Helper()
	uc := usecase.New(memory.New(), &stubVisionClient{}, &stubLLMClient{})
	return httpctrl.New(uc)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

func multipartSurvey(t *testing.T, notes string, images map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if notes != "" {
		gt.NoError(t, mw.WriteField("notes", notes)).Required()
	}
	for name, data := range images {
		part, err := mw.CreateFormFile("images", name)
		gt.NoError(t, err).Required()
		_, err = part.Write(data)
		gt.NoError(t, err).Required()
	}
	gt.NoError(t, mw.Close()).Required()

	return &body, mw.FormDataContentType()
}

type surveyJSON struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Report   string `json:"report"`
	Findings []struct {
		Index int    `json:"index"`
		Label string `json:"label"`
	} `json:"findings"`
}

func submitSurvey(t *testing.T, srv *httpctrl.Server, notes string, images map[string][]byte) surveyJSON {
	t.Helper()

	body, contentType := multipartSurvey(t, notes, images)
	req := httptest.NewRequest(http.MethodPost, "/api/surveys", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var resp surveyJSON
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	return resp
}

func TestSubmitSurveyEndpoint(t *testing.T) {
	t.Run("accepts multipart submission", func(t *testing.T) {
		srv := newTestServer(t)

		resp := submitSurvey(t, srv, "routine check", map[string][]byte{"nozzle.jpg": pngBytes(t)})

		gt.String(t, resp.ID).NotEqual("")
		gt.Value(t, resp.Status).Equal("PASS")
		gt.Array(t, resp.Findings).Length(1)
		gt.Value(t, resp.Findings[0].Label).Equal("nozzle.jpg")
		gt.String(t, resp.Report).Contains("## Conclusion")
	})

	t.Run("rejects submission without images", func(t *testing.T) {
		srv := newTestServer(t)

		body, contentType := multipartSurvey(t, "no images here", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/surveys", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("rejects non-multipart body", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/surveys", bytes.NewBufferString(`{"notes":"json"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("rejects undecodable image with 400", func(t *testing.T) {
		srv := newTestServer(t)

		body, contentType := multipartSurvey(t, "", map[string][]byte{"bad.bin": []byte("junk")})
		req := httptest.NewRequest(http.MethodPost, "/api/surveys", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestGetSurveyEndpoint(t *testing.T) {
	t.Run("returns stored survey", func(t *testing.T) {
		srv := newTestServer(t)
		created := submitSurvey(t, srv, "", map[string][]byte{"pump.jpg": pngBytes(t)})

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+created.ID, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp surveyJSON
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.ID).Equal(created.ID)
	})

	t.Run("unknown ID returns 404", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/no-such-survey", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestFindSimilarEndpoint(t *testing.T) {
	t.Run("returns matches excluding self", func(t *testing.T) {
		srv := newTestServer(t)
		first := submitSurvey(t, srv, "", map[string][]byte{"a.jpg": pngBytes(t)})
		second := submitSurvey(t, srv, "", map[string][]byte{"b.jpg": pngBytes(t)})

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+first.ID+"/similar", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Matches []struct {
				SurveyID   string  `json:"survey_id"`
				Similarity float64 `json:"similarity"`
				Status     string  `json:"status"`
			} `json:"matches"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Array(t, resp.Matches).Length(1)
		gt.Value(t, resp.Matches[0].SurveyID).Equal(second.ID)
		gt.Value(t, resp.Matches[0].Status).Equal("PASS")
	})

	t.Run("status filter narrows matches", func(t *testing.T) {
		srv := newTestServer(t)
		first := submitSurvey(t, srv, "", map[string][]byte{"a.jpg": pngBytes(t)})
		submitSurvey(t, srv, "", map[string][]byte{"b.jpg": pngBytes(t)})

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+first.ID+"/similar?status=FAIL", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Matches []json.RawMessage `json:"matches"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Array(t, resp.Matches).Length(0)
	})

	t.Run("invalid limit returns 400", func(t *testing.T) {
		srv := newTestServer(t)
		created := submitSurvey(t, srv, "", map[string][]byte{"a.jpg": pngBytes(t)})

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+created.ID+"/similar?limit=zero", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid status returns 400", func(t *testing.T) {
		srv := newTestServer(t)
		created := submitSurvey(t, srv, "", map[string][]byte{"a.jpg": pngBytes(t)})

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/"+created.ID+"/similar?status=MAYBE", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown survey returns 404", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/surveys/no-such-survey/similar", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}
