package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
	"github.com/rigwatch/surveyor/pkg/usecase"
	"github.com/rigwatch/surveyor/pkg/utils/errutil"
	"github.com/rigwatch/surveyor/pkg/utils/safe"
)

// maxUploadBytes bounds one multipart survey submission
const maxUploadBytes = 64 << 20

// findingResponse is the JSON projection of a component finding. Embedding
// vectors stay server-side; clients have no use for them.
type findingResponse struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Assessment string  `json:"assessment"`
	Severity   string  `json:"severity,omitempty"`
	Score      float64 `json:"score"`
}

type surveyResponse struct {
	ID         string            `json:"id"`
	Notes      string            `json:"notes,omitempty"`
	Findings   []findingResponse `json:"findings"`
	Report     string            `json:"report"`
	Status     string            `json:"status"`
	Confidence float64           `json:"confidence"`
	CreatedAt  time.Time         `json:"created_at"`
}

type matchResponse struct {
	SurveyID   string  `json:"survey_id"`
	Similarity float64 `json:"similarity"`
	Status     string  `json:"status"`
}

func toSurveyResponse(record *model.SurveyRecord) *surveyResponse {
	resp := &surveyResponse{
		ID:         record.ID.String(),
		Notes:      record.Notes,
		Findings:   make([]findingResponse, len(record.Findings)),
		Report:     record.Report,
		Status:     record.Status.String(),
		Confidence: record.Confidence,
		CreatedAt:  record.CreatedAt,
	}
	for i, f := range record.Findings {
		resp.Findings[i] = findingResponse{
			Index:      f.Index,
			Label:      f.Label,
			Assessment: f.Assessment,
			Severity:   f.Severity.String(),
			Score:      f.Score,
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(r.Context(), w, data)
}

// submitSurveyHandler accepts a multipart form with one or more "images"
// file parts and an optional "notes" field, runs the pipeline, and returns
// the persisted record.
func submitSurveyHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to parse multipart form"), http.StatusBadRequest)
			return
		}

		req := &model.SurveyRequest{
			Notes: r.FormValue("notes"),
		}

		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["images"] {
				file, err := header.Open()
				if err != nil {
					errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to open uploaded image",
						goerr.V("filename", header.Filename)), http.StatusBadRequest)
					return
				}
				data, err := io.ReadAll(file)
				safe.Close(r.Context(), file)
				if err != nil {
					errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read uploaded image",
						goerr.V("filename", header.Filename)), http.StatusBadRequest)
					return
				}
				req.Images = append(req.Images, model.Image{
					Name: header.Filename,
					Data: data,
				})
			}
		}

		record, err := uc.Submit(r.Context(), req)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, submitStatusCode(err))
			return
		}

		writeJSON(w, r, http.StatusCreated, toSurveyResponse(record))
	}
}

// submitStatusCode maps the pipeline error taxonomy to HTTP statuses
func submitStatusCode(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func getSurveyHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.SurveyID(chi.URLParam(r, "id"))

		record, err := uc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, model.ErrSurveyNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(w, r, http.StatusOK, toSurveyResponse(record))
	}
}

func findSimilarHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Matches []matchResponse `json:"matches"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id := types.SurveyID(chi.URLParam(r, "id"))

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				errutil.HandleHTTP(r.Context(), w, goerr.New("invalid limit parameter",
					goerr.V("limit", raw)), http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		var statusFilter *types.SurveyStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := types.ParseSurveyStatus(raw)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid status parameter"), http.StatusBadRequest)
				return
			}
			statusFilter = &status
		}

		matches, err := uc.FindSimilar(r.Context(), id, limit, statusFilter)
		if err != nil {
			if errors.Is(err, model.ErrSurveyNotFound) {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
				return
			}
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		resp := response{Matches: make([]matchResponse, len(matches))}
		for i, m := range matches {
			resp.Matches[i] = matchResponse{
				SurveyID:   m.SurveyID.String(),
				Similarity: m.Similarity,
				Status:     m.Status.String(),
			}
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}
