package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

func TestSurveyStatus(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, status := range types.AllSurveyStatuses() {
			gt.Bool(t, status.IsValid()).True()
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		gt.Bool(t, types.SurveyStatus("MAYBE").IsValid()).False()
		gt.Bool(t, types.SurveyStatus("").IsValid()).False()
	})

	t.Run("parse valid status", func(t *testing.T) {
		status, err := types.ParseSurveyStatus("PASS")
		gt.NoError(t, err)
		gt.Value(t, status).Equal(types.SurveyStatusPass)
	})

	t.Run("parse rejects unknown status", func(t *testing.T) {
		_, err := types.ParseSurveyStatus("pass")
		gt.Error(t, err)
	})
}
