package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// Verdict is the checklist validator's output: the survey-level score, the
// final status, and a confidence in [0,1].
type Verdict struct {
	Score      float64
	Status     types.SurveyStatus
	Confidence float64
}

// evaluateVerdict turns component findings plus historical context into one
// verdict. It scores each finding against the profile's severity lexicon,
// aggregates by minimum (the weakest component dominates, never the average),
// maps the score to a status via the configured thresholds, and adjusts
// confidence only (never status) by historical agreement.
func evaluateVerdict(profile *model.InspectionProfile, findings []model.ComponentFinding, matches []*model.HistoricalMatch) (Verdict, []model.ComponentFinding, error) {
	if len(findings) == 0 {
		return Verdict{}, nil, goerr.Wrap(ErrInvalidInput, "verdict requires at least one finding")
	}

	scored := make([]model.ComponentFinding, len(findings))
	surveyScore := 1.0
	for i, f := range findings {
		score, severity := profile.ScoreAssessment(f.Assessment)
		scored[i] = f
		scored[i].Score = score
		scored[i].Severity = severity

		if i == 0 || score < surveyScore {
			surveyScore = score
		}
	}

	policy := profile.Policy

	var tentative types.SurveyStatus
	switch {
	case surveyScore >= policy.PassThreshold:
		tentative = types.SurveyStatusPass
	case surveyScore <= policy.FailThreshold:
		tentative = types.SurveyStatusFail
	default:
		tentative = types.SurveyStatusWarn
	}

	confidence := adjustConfidence(policy, tentative, matches)

	return Verdict{
		Score:      surveyScore,
		Status:     tentative,
		Confidence: confidence,
	}, scored, nil
}

// adjustConfidence applies the historical-agreement rule: a strict majority
// of matches sharing the tentative status boosts confidence by the configured
// delta, a strict majority disagreeing reduces it, a tie or an empty match
// set leaves the baseline untouched. The result is clamped to [0,1].
func adjustConfidence(policy model.VerdictPolicy, tentative types.SurveyStatus, matches []*model.HistoricalMatch) float64 {
	confidence := policy.BaselineConfidence

	if len(matches) > 0 {
		agree := 0
		for _, m := range matches {
			if m.Status == tentative {
				agree++
			}
		}

		switch {
		case agree*2 > len(matches):
			confidence += policy.AgreementDelta
		case agree*2 < len(matches):
			confidence -= policy.AgreementDelta
		}
	}

	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
