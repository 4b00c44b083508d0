package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/types"
)

// SeverityEntry maps assessment vocabulary to a component score in [0,1].
// Lower scores indicate worse findings.
type SeverityEntry struct {
	ID    types.Severity
	Name  string
	Score float64
	Terms []string
}

// Validate checks if the SeverityEntry is valid
func (e *SeverityEntry) Validate() error {
	if e.ID == types.SeverityNone {
		return goerr.New("severity ID is required")
	}
	if e.Score < 0 || e.Score > 1 {
		return goerr.New("severity score must be between 0.0 and 1.0",
			goerr.V("id", e.ID), goerr.V("score", e.Score))
	}
	if len(e.Terms) == 0 {
		return goerr.New("severity entry requires at least one term", goerr.V("id", e.ID))
	}
	for _, term := range e.Terms {
		if strings.TrimSpace(term) == "" {
			return goerr.New("severity term must not be empty", goerr.V("id", e.ID))
		}
	}
	return nil
}

// VerdictPolicy holds the configured thresholds and confidence parameters of
// the checklist validator.
type VerdictPolicy struct {
	PassThreshold      float64
	FailThreshold      float64
	BaselineConfidence float64
	AgreementDelta     float64
	DefaultScore       float64
	HistoryLimit       int
}

// Validate checks if the VerdictPolicy is valid
func (p *VerdictPolicy) Validate() error {
	for name, v := range map[string]float64{
		"pass_threshold":      p.PassThreshold,
		"fail_threshold":      p.FailThreshold,
		"baseline_confidence": p.BaselineConfidence,
		"agreement_delta":     p.AgreementDelta,
		"default_score":       p.DefaultScore,
	} {
		if v < 0 || v > 1 {
			return goerr.New("verdict policy value must be between 0.0 and 1.0",
				goerr.V("field", name), goerr.V("value", v))
		}
	}
	if p.FailThreshold >= p.PassThreshold {
		return goerr.New("fail_threshold must be less than pass_threshold",
			goerr.V("fail_threshold", p.FailThreshold),
			goerr.V("pass_threshold", p.PassThreshold))
	}
	if p.HistoryLimit <= 0 {
		return goerr.New("history_limit must be positive", goerr.V("history_limit", p.HistoryLimit))
	}
	return nil
}

// InspectionProfile is the configured decision policy of a deployment: the
// severity lexicon that scores assessments plus the verdict thresholds.
type InspectionProfile struct {
	Policy   VerdictPolicy
	Severity []SeverityEntry
}

// Validate checks if the InspectionProfile is valid
func (p *InspectionProfile) Validate() error {
	if err := p.Policy.Validate(); err != nil {
		return goerr.Wrap(err, "invalid verdict policy")
	}

	seen := make(map[types.Severity]bool, len(p.Severity))
	for _, entry := range p.Severity {
		if err := entry.Validate(); err != nil {
			return goerr.Wrap(err, "invalid severity entry")
		}
		if seen[entry.ID] {
			return goerr.New("duplicate severity ID", goerr.V("id", entry.ID))
		}
		seen[entry.ID] = true
	}

	return nil
}

// ScoreAssessment maps a free-text assessment to a component score and the
// matched severity tag. Matching is case-insensitive substring lookup over
// the lexicon terms; when multiple entries match, the lowest score wins. An
// assessment matching no entry receives the policy's default score and no tag.
func (p *InspectionProfile) ScoreAssessment(text string) (float64, types.Severity) {
	lowered := strings.ToLower(text)

	score := p.Policy.DefaultScore
	tag := types.SeverityNone
	matched := false

	for _, entry := range p.Severity {
		for _, term := range entry.Terms {
			if !strings.Contains(lowered, strings.ToLower(term)) {
				continue
			}
			if !matched || entry.Score < score {
				score = entry.Score
				tag = entry.ID
				matched = true
			}
			break
		}
	}

	return score, tag
}

// SeverityName returns the display name of a severity tag, or the tag itself
// when the profile has no entry for it.
func (p *InspectionProfile) SeverityName(tag types.Severity) string {
	for _, entry := range p.Severity {
		if entry.ID == tag {
			return entry.Name
		}
	}
	return tag.String()
}

// DefaultProfile returns the built-in inspection profile used when no profile
// file is configured.
func DefaultProfile() *InspectionProfile {
	return &InspectionProfile{
		Policy: VerdictPolicy{
			PassThreshold:      0.7,
			FailThreshold:      0.3,
			BaselineConfidence: 0.6,
			AgreementDelta:     0.1,
			DefaultScore:       0.9,
			HistoryLimit:       5,
		},
		Severity: []SeverityEntry{
			{
				ID:    "critical",
				Name:  "Structural failure",
				Score: 0.05,
				Terms: []string{"crack", "fracture", "rupture", "leak", "burn-through", "structural failure", "severed"},
			},
			{
				ID:    "major",
				Name:  "Major degradation",
				Score: 0.3,
				Terms: []string{"corrosion", "erosion", "deformation", "delamination", "loose fastener", "missing fastener"},
			},
			{
				ID:    "moderate",
				Name:  "Moderate wear",
				Score: 0.55,
				Terms: []string{"pitting", "abrasion", "heat discoloration", "worn seal"},
			},
			{
				ID:    "minor",
				Name:  "Minor blemish",
				Score: 0.8,
				Terms: []string{"scratch", "scuff", "minor", "superficial"},
			},
			{
				ID:    "cosmetic",
				Name:  "Cosmetic only",
				Score: 0.95,
				Terms: []string{"cosmetic", "within limits", "nominal", "no anomalies", "no defects"},
			},
		},
	}
}
