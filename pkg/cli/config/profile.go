package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/domain/types"
	"github.com/rigwatch/surveyor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Profile holds the CLI flag for the inspection profile file
type Profile struct {
	path string
}

// Flags returns CLI flags for profile configuration
func (p *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to the inspection profile TOML file (built-in defaults when empty)",
			Sources:     cli.EnvVars("SURVEYOR_PROFILE"),
			Destination: &p.path,
		},
	}
}

// Path returns the configured profile path
func (p *Profile) Path() string {
	return p.path
}

// Configure loads and validates the inspection profile. An empty path yields
// the built-in default profile.
func (p *Profile) Configure() (*model.InspectionProfile, error) {
	if p.path == "" {
		logging.Default().Info("Using built-in inspection profile")
		return model.DefaultProfile(), nil
	}

	profile, err := LoadProfile(p.path)
	if err != nil {
		return nil, err
	}

	logging.Default().Info("Loaded inspection profile",
		"path", p.path,
		"severity_entries", len(profile.Severity),
	)
	return profile, nil
}

// profileFile is the TOML shape of an inspection profile file
type profileFile struct {
	Verdict  verdictSection    `toml:"verdict"`
	Severity []severitySection `toml:"severity"`
}

type verdictSection struct {
	PassThreshold      *float64 `toml:"pass_threshold"`
	FailThreshold      *float64 `toml:"fail_threshold"`
	BaselineConfidence *float64 `toml:"baseline_confidence"`
	AgreementDelta     *float64 `toml:"agreement_delta"`
	DefaultScore       *float64 `toml:"default_score"`
	HistoryLimit       *int     `toml:"history_limit"`
}

type severitySection struct {
	ID    string   `toml:"id"`
	Name  string   `toml:"name"`
	Score float64  `toml:"score"`
	Terms []string `toml:"terms"`
}

// LoadProfile reads, parses and validates an inspection profile file.
// Omitted verdict fields keep the built-in defaults; a non-empty severity
// table replaces the built-in lexicon entirely.
func LoadProfile(path string) (*model.InspectionProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile file", goerr.V("path", path))
	}

	var file profileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse profile file", goerr.V("path", path))
	}

	profile := model.DefaultProfile()

	if v := file.Verdict.PassThreshold; v != nil {
		profile.Policy.PassThreshold = *v
	}
	if v := file.Verdict.FailThreshold; v != nil {
		profile.Policy.FailThreshold = *v
	}
	if v := file.Verdict.BaselineConfidence; v != nil {
		profile.Policy.BaselineConfidence = *v
	}
	if v := file.Verdict.AgreementDelta; v != nil {
		profile.Policy.AgreementDelta = *v
	}
	if v := file.Verdict.DefaultScore; v != nil {
		profile.Policy.DefaultScore = *v
	}
	if v := file.Verdict.HistoryLimit; v != nil {
		profile.Policy.HistoryLimit = *v
	}

	if len(file.Severity) > 0 {
		profile.Severity = make([]model.SeverityEntry, len(file.Severity))
		for i, s := range file.Severity {
			profile.Severity[i] = model.SeverityEntry{
				ID:    types.Severity(s.ID),
				Name:  s.Name,
				Score: s.Score,
				Terms: s.Terms,
			}
		}
	}

	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid inspection profile", goerr.V("path", path))
	}

	return profile, nil
}
