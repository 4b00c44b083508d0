package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rigwatch/surveyor/pkg/cli/config"
	"github.com/rigwatch/surveyor/pkg/domain/model"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadProfile(t *testing.T) {
	t.Run("partial verdict section keeps defaults", func(t *testing.T) {
		path := writeProfile(t, `
[verdict]
pass_threshold = 0.8
history_limit = 10
`)

		profile, err := config.LoadProfile(path)
		gt.NoError(t, err).Required()

		defaults := model.DefaultProfile()
		gt.Value(t, profile.Policy.PassThreshold).Equal(0.8)
		gt.Value(t, profile.Policy.HistoryLimit).Equal(10)
		gt.Value(t, profile.Policy.FailThreshold).Equal(defaults.Policy.FailThreshold)
		gt.Value(t, profile.Policy.BaselineConfidence).Equal(defaults.Policy.BaselineConfidence)
		gt.Array(t, profile.Severity).Length(len(defaults.Severity))
	})

	t.Run("severity table replaces built-in lexicon", func(t *testing.T) {
		path := writeProfile(t, `
[[severity]]
id = "leak"
name = "Leak"
score = 0.1
terms = ["leak", "seepage"]

[[severity]]
id = "clean"
name = "Clean"
score = 0.95
terms = ["no defects"]
`)

		profile, err := config.LoadProfile(path)
		gt.NoError(t, err).Required()

		gt.Array(t, profile.Severity).Length(2)
		score, severity := profile.ScoreAssessment("Minor seepage observed at the flange.")
		gt.Value(t, score).Equal(0.1)
		gt.Value(t, string(severity)).Equal("leak")
	})

	t.Run("rejects fail threshold above pass threshold", func(t *testing.T) {
		path := writeProfile(t, `
[verdict]
pass_threshold = 0.3
fail_threshold = 0.7
`)

		_, err := config.LoadProfile(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects duplicate severity IDs", func(t *testing.T) {
		path := writeProfile(t, `
[[severity]]
id = "dup"
name = "First"
score = 0.2
terms = ["a"]

[[severity]]
id = "dup"
name = "Second"
score = 0.4
terms = ["b"]
`)

		_, err := config.LoadProfile(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects malformed TOML", func(t *testing.T) {
		path := writeProfile(t, `[verdict`)

		_, err := config.LoadProfile(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file returns error", func(t *testing.T) {
		_, err := config.LoadProfile(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Value(t, err).NotNil()
	})
}
