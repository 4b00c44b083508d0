package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/cli/config"
	"github.com/rigwatch/surveyor/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cmdValidate checks an inspection profile file without starting the service
func cmdValidate() *cli.Command {
	var path string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate an inspection profile file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "profile",
				Usage:       "Path to the inspection profile TOML file (required)",
				Required:    true,
				Sources:     cli.EnvVars("SURVEYOR_PROFILE"),
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			profile, err := config.LoadProfile(path)
			if err != nil {
				return goerr.Wrap(err, "profile validation failed", goerr.V("path", path))
			}

			logging.Default().Info("Profile is valid",
				"path", path,
				"severity_entries", len(profile.Severity),
				"pass_threshold", profile.Policy.PassThreshold,
				"fail_threshold", profile.Policy.FailThreshold,
			)
			return nil
		},
	}
}
