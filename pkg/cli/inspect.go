package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/rigwatch/surveyor/pkg/cli/config"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"github.com/rigwatch/surveyor/pkg/usecase"
	"github.com/rigwatch/surveyor/pkg/utils/logging"
	"github.com/rigwatch/surveyor/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// cmdInspect runs the full pipeline once over local image files and prints
// the synthesized report. Useful for profile tuning without an HTTP client.
func cmdInspect() *cli.Command {
	var notes string
	var output string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var visionCfg config.Vision
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "notes",
			Usage:       "Free-text operator notes attached to the survey",
			Destination: &notes,
		},
		&cli.StringFlag{
			Name:        "output",
			Usage:       "Write the report to a file instead of stdout",
			Destination: &output,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, visionCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:      "inspect",
		Aliases:   []string{"i"},
		Usage:     "Run one inspection survey over local image files",
		ArgsUsage: "<image file> [<image file> ...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one image file is required")
			}

			req := &model.SurveyRequest{Notes: notes}
			for _, path := range paths {
				data, err := os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read image file", goerr.V("path", path))
				}
				req.Images = append(req.Images, model.Image{
					Name: filepath.Base(path),
					Data: data,
				})
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}
			if llmClient == nil {
				return goerr.New("gemini-project is required for embedding generation")
			}

			visionClient, err := visionCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure vision client")
			}

			profile, err := profileCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load inspection profile")
			}

			uc := usecase.New(repo, visionClient, llmClient, usecase.WithProfile(profile))

			record, err := uc.Submit(ctx, req)
			if err != nil {
				return err
			}

			logging.Default().Info("Survey completed",
				"survey_id", record.ID,
				"status", record.Status,
				"confidence", record.Confidence,
				"components", len(record.Findings),
			)

			if output != "" {
				if err := os.WriteFile(output, []byte(record.Report), 0644); err != nil {
					return goerr.Wrap(err, "failed to write report", goerr.V("path", output))
				}
				return nil
			}

			safe.Write(ctx, os.Stdout, []byte(record.Report))
			return nil
		},
	}
}
