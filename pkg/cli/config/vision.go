package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/service/vision"
	"github.com/urfave/cli/v3"
)

// Vision holds configuration for the vision-language client
type Vision struct {
	apiKey      string
	projectID   string
	location    string
	model       string
	temperature float64
}

// Flags returns CLI flags for vision configuration
func (v *Vision) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "vision-api-key",
			Usage:       "Gemini API key for vision analysis (alternative to --vision-project)",
			Sources:     cli.EnvVars("SURVEYOR_VISION_API_KEY"),
			Destination: &v.apiKey,
		},
		&cli.StringFlag{
			Name:        "vision-project",
			Usage:       "Google Cloud project ID for Vertex AI vision analysis",
			Sources:     cli.EnvVars("SURVEYOR_VISION_PROJECT"),
			Destination: &v.projectID,
		},
		&cli.StringFlag{
			Name:        "vision-location",
			Usage:       "Google Cloud location for Vertex AI vision analysis",
			Value:       "us-central1",
			Sources:     cli.EnvVars("SURVEYOR_VISION_LOCATION"),
			Destination: &v.location,
		},
		&cli.StringFlag{
			Name:        "vision-model",
			Usage:       "Vision-language model name",
			Sources:     cli.EnvVars("SURVEYOR_VISION_MODEL"),
			Destination: &v.model,
		},
		&cli.FloatFlag{
			Name:        "vision-temperature",
			Usage:       "Sampling temperature for vision analysis",
			Value:       0.1,
			Sources:     cli.EnvVars("SURVEYOR_VISION_TEMPERATURE"),
			Destination: &v.temperature,
		},
	}
}

// LogAttrs returns log attributes for the vision configuration
func (v *Vision) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("api_key_set", v.apiKey != ""),
		slog.String("project_id", v.projectID),
		slog.String("location", v.location),
		slog.String("model", v.model),
	}
}

// Configure creates a vision client from the configured flags. The API key
// backend wins when both are set.
func (v *Vision) Configure(ctx context.Context) (interfaces.VisionClient, error) {
	opts := []vision.Option{
		vision.WithModel(v.model),
		vision.WithTemperature(float32(v.temperature)),
	}

	switch {
	case v.apiKey != "":
		client, err := vision.New(ctx, v.apiKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create vision client")
		}
		return client, nil

	case v.projectID != "":
		client, err := vision.NewVertex(ctx, v.projectID, v.location, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create vertex vision client")
		}
		return client, nil

	default:
		return nil, goerr.New("either vision-api-key or vision-project is required")
	}
}
