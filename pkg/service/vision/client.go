package vision

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rigwatch/surveyor/pkg/domain/interfaces"
	"github.com/rigwatch/surveyor/pkg/domain/model"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Client calls the Gemini vision-language API to assess component images
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ interfaces.VisionClient = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithModel overrides the default generation model
func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float32) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// New creates a vision client using an API key (Gemini API backend)
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	return newClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, opts...)
}

// NewVertex creates a vision client against Vertex AI with ADC credentials
func NewVertex(ctx context.Context, project, location string, opts ...Option) (*Client, error) {
	return newClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}, opts...)
}

func newClient(ctx context.Context, cfg *genai.ClientConfig, opts ...Option) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	c := &Client{
		client:      client,
		model:       defaultModel,
		temperature: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Inspect runs the fixed inspection prompt against one image and returns the
// model's textual assessment. The call is at-most-once: no retry here.
func (c *Client) Inspect(ctx context.Context, image model.Image) (string, error) {
	mimeType := http.DetectContentType(image.Data)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(inspectionPrompt),
			genai.NewPartFromBytes(image.Data, mimeType),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(c.temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate assessment",
			goerr.V("image", image.Name),
			goerr.V("model", c.model))
	}

	var sb strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					sb.WriteString(part.Text)
				}
			}
			if sb.Len() > 0 {
				break
			}
		}
	}

	assessment := strings.TrimSpace(sb.String())
	if assessment == "" {
		return "", goerr.New("empty assessment from model",
			goerr.V("image", image.Name),
			goerr.V("model", c.model))
	}

	return assessment, nil
}
