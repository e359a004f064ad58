package llm

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/observability"
)

// VertexClient sends generation requests through Vertex AI using ambient Google credentials.
type VertexClient struct {
	client *genai.Client
	model  string
	logger *observability.Logger
}

// NewVertexClient creates a Vertex AI backed generator.
func NewVertexClient(ctx context.Context, projectID, region, model string, logger *observability.Logger) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, domain.ConfigError("NewVertexClient: projectID and region cannot be empty", nil)
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = observability.Nop()
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, domain.ConfigError("genai.NewClient", err)
	}

	return &VertexClient{
		client: client,
		model:  model,
		logger: logger.WithComponent("vertex"),
	}, nil
}

// Generate performs one GenerateContent call and returns the first candidate's text.
func (c *VertexClient) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	if req.WantsJSON() {
		model.ResponseMIMEType = req.GenerationConfig.ResponseMIMEType
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, toParts(req)...)
	if err != nil {
		c.logger.Warn().Err(err).Str("model", c.model).Msg("Vertex generation failed")
		return "", domain.GenerationError(fmt.Sprintf("Vertex AI request to %s failed", c.model), err)
	}

	c.logger.Debug().
		Str("model", c.model).
		Bool("json_mode", req.WantsJSON()).
		Dur("elapsed", time.Since(start)).
		Msg("Vertex response received")

	text, ok := firstVertexText(resp)
	if !ok {
		return "", domain.ErrNoContent
	}
	return text, nil
}

// Close releases the underlying client.
func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func toParts(req *domain.GenerationRequest) []genai.Part {
	if req == nil {
		return nil
	}
	var parts []genai.Part
	for _, content := range req.Contents {
		for _, p := range content.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
	}
	return parts
}

func firstVertexText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", false
	}
	text, ok := cand.Content.Parts[0].(genai.Text)
	if !ok || text == "" {
		return "", false
	}
	return string(text), true
}
