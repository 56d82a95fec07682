package content

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/service"
)

const (
	defaultRegion = "us-central1"
	defaultModel  = "gemini-2.5-flash"
)

// GeminiClient wraps the Google GenAI client for VertexAI.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

var _ service.WordListGenerator = (*GeminiClient)(nil)

// NewGeminiClient creates a client using Application Default Credentials.
// Set GOOGLE_APPLICATION_CREDENTIALS to the service account key file path.
func NewGeminiClient(ctx context.Context, projectID, region, model string) (*GeminiClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("create genai client: project ID is required")
	}
	if region == "" {
		region = defaultRegion
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: model,
	}, nil
}

// Model returns the model name used for generation.
func (g *GeminiClient) Model() string {
	return g.modelName
}

// GenerateWordList asks the model for a themed word list and turns the
// answer into a puzzle definition.
func (g *GeminiClient) GenerateWordList(ctx context.Context, req service.GenerateRequest) (*engine.PuzzleConfig, error) {
	req = WithDefaults(req)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildPrompt(req)}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}
	return ParseWordList([]byte(text), req)
}
