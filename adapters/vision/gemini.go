package vision

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig holds configuration for the Gemini vision adapter.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiConfigFromEnv creates a GeminiConfig from environment variables.
func NewGeminiConfigFromEnv() GeminiConfig {
	return GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_VISION_MODEL"),
	}
}

// GeminiVisionModel implements VisionModel using Google's Gemini API
// with inline image bytes. Selected with VISION_PROVIDER=gemini.
type GeminiVisionModel struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.VisionModel = (*GeminiVisionModel)(nil)

// NewGeminiVisionModel creates a new Gemini vision client.
func NewGeminiVisionModel(config GeminiConfig, logger *zap.Logger) (*GeminiVisionModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default vision model", zap.String("model", model))
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiVisionModel{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Analyze sends the prompt and the image bytes to Gemini and returns
// the concatenated text of the first candidate.
func (g *GeminiVisionModel) Analyze(ctx context.Context, prompt string, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", &entities.IOError{Op: "read image", Path: imagePath, Err: err}
	}

	g.logger.Info("Analyzing image with Gemini",
		zap.String("file", imagePath),
		zap.String("model", g.model))

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeTypeFor(imagePath)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", &entities.InferenceError{Err: err}
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", &entities.InferenceError{Err: errors.New("no candidates returned")}
	}

	var reply string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply += part.Text
		}
	}
	if reply == "" {
		return "", &entities.InferenceError{Err: errors.New("empty response")}
	}

	g.logger.Info("Image analysis completed", zap.Int("responseLength", len(reply)))
	return reply, nil
}
