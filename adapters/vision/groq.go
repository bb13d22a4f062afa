package vision

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

const (
	defaultGroqBaseURL     = "https://api.groq.com/openai/v1"
	defaultGroqVisionModel = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// GroqConfig holds configuration for the Groq vision adapter.
// Required fields:
// - APIKey: Your Groq API key
// Optional fields with defaults:
// - BaseURL: The OpenAI-compatible base URL (default: "https://api.groq.com/openai/v1")
// - Model: The multimodal model identifier (default: "meta-llama/llama-4-scout-17b-16e-instruct")
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewGroqConfigFromEnv creates a GroqConfig from environment variables.
func NewGroqConfigFromEnv() GroqConfig {
	return GroqConfig{
		APIKey:  os.Getenv("GROQ_API_KEY"),
		BaseURL: os.Getenv("GROQ_API_BASE_URL"),
		Model:   os.Getenv("GROQ_VISION_MODEL"),
	}
}

// GroqVisionModel implements VisionModel against Groq's
// OpenAI-compatible chat completions endpoint, passing the image as an
// inline data URI part.
type GroqVisionModel struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.VisionModel = (*GroqVisionModel)(nil)

// NewGroqVisionModel creates a new Groq vision client.
func NewGroqVisionModel(config GroqConfig, logger *zap.Logger) (*GroqVisionModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultGroqVisionModel
		logger.Info("Using default vision model", zap.String("model", model))
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = baseURL

	return &GroqVisionModel{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Analyze sends the prompt and the encoded image in a single user
// message and returns the model's reply.
func (g *GroqVisionModel) Analyze(ctx context.Context, prompt string, imagePath string) (string, error) {
	encoded, mimeType, err := EncodeImage(imagePath)
	if err != nil {
		return "", err
	}

	g.logger.Info("Analyzing image",
		zap.String("file", imagePath),
		zap.String("model", g.model),
		zap.Int("promptLength", len(prompt)))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", mimeType, encoded),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", &entities.InferenceError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &entities.InferenceError{Err: errors.New("no completion choices returned")}
	}

	reply := resp.Choices[0].Message.Content
	g.logger.Info("Image analysis completed", zap.Int("responseLength", len(reply)))
	return reply, nil
}
