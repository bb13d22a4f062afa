package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "whisper-large-v3"
)

// GroqConfig holds configuration for the Groq Whisper adapter.
// Required fields:
// - APIKey: Your Groq API key
// Optional fields with defaults:
// - BaseURL: The OpenAI-compatible base URL (default: "https://api.groq.com/openai/v1")
// - Model: The Whisper model name (default: "whisper-large-v3")
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
		Model:   os.Getenv("GROQ_STT_MODEL"),
	}
}

// GroqSpeechToText implements SpeechToText using Groq's hosted Whisper
// through the OpenAI-compatible transcription endpoint.
type GroqSpeechToText struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GroqSpeechToText)(nil)

// NewGroqSpeechToText creates a new Groq Whisper transcription client.
func NewGroqSpeechToText(config GroqConfig, logger *zap.Logger) (*GroqSpeechToText, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultGroqModel
		logger.Info("Using default STT model", zap.String("model", model))
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = baseURL

	return &GroqSpeechToText{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger,
	}, nil
}

// Transcribe uploads the audio file and returns the transcript.
func (g *GroqSpeechToText) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", &entities.IOError{Op: "stat audio", Path: audioPath, Err: err}
	}

	g.logger.Info("Transcribing audio",
		zap.String("file", audioPath),
		zap.String("model", g.model))

	resp, err := g.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    g.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", &entities.TranscriptionError{Err: err}
	}

	transcript := strings.TrimSpace(resp.Text)
	g.logger.Info("Transcription completed", zap.Int("length", len(transcript)))

	// Silence comes back as an empty transcript, which is a valid
	// result, not a failure.
	return transcript, nil
}
