package stt

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

// MockSpeechToText is a placeholder transcription backend used when no
// provider credentials are configured.
type MockSpeechToText struct {
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a mock speech-to-text service.
func NewMockSpeechToText(logger *zap.Logger) *MockSpeechToText {
	return &MockSpeechToText{logger: logger}
}

// Transcribe returns a canned transcript based on the clip size.
func (m *MockSpeechToText) Transcribe(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", &entities.IOError{Op: "stat audio", Path: audioPath, Err: err}
	}

	m.logger.Info("Mock transcription",
		zap.String("file", audioPath),
		zap.Int64("size", info.Size()))

	switch {
	case info.Size() > 200_000:
		return "I have had this rash on my arm for about a week and it seems to be spreading.", nil
	case info.Size() > 50_000:
		return "Does this look infected to you?", nil
	case info.Size() > 1_000:
		return "What do you see here?", nil
	default:
		// Tiny clips are treated as silence.
		return "", nil
	}
}
