package vision

import (
	"context"

	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/repositories"
)

// MockVisionModel is a placeholder inference backend used when no
// provider credentials are configured.
type MockVisionModel struct {
	logger *zap.Logger
}

var _ repositories.VisionModel = (*MockVisionModel)(nil)

// NewMockVisionModel creates a mock vision model.
func NewMockVisionModel(logger *zap.Logger) *MockVisionModel {
	return &MockVisionModel{logger: logger}
}

// Analyze verifies the image exists and returns a canned reply.
func (m *MockVisionModel) Analyze(ctx context.Context, prompt string, imagePath string) (string, error) {
	// Keep the missing-file failure mode of the real adapters.
	if _, _, err := EncodeImage(imagePath); err != nil {
		return "", err
	}

	m.logger.Info("Mock image analysis",
		zap.String("file", imagePath),
		zap.Int("promptLength", len(prompt)))

	return "With what I see, I think you have a mild skin irritation, " +
		"keep the area clean and moisturized and it should settle within a few days.", nil
}
