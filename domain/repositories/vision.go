package repositories

import "context"

// VisionModel abstracts multimodal language model endpoints.
type VisionModel interface {
	// Analyze sends the prompt together with the image at imagePath to
	// the model and returns its free-text reply. The reply is a
	// prompt-engineering contract, not a parsing contract: no
	// structural validation is performed on it.
	Analyze(ctx context.Context, prompt string, imagePath string) (string, error)
}
