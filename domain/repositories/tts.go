package repositories

import "context"

// TextToSpeech abstracts speech synthesis providers.
type TextToSpeech interface {
	// Synthesize converts text to speech and writes an audio file at
	// outputPath.
	Synthesize(ctx context.Context, text string, outputPath string) error
}
