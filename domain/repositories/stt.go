package repositories

import "context"

// SpeechToText abstracts hosted speech recognition services.
type SpeechToText interface {
	// Transcribe uploads the audio file at audioPath and returns plain
	// text. Silent or empty audio yields an empty transcript, not an
	// error.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
