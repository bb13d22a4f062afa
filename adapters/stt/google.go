package stt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

const defaultGoogleLanguage = "en-US"

// GoogleSpeechToText implements SpeechToText using Google Cloud
// Speech-to-Text batch recognition. Credentials are discovered the
// usual way (GOOGLE_APPLICATION_CREDENTIALS). Selected with
// STT_PROVIDER=google.
type GoogleSpeechToText struct {
	language string
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a Google Cloud STT adapter.
func NewGoogleSpeechToText(language string, logger *zap.Logger) *GoogleSpeechToText {
	if language == "" {
		language = defaultGoogleLanguage
	}
	return &GoogleSpeechToText{language: language, logger: logger}
}

// Transcribe reads the audio file and runs a single batch Recognize
// call, concatenating the best alternatives of all results.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", &entities.IOError{Op: "read audio", Path: audioPath, Err: err}
	}

	encoding, err := encodingForFile(audioPath)
	if err != nil {
		return "", &entities.TranscriptionError{Err: err}
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", &entities.TranscriptionError{Err: fmt.Errorf("create speech client: %w", err)}
	}
	defer client.Close()

	g.logger.Info("Transcribing audio with Google Cloud",
		zap.String("file", audioPath),
		zap.String("language", g.language))

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     encoding,
			LanguageCode: g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return "", &entities.TranscriptionError{Err: err}
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
		}
	}

	// No results means silence, which is a valid empty transcript.
	return strings.TrimSpace(transcript.String()), nil
}

// encodingForFile maps a file extension to the Speech API encoding enum.
func encodingForFile(path string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case ".flac":
		return speechpb.RecognitionConfig_FLAC, nil
	case ".ogg":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}
