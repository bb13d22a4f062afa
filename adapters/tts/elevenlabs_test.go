package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/prasraka/docvoice/domain/entities"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	synth, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if synth.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", synth.apiKey)
	}

	if synth.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, synth.voiceID)
	}

	if synth.modelID != defaultModelID {
		t.Errorf("Expected default model ID '%s', got '%s'", defaultModelID, synth.modelID)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Stability: 1.5}); err == nil {
		t.Error("Expected error for out-of-range stability")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Clarity: -0.1}); err == nil {
		t.Error("Expected error for out-of-range clarity")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k"}); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestElevenLabsSynthesizeWritesFile(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("Expected xi-api-key header, got %q", r.Header.Get("xi-api-key"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake-mp3-bytes"))
	}))
	defer server.Close()

	synth, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "voice.mp3")
	if err := synth.Synthesize(context.Background(), "hello there", outputPath); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	if string(data) != "ID3fake-mp3-bytes" {
		t.Errorf("Unexpected file contents: %q", data)
	}
}

func TestElevenLabsSynthesizeAPIError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	synth, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	outputPath := filepath.Join(t.TempDir(), "voice.mp3")
	err = synth.Synthesize(context.Background(), "hello there", outputPath)

	var synthErr *entities.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("Expected SynthesisError, got %v", err)
	}
	if synthErr.Provider != "elevenlabs" {
		t.Errorf("Expected provider elevenlabs, got %s", synthErr.Provider)
	}

	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("Expected no output file after API error")
	}
}

func TestElevenLabsSynthesizeEmptyText(t *testing.T) {
	logger := zaptest.NewLogger(t)

	synth, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	err = synth.Synthesize(context.Background(), "   ", filepath.Join(t.TempDir(), "voice.mp3"))
	var synthErr *entities.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Errorf("Expected SynthesisError for empty text, got %v", err)
	}
}
