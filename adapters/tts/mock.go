package tts

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

// SynthesisCall records one Synthesize invocation.
type SynthesisCall struct {
	Text       string
	OutputPath string
}

// MockTextToSpeech records synthesis calls and writes a small dummy
// file, or fails when Err is set. Used both in tests and as the
// placeholder provider when no credentials are configured.
type MockTextToSpeech struct {
	mu     sync.Mutex
	calls  []SynthesisCall
	Err    error
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// NewMockTextToSpeech creates a mock synthesizer.
func NewMockTextToSpeech(logger *zap.Logger) *MockTextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

// Synthesize records the call and writes a placeholder mp3.
func (m *MockTextToSpeech) Synthesize(ctx context.Context, text string, outputPath string) error {
	m.mu.Lock()
	m.calls = append(m.calls, SynthesisCall{Text: text, OutputPath: outputPath})
	m.mu.Unlock()

	if m.Err != nil {
		return &entities.SynthesisError{Provider: "mock", Err: m.Err}
	}

	m.logger.Info("Mock speech synthesis", zap.String("path", outputPath))
	return os.WriteFile(outputPath, []byte("ID3mock-audio"), 0o644)
}

// Calls returns a copy of the recorded invocations.
func (m *MockTextToSpeech) Calls() []SynthesisCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]SynthesisCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}
