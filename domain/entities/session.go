package entities

import (
	"time"

	"github.com/google/uuid"
)

// Session represents the per-user interactive state of the demo:
// the latest captured audio and image plus the latest pipeline result.
// Sessions live in memory only and are fully cleared on reset.
type Session struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActiveAt time.Time       `json:"last_active_at"`
	Audio        *CaptureResult  `json:"audio,omitempty"`
	Image        *CaptureResult  `json:"image,omitempty"`
	Result       *PipelineResult `json:"result,omitempty"`
}

// NewSession creates a fresh session with a random ID.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// AttachAudio records a newly captured audio clip, superseding any
// previous one. The superseded capture is returned so the caller can
// delete its file.
func (s *Session) AttachAudio(filePath string) *CaptureResult {
	previous := s.Audio
	s.Audio = &CaptureResult{
		Kind:      CaptureKindAudio,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}
	s.touch()
	return previous
}

// AttachImage records a newly captured image, superseding any
// previous one. The superseded capture is returned so the caller can
// delete its file.
func (s *Session) AttachImage(filePath string) *CaptureResult {
	previous := s.Image
	s.Image = &CaptureResult{
		Kind:      CaptureKindImage,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}
	s.touch()
	return previous
}

// SetResult stores the outcome of a pipeline run, overwriting the
// previous one.
func (s *Session) SetResult(result *PipelineResult) {
	s.Result = result
	s.touch()
}

// HasInputs reports whether at least one input is present, the
// precondition for running a consultation.
func (s *Session) HasInputs() bool {
	return s.Audio != nil || s.Image != nil
}

// Clear drops all captures and the latest result. Clearing an already
// empty session is a no-op.
func (s *Session) Clear() {
	s.Audio = nil
	s.Image = nil
	s.Result = nil
	s.touch()
}

func (s *Session) touch() {
	s.LastActiveAt = time.Now()
}
