package api

import "time"

// SessionResponse is returned when a new session is created.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadResponse acknowledges a stored media file.
type UploadResponse struct {
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// ConsultationResponse carries the outcome of one pipeline run.
type ConsultationResponse struct {
	Transcript string  `json:"transcript"`
	Response   string  `json:"response"`
	AudioURL   *string `json:"audio_url"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
