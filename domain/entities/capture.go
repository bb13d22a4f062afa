package entities

import "time"

// CaptureKind identifies the type of a captured media artifact.
type CaptureKind string

const (
	CaptureKindAudio CaptureKind = "audio"
	CaptureKindImage CaptureKind = "image"
)

// CaptureResult references a media file captured for a session.
// The file is ephemeral: it is superseded by the next capture of the
// same kind and deleted when the session is reset.
type CaptureResult struct {
	Kind      CaptureKind `json:"kind"`
	FilePath  string      `json:"file_path"`
	CreatedAt time.Time   `json:"created_at"`
}

// PipelineResult holds the output of one consultation run.
type PipelineResult struct {
	Transcript string    `json:"transcript"`
	Response   string    `json:"response"`
	AudioPath  string    `json:"audio_path,omitempty"` // empty when synthesis failed or was skipped
	CreatedAt  time.Time `json:"created_at"`
}

// HasAudio reports whether a voice response was produced.
func (r *PipelineResult) HasAudio() bool {
	return r != nil && r.AudioPath != ""
}
