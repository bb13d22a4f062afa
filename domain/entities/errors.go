package entities

import "fmt"

// The consultation pipeline never surfaces these to the end user
// directly. Each stage handler catches its own error type and
// substitutes a placeholder string or a null artifact, so the error
// types exist to carry the cause into the logs.

// RecordingError indicates audio capture produced nothing usable.
type RecordingError struct {
	Reason string
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("recording failed: %s", e.Reason)
}

// IOError indicates a local file operation failed.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// TranscriptionError indicates the speech-to-text provider failed.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// InferenceError indicates the vision model call failed.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// SynthesisError indicates a text-to-speech provider failed.
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis with %s failed: %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
