package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".webm": true,
	".ogg":  true,
	".m4a":  true,
	".flac": true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// Store manages the temporary media files of active sessions. Files
// are grouped per session under a UUID name so concurrent sessions
// never collide, and the whole group is removed on session reset.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a media store rooted at dir. An empty dir falls
// back to a subdirectory of the OS temp dir.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "docvoice")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &entities.IOError{Op: "create media dir", Path: dir, Err: err}
	}

	logger.Info("Media store initialized", zap.String("dir", dir))
	return &Store{dir: dir, logger: logger}, nil
}

// SaveAudio writes recorded audio bytes to a session-scoped temp file
// and returns its path. Empty recordings are rejected.
func (s *Store) SaveAudio(sessionID string, data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", &entities.RecordingError{Reason: "no audio data captured"}
	}
	ext = normalizeExt(ext)
	if !audioExtensions[ext] {
		return "", &entities.RecordingError{Reason: fmt.Sprintf("unsupported audio format %q", ext)}
	}
	return s.write(sessionID, data, ext)
}

// SaveImage writes raw image bytes to a session-scoped temp file and
// returns its path. Only jpg/jpeg/png/bmp are accepted.
func (s *Store) SaveImage(sessionID string, data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", &entities.IOError{Op: "save image", Path: "", Err: fmt.Errorf("empty image upload")}
	}
	ext = normalizeExt(ext)
	if !imageExtensions[ext] {
		return "", &entities.IOError{Op: "save image", Path: "", Err: fmt.Errorf("unsupported image format %q", ext)}
	}
	return s.write(sessionID, data, ext)
}

// ResponsePath allocates a fresh output location for a synthesized
// voice response.
func (s *Store) ResponsePath(sessionID string) (string, error) {
	dir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &entities.IOError{Op: "create session dir", Path: dir, Err: err}
	}
	return filepath.Join(dir, uuid.NewString()+".mp3"), nil
}

// Remove deletes a single stored file, ignoring files that are
// already gone.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove media file",
			zap.String("path", path),
			zap.Error(err))
	}
}

// CleanupSession removes every file the session accumulated.
func (s *Store) CleanupSession(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	dir := filepath.Join(s.dir, sessionID)
	if err := os.RemoveAll(dir); err != nil {
		return &entities.IOError{Op: "cleanup session", Path: dir, Err: err}
	}
	s.logger.Info("Session media removed", zap.String("sessionID", sessionID))
	return nil
}

func (s *Store) write(sessionID string, data []byte, ext string) (string, error) {
	dir := filepath.Join(s.dir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &entities.IOError{Op: "create session dir", Path: dir, Err: err}
	}

	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &entities.IOError{Op: "write media file", Path: path, Err: err}
	}

	s.logger.Debug("Media file written",
		zap.String("sessionID", sessionID),
		zap.String("path", path),
		zap.Int("size", len(data)))
	return path, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
