package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/adapters/media"
	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
	"github.com/prasraka/docvoice/internal/auth"
	"github.com/prasraka/docvoice/usecase"
)

// Multipart uploads larger than this are rejected outright.
const maxUploadBytes = 20 << 20 // 20MB

// errResponded signals that a helper already wrote the error response.
var errResponded = errors.New("response already written")

// Handler bundles the dependencies of the HTTP endpoints.
type Handler struct {
	sessions      repositories.SessionRepository
	media         *media.Store
	consultations *usecase.ConsultationService
	logger        *zap.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	sessions repositories.SessionRepository,
	mediaStore *media.Store,
	consultations *usecase.ConsultationService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessions:      sessions,
		media:         mediaStore,
		consultations: consultations,
		logger:        logger,
	}
}

// CreateSession starts a new session and returns its bearer token.
func (h *Handler) CreateSession(c echo.Context) error {
	session, err := h.sessions.Create(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "session_creation_failed",
			Message: "Could not create a session",
		})
	}

	token, err := auth.GenerateSessionToken(session.ID)
	if err != nil {
		h.logger.Error("Failed to generate session token",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate session token",
		})
	}

	h.logger.Info("Session created", zap.String("sessionID", session.ID))
	return c.JSON(http.StatusCreated, SessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(auth.SessionTokenTTL),
	})
}

// UploadAudio stores a recorded clip for the session, superseding any
// previous one.
func (h *Handler) UploadAudio(c echo.Context) error {
	session, err := h.sessionFromRequest(c)
	if err != nil {
		return nil
	}

	data, ext, err := h.readUpload(c, "audio")
	if err != nil {
		return nil
	}

	path, err := h.media.SaveAudio(session.ID, data, ext)
	if err != nil {
		var recErr *entities.RecordingError
		if errors.As(err, &recErr) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "recording_rejected",
				Message: recErr.Reason,
			})
		}
		h.logger.Error("Failed to store audio", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_failed",
			Message: "Could not store the recording",
		})
	}

	if previous := session.AttachAudio(path); previous != nil {
		h.media.Remove(previous.FilePath)
	}
	if err := h.sessions.Save(c.Request().Context(), session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Kind:      string(entities.CaptureKindAudio),
		CreatedAt: session.Audio.CreatedAt,
	})
}

// UploadImage stores an uploaded or camera-captured image for the
// session. Only jpg/jpeg/png/bmp are accepted.
func (h *Handler) UploadImage(c echo.Context) error {
	session, err := h.sessionFromRequest(c)
	if err != nil {
		return nil
	}

	data, ext, err := h.readUpload(c, "image")
	if err != nil {
		return nil
	}

	path, err := h.media.SaveImage(session.ID, data, ext)
	if err != nil {
		h.logger.Warn("Image rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "image_rejected",
			Message: "Only jpg, jpeg, png and bmp images are accepted",
		})
	}

	if previous := session.AttachImage(path); previous != nil {
		h.media.Remove(previous.FilePath)
	}
	if err := h.sessions.Save(c.Request().Context(), session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Kind:      string(entities.CaptureKindImage),
		CreatedAt: session.Image.CreatedAt,
	})
}

// RunConsultation executes the pipeline on the session's captures.
func (h *Handler) RunConsultation(c echo.Context) error {
	session, err := h.sessionFromRequest(c)
	if err != nil {
		return nil
	}

	if !session.HasInputs() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_inputs",
			Message: "Please provide either audio input or image input (or both)",
		})
	}

	input := usecase.ConsultationInput{}
	if session.Audio != nil {
		input.AudioPath = session.Audio.FilePath
	}
	if session.Image != nil {
		input.ImagePath = session.Image.FilePath
	}

	// Superseded voice responses would otherwise pile up on disk.
	if session.Result != nil && session.Result.HasAudio() {
		h.media.Remove(session.Result.AudioPath)
	}

	result := h.consultations.Run(c.Request().Context(), session.ID, input)
	session.SetResult(result)
	if err := h.sessions.Save(c.Request().Context(), session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}

	response := ConsultationResponse{
		Transcript: result.Transcript,
		Response:   result.Response,
	}
	if result.HasAudio() {
		url := "/api/v1/consultation/audio"
		response.AudioURL = &url
	}

	return c.JSON(http.StatusOK, response)
}

// GetAudio serves the synthesized voice response as a download.
func (h *Handler) GetAudio(c echo.Context) error {
	session, err := h.sessionFromRequest(c)
	if err != nil {
		return nil
	}

	if session.Result == nil || !session.Result.HasAudio() {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "no_audio",
			Message: "No voice response is available for this session",
		})
	}

	return c.Attachment(session.Result.AudioPath, "doctor_response.mp3")
}

// ResetSession clears all session state and removes its temp files.
// Resetting an already-reset session succeeds.
func (h *Handler) ResetSession(c echo.Context) error {
	claims, err := h.claimsFromRequest(c)
	if err != nil {
		return nil
	}

	if err := h.media.CleanupSession(claims.SessionID); err != nil {
		h.logger.Warn("Failed to clean session media",
			zap.String("sessionID", claims.SessionID),
			zap.Error(err))
	}
	if err := h.sessions.Delete(c.Request().Context(), claims.SessionID); err != nil {
		h.logger.Error("Failed to delete session",
			zap.String("sessionID", claims.SessionID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reset_failed",
			Message: "Could not reset the session",
		})
	}

	h.logger.Info("Session reset", zap.String("sessionID", claims.SessionID))
	return c.NoContent(http.StatusNoContent)
}

// claimsFromRequest extracts and validates the bearer token. On
// failure the error response is already written and errResponded is
// returned.
func (h *Handler) claimsFromRequest(c echo.Context) (*auth.SessionClaims, error) {
	var token string
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_token",
			Message: "Session token is required in Authorization header",
		})
		return nil, errResponded
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired session token",
		})
		return nil, errResponded
	}
	return claims, nil
}

// sessionFromRequest resolves the bearer token to a live session.
func (h *Handler) sessionFromRequest(c echo.Context) (*entities.Session, error) {
	claims, err := h.claimsFromRequest(c)
	if err != nil {
		return nil, err
	}

	session, err := h.sessions.Get(c.Request().Context(), claims.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "session_not_found",
			Message: "The session does not exist or was reset",
		})
		return nil, errResponded
	}
	return session, nil
}

// readUpload pulls one multipart file out of the request.
func (h *Handler) readUpload(c echo.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_file",
			Message: "Multipart field '" + field + "' is required",
		})
		return nil, "", errResponded
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "upload_too_large",
			Message: "Uploads are limited to 20MB",
		})
		return nil, "", errResponded
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unreadable_upload",
			Message: "Could not read the uploaded file",
		})
		return nil, "", errResponded
	}

	return data, filepath.Ext(fileHeader.Filename), nil
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
}
