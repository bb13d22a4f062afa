package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/prasraka/docvoice/adapters/media"
	"github.com/prasraka/docvoice/adapters/session"
	"github.com/prasraka/docvoice/adapters/stt"
	"github.com/prasraka/docvoice/adapters/tts"
	"github.com/prasraka/docvoice/adapters/vision"
	"github.com/prasraka/docvoice/internal/websocket"
	"github.com/prasraka/docvoice/usecase"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store, err := media.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	sessions := session.NewMemoryRepository()
	hub := websocket.NewProgressHub(logger)
	service := usecase.NewConsultationService(
		stt.NewMockSpeechToText(logger),
		vision.NewMockVisionModel(logger),
		tts.NewMockTextToSpeech(logger),
		tts.NewMockTextToSpeech(logger),
		store,
		hub,
		logger,
	)

	e := echo.New()
	InitRoutes(e, NewHandler(sessions, store, service, logger), hub, logger)
	return e
}

func createTestSession(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	if body.Token == "" || body.SessionID == "" {
		t.Fatalf("incomplete session response: %+v", body)
	}
	return body.Token
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func doUpload(e *echo.Echo, token, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "docvoice-server") {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}

func TestConsultationFlowWithImage(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	body, contentType := multipartBody(t, "image", "rash.png", []byte("fake-png-bytes"))
	if rec := doUpload(e, token, "/api/v1/media/image", contentType, body); rec.Code != http.StatusOK {
		t.Fatalf("image upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/consultation", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("consultation status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result ConsultationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode consultation response: %v", err)
	}
	if result.Transcript != "" {
		t.Errorf("transcript = %q, want empty without audio", result.Transcript)
	}
	if result.Response == "" {
		t.Error("expected a non-empty response")
	}
	if result.AudioURL == nil {
		t.Fatal("expected an audio URL")
	}

	audio := doJSON(e, http.MethodGet, *result.AudioURL, token)
	if audio.Code != http.StatusOK {
		t.Fatalf("audio download status = %d", audio.Code)
	}
	if audio.Body.Len() == 0 {
		t.Error("audio download is empty")
	}
	disposition := audio.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "doctor_response.mp3") {
		t.Errorf("Content-Disposition = %q, want doctor_response.mp3", disposition)
	}
}

func TestConsultationAudioOnlySkipsSynthesis(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	clip := bytes.Repeat([]byte{0x1f}, 2000)
	body, contentType := multipartBody(t, "audio", "clip.webm", clip)
	if rec := doUpload(e, token, "/api/v1/media/audio", contentType, body); rec.Code != http.StatusOK {
		t.Fatalf("audio upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/consultation", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("consultation status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result ConsultationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode consultation response: %v", err)
	}
	if result.Response != usecase.NoImageResponse {
		t.Errorf("response = %q, want %q", result.Response, usecase.NoImageResponse)
	}
	if result.AudioURL != nil {
		t.Error("expected no audio URL without an image")
	}

	audio := doJSON(e, http.MethodGet, "/api/v1/consultation/audio", token)
	if audio.Code != http.StatusNotFound {
		t.Errorf("audio status = %d, want 404", audio.Code)
	}
}

func TestConsultationWithoutInputs(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	rec := doJSON(e, http.MethodPost, "/api/v1/consultation", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("consultation status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing_inputs") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUploadRejectsUnsupportedImage(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	body, contentType := multipartBody(t, "image", "scan.tiff", []byte("tiff"))
	rec := doUpload(e, token, "/api/v1/media/image", contentType, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("image upload status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "image_rejected") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUploadRejectsEmptyAudio(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	body, contentType := multipartBody(t, "audio", "clip.webm", nil)
	rec := doUpload(e, token, "/api/v1/media/audio", contentType, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("audio upload status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "recording_rejected") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	e := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/consultation"},
		{http.MethodGet, "/api/v1/consultation/audio"},
		{http.MethodDelete, "/api/v1/session"},
	} {
		rec := doJSON(e, tc.method, tc.path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestResetIsIdempotent(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	body, contentType := multipartBody(t, "image", "rash.jpg", []byte("jpeg-bytes"))
	if rec := doUpload(e, token, "/api/v1/media/image", contentType, body); rec.Code != http.StatusOK {
		t.Fatalf("image upload status = %d", rec.Code)
	}

	if rec := doJSON(e, http.MethodDelete, "/api/v1/session", token); rec.Code != http.StatusNoContent {
		t.Fatalf("first reset status = %d, want 204", rec.Code)
	}
	if rec := doJSON(e, http.MethodDelete, "/api/v1/session", token); rec.Code != http.StatusNoContent {
		t.Fatalf("second reset status = %d, want 204", rec.Code)
	}

	// The session is gone, so subsequent uploads must fail.
	body, contentType = multipartBody(t, "image", "rash.jpg", []byte("jpeg-bytes"))
	if rec := doUpload(e, token, "/api/v1/media/image", contentType, body); rec.Code != http.StatusNotFound {
		t.Errorf("upload after reset status = %d, want 404", rec.Code)
	}
}

func TestNewUploadSupersedesPrevious(t *testing.T) {
	e := newTestServer(t)
	token := createTestSession(t, e)

	for _, name := range []string{"first.png", "second.png"} {
		body, contentType := multipartBody(t, "image", name, []byte("png-bytes-"+name))
		if rec := doUpload(e, token, "/api/v1/media/image", contentType, body); rec.Code != http.StatusOK {
			t.Fatalf("upload %s status = %d", name, rec.Code)
		}
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/consultation", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("consultation status = %d, body %s", rec.Code, rec.Body.String())
	}
}
