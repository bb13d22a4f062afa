package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/prasraka/docvoice/adapters/media"
	"github.com/prasraka/docvoice/adapters/session"
	"github.com/prasraka/docvoice/adapters/stt"
	"github.com/prasraka/docvoice/adapters/tts"
	"github.com/prasraka/docvoice/adapters/vision"
	"github.com/prasraka/docvoice/domain/repositories"
	"github.com/prasraka/docvoice/internal/api"
	"github.com/prasraka/docvoice/internal/auth"
	"github.com/prasraka/docvoice/internal/websocket"
	"github.com/prasraka/docvoice/usecase"
)

func main() {
	// Load .env when present. Real deployments set the environment
	// directly.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	auth.SetSecret(os.Getenv("JWT_SECRET"))

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	store, err := media.NewStore(os.Getenv("MEDIA_DIR"), logger)
	if err != nil {
		logger.Fatal("Failed to initialize media store", zap.Error(err))
	}
	sessions := session.NewMemoryRepository()

	speechToText := buildSpeechToText(logger)
	visionModel := buildVisionModel(logger)
	primaryTTS, fallbackTTS := buildSynthesizers(logger)

	// Initialize WebSocket progress hub
	hub := websocket.NewProgressHub(logger)

	// Initialize usecase services
	consultationService := usecase.NewConsultationService(
		speechToText,
		visionModel,
		primaryTTS,
		fallbackTTS,
		store,
		hub,
		logger,
	)

	// Initialize API routes
	handler := api.NewHandler(sessions, store, consultationService, logger)
	api.InitRoutes(e, handler, hub, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildSpeechToText selects the transcription backend from
// STT_PROVIDER, falling back to the mock when no credentials exist.
func buildSpeechToText(logger *zap.Logger) repositories.SpeechToText {
	switch os.Getenv("STT_PROVIDER") {
	case "google":
		logger.Info("Using Google Cloud speech-to-text")
		return stt.NewGoogleSpeechToText(os.Getenv("STT_LANGUAGE"), logger)
	case "mock":
		logger.Info("Using mock speech-to-text")
		return stt.NewMockSpeechToText(logger)
	default:
		client, err := stt.NewGroqSpeechToText(stt.NewGroqConfigFromEnv(), logger)
		if err != nil {
			logger.Warn("Groq speech-to-text unavailable, using mock", zap.Error(err))
			return stt.NewMockSpeechToText(logger)
		}
		logger.Info("Using Groq speech-to-text")
		return client
	}
}

// buildVisionModel selects the inference backend from VISION_PROVIDER.
func buildVisionModel(logger *zap.Logger) repositories.VisionModel {
	switch os.Getenv("VISION_PROVIDER") {
	case "gemini":
		client, err := vision.NewGeminiVisionModel(vision.NewGeminiConfigFromEnv(), logger)
		if err != nil {
			logger.Warn("Gemini vision unavailable, using mock", zap.Error(err))
			return vision.NewMockVisionModel(logger)
		}
		logger.Info("Using Gemini vision model")
		return client
	case "mock":
		logger.Info("Using mock vision model")
		return vision.NewMockVisionModel(logger)
	default:
		client, err := vision.NewGroqVisionModel(vision.NewGroqConfigFromEnv(), logger)
		if err != nil {
			logger.Warn("Groq vision unavailable, using mock", zap.Error(err))
			return vision.NewMockVisionModel(logger)
		}
		logger.Info("Using Groq vision model")
		return client
	}
}

// buildSynthesizers returns the primary and fallback text-to-speech
// backends. ElevenLabs is primary when configured; the Google
// Translate endpoint always serves as the fallback.
func buildSynthesizers(logger *zap.Logger) (repositories.TextToSpeech, repositories.TextToSpeech) {
	fallback := tts.NewGoogleTranslateTTS("", os.Getenv("TTS_LANGUAGE"), logger)

	primary, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		logger.Warn("ElevenLabs unavailable, synthesis relies on fallback", zap.Error(err))
		return fallback, tts.NewMockTextToSpeech(logger)
	}
	logger.Info("Using ElevenLabs text-to-speech with Google Translate fallback")
	return primary, fallback
}
