package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

// systemPrompt is the persona contract sent to the vision model. It
// constrains the reply to a concise, non-technical single paragraph;
// the reply is never parsed or validated structurally.
const systemPrompt = `You have to act as a professional doctor, i know you are not but this is for learning purpose.
            What's in this image?. Do you find anything wrong with it medically?
            If you make a differential, suggest some remedies for them. Donot add any numbers or special characters in
            your response. Your response should be in one long paragraph. Also always answer as if you are answering to a real person.
            Donot say 'In the image I see' but say 'With what I see, I think you have ....'
            Dont respond as an AI model in markdown, your answer should mimic that of an actual doctor not an AI bot,
            Keep your answer concise (max 2 sentences). No preamble, start your answer right away please`

// User-visible fallback strings. These are product copy: tests and the
// UI rely on the exact wording.
const (
	// NoImageResponse is returned when there is no image to analyze.
	// Unlike the failure placeholders below it is never synthesized to
	// speech.
	NoImageResponse = "No image provided for me to analyze"

	// TranscriptionFallback replaces the transcript when the
	// speech-to-text call fails. Analysis still proceeds with it.
	TranscriptionFallback = "Error transcribing audio"

	// AnalysisFallback replaces the model response when the vision
	// call fails.
	AnalysisFallback = "Error analyzing image"
)

// Stage identifies a step of the consultation pipeline.
type Stage string

const (
	StageTranscribing Stage = "transcribing"
	StageAnalyzing    Stage = "analyzing"
	StageSynthesizing Stage = "synthesizing"
	StageDone         Stage = "done"
)

// ProgressNotifier receives stage transitions while a consultation
// runs, e.g. to push them to a connected browser.
type ProgressNotifier interface {
	NotifyStage(sessionID string, stage Stage)
}

// ResponsePathAllocator hands out output locations for synthesized
// voice responses.
type ResponsePathAllocator interface {
	ResponsePath(sessionID string) (string, error)
}

// ConsultationInput carries the file paths of the session's captures.
// Both are optional, but the caller must ensure at least one is set
// before expecting a meaningful result.
type ConsultationInput struct {
	AudioPath string
	ImagePath string
}

// ConsultationService orchestrates one consultation run:
// transcription, image analysis, then speech synthesis with fallback.
// Every stage failure degrades to a placeholder instead of aborting,
// so Run never returns an error.
type ConsultationService struct {
	speechToText repositories.SpeechToText
	vision       repositories.VisionModel
	primaryTTS   repositories.TextToSpeech
	fallbackTTS  repositories.TextToSpeech
	paths        ResponsePathAllocator
	progress     ProgressNotifier
	logger       *zap.Logger
}

// NewConsultationService creates a new consultation service. progress
// may be nil when no one listens for stage events.
func NewConsultationService(
	stt repositories.SpeechToText,
	vision repositories.VisionModel,
	primaryTTS repositories.TextToSpeech,
	fallbackTTS repositories.TextToSpeech,
	paths ResponsePathAllocator,
	progress ProgressNotifier,
	logger *zap.Logger,
) *ConsultationService {
	return &ConsultationService{
		speechToText: stt,
		vision:       vision,
		primaryTTS:   primaryTTS,
		fallbackTTS:  fallbackTTS,
		paths:        paths,
		progress:     progress,
		logger:       logger,
	}
}

// Run executes the pipeline for one session and returns the result
// triple. Stage failures are logged and substituted, never propagated.
func (s *ConsultationService) Run(ctx context.Context, sessionID string, input ConsultationInput) *entities.PipelineResult {
	result := &entities.PipelineResult{CreatedAt: time.Now()}

	// Nothing to work with: short-circuit without touching any
	// provider.
	if input.AudioPath == "" && input.ImagePath == "" {
		result.Response = NoImageResponse
		s.notify(sessionID, StageDone)
		return result
	}

	if input.AudioPath != "" {
		s.notify(sessionID, StageTranscribing)
		transcript, err := s.speechToText.Transcribe(ctx, input.AudioPath)
		if err != nil {
			s.logger.Warn("Transcription failed, continuing with placeholder",
				zap.String("sessionID", sessionID),
				zap.Error(err))
			transcript = TranscriptionFallback
		}
		result.Transcript = transcript
	}

	if input.ImagePath != "" {
		s.notify(sessionID, StageAnalyzing)
		// The transcript is appended verbatim, including the failure
		// placeholder, so the model still sees what the user intended.
		response, err := s.vision.Analyze(ctx, systemPrompt+result.Transcript, input.ImagePath)
		if err != nil {
			s.logger.Warn("Image analysis failed, continuing with placeholder",
				zap.String("sessionID", sessionID),
				zap.Error(err))
			response = AnalysisFallback
		}
		result.Response = response
	} else {
		result.Response = NoImageResponse
	}

	// The no-image sentinel is the one response that is never spoken.
	// Failure placeholders, by contrast, do get synthesized.
	if result.Response != "" && result.Response != NoImageResponse {
		result.AudioPath = s.synthesize(ctx, sessionID, result.Response)
	}

	s.notify(sessionID, StageDone)
	s.logger.Info("Consultation completed",
		zap.String("sessionID", sessionID),
		zap.Int("transcriptLength", len(result.Transcript)),
		zap.Int("responseLength", len(result.Response)),
		zap.Bool("hasAudio", result.HasAudio()))
	return result
}

// synthesize attempts the primary provider, then the fallback with the
// identical text and path. Both failing yields an empty path.
func (s *ConsultationService) synthesize(ctx context.Context, sessionID string, text string) string {
	s.notify(sessionID, StageSynthesizing)

	outputPath, err := s.paths.ResponsePath(sessionID)
	if err != nil {
		s.logger.Error("Failed to allocate response path",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return ""
	}

	err = s.primaryTTS.Synthesize(ctx, text, outputPath)
	if err == nil {
		return outputPath
	}
	s.logger.Warn("Primary synthesis failed, trying fallback",
		zap.String("sessionID", sessionID),
		zap.Error(err))

	if err := s.fallbackTTS.Synthesize(ctx, text, outputPath); err != nil {
		s.logger.Error("Fallback synthesis failed, omitting voice response",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		return ""
	}
	return outputPath
}

func (s *ConsultationService) notify(sessionID string, stage Stage) {
	if s.progress != nil {
		s.progress.NotifyStage(sessionID, stage)
	}
}
