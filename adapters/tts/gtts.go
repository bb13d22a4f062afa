package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/prasraka/docvoice/domain/entities"
	"github.com/prasraka/docvoice/domain/repositories"
)

const (
	defaultTranslateBaseURL = "https://translate.google.com"
	defaultTranslateLang    = "en"

	// The translate endpoint rejects long inputs, so text is split
	// into chunks and the resulting mp3 segments are concatenated.
	maxChunkRunes = 200
)

// GoogleTranslateTTS is the fallback synthesis provider. It uses the
// unauthenticated Google Translate speech endpoint, the same backend
// the gTTS library wraps. Lower fidelity than Eleven Labs but needs
// no credentials.
type GoogleTranslateTTS struct {
	baseURL string
	lang    string
	client  *http.Client
	logger  *zap.Logger
}

var _ repositories.TextToSpeech = (*GoogleTranslateTTS)(nil)

// NewGoogleTranslateTTS creates the fallback synthesizer. An empty
// baseURL or lang selects the defaults.
func NewGoogleTranslateTTS(baseURL string, lang string, logger *zap.Logger) *GoogleTranslateTTS {
	if baseURL == "" {
		baseURL = defaultTranslateBaseURL
	}
	if lang == "" {
		lang = defaultTranslateLang
	}
	return &GoogleTranslateTTS{
		baseURL: baseURL,
		lang:    lang,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Synthesize fetches speech for each text chunk and appends the mp3
// segments to outputPath. A partial file is removed on failure.
func (g *GoogleTranslateTTS) Synthesize(ctx context.Context, text string, outputPath string) error {
	chunks := splitChunks(text, maxChunkRunes)
	if len(chunks) == 0 {
		return &entities.SynthesisError{Provider: "google-translate", Err: fmt.Errorf("text cannot be empty")}
	}

	g.logger.Info("Synthesizing speech with fallback provider",
		zap.Int("textLength", len(text)),
		zap.Int("chunks", len(chunks)))

	out, err := os.Create(outputPath)
	if err != nil {
		return &entities.IOError{Op: "create audio file", Path: outputPath, Err: err}
	}
	defer out.Close()

	for _, chunk := range chunks {
		if err := g.fetchChunk(ctx, chunk, out); err != nil {
			out.Close()
			os.Remove(outputPath)
			return err
		}
	}

	g.logger.Info("Fallback synthesis completed", zap.String("path", outputPath))
	return nil
}

func (g *GoogleTranslateTTS) fetchChunk(ctx context.Context, chunk string, out io.Writer) error {
	endpoint := fmt.Sprintf("%s/translate_tts?ie=UTF-8&client=tw-ob&tl=%s&q=%s",
		g.baseURL, url.QueryEscape(g.lang), url.QueryEscape(chunk))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &entities.SynthesisError{Provider: "google-translate", Err: err}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return &entities.SynthesisError{Provider: "google-translate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &entities.SynthesisError{
			Provider: "google-translate",
			Err:      fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return &entities.SynthesisError{Provider: "google-translate", Err: err}
	}
	return nil
}

// splitChunks breaks text into word-boundary chunks of at most max
// runes. Words longer than max are hard-split.
func splitChunks(text string, max int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)

		for wordLen > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
			wordLen = utf8.RuneCountInString(word)
		}
		if wordLen == 0 {
			continue
		}

		// +1 for the joining space.
		if currentLen > 0 && currentLen+1+wordLen > max {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	flush()

	return chunks
}
