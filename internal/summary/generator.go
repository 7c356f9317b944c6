package summary

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"meeting-notifier/internal/metrics"
	"meeting-notifier/internal/models"

	"github.com/rs/zerolog"
)

// Backend turns a prompt into generated text with a single blocking call.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator produces summary documents. It has no error path: every failure
// becomes a placeholder document so the caller always has something to mail.
type Generator struct {
	backend Backend
	log     zerolog.Logger
}

// NewGenerator accepts a nil backend when no credential is configured.
func NewGenerator(backend Backend, log zerolog.Logger) *Generator {
	return &Generator{backend: backend, log: log}
}

// Generate returns a non-empty HTML document for the given chat history.
func (g *Generator) Generate(ctx context.Context, history []models.ChatMessage) string {
	doc, source := g.generate(ctx, history)
	metrics.ObserveSummary(source)
	return doc
}

func (g *Generator) generate(ctx context.Context, history []models.ChatMessage) (doc, source string) {
	if g.backend == nil {
		g.log.Error().Msg("gemini API key is not configured, returning placeholder summary")
		return PlaceholderMissingCredential, SourceMissingCredential
	}

	transcript := Transcript(history)
	g.log.Debug().Str("transcript", transcript).Msg("transcript prepared for summarization")

	if utf8.RuneCountInString(strings.TrimSpace(transcript)) < MinTranscriptLength {
		g.log.Warn().Int("messages", len(history)).Msg("transcript too short, skipping backend call")
		return PlaceholderInsufficient, SourceInsufficient
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Msg("summary backend panicked")
			doc, source = failurePlaceholder(fmt.Sprint(r)), SourceBackendError
		}
	}()

	text, err := g.backend.Generate(ctx, Prompt(transcript))
	if err != nil {
		g.log.Error().Err(err).Msg("summary backend call failed")
		return failurePlaceholder(err.Error()), SourceBackendError
	}

	if strings.TrimSpace(text) == "" {
		g.log.Error().Msg("summary backend returned an empty document")
		return PlaceholderEmptyResponse, SourceEmptyResponse
	}

	text = strings.TrimSpace(StripFences(text))
	if text == "" {
		g.log.Error().Msg("summary backend returned only code fences")
		return PlaceholderEmptyResponse, SourceEmptyResponse
	}
	return text, SourceGenerated
}

// StripFences removes Markdown code fence markers left around the HTML.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```html", "")
	return strings.ReplaceAll(text, "```", "")
}
