// Package translate localizes catalog text.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel  = "gemini-2.5-flash"
	DefaultTarget = "es"

	defaultTimeout = 30 * time.Second
)

var ErrEmptyTranslation = errors.New("empty translation")

var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"pt": "Portuguese",
	"fr": "French",
}

// generator is the part of genai.Models the translator calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	Target  string
	Timeout time.Duration
}

// GeminiTranslator translates text with a Gemini model.
type GeminiTranslator struct {
	models  generator
	model   string
	target  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewGeminiTranslator(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiTranslator(client.Models, cfg, logger), nil
}

func newGeminiTranslator(models generator, cfg GeminiConfig, logger *zap.Logger) *GeminiTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	target := cfg.Target
	if target == "" {
		target = DefaultTarget
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GeminiTranslator{
		models:  models,
		model:   model,
		target:  target,
		timeout: timeout,
		logger:  logger.Named("translate"),
	}
}

// Translate returns text in the target language. Blank input is returned as is.
func (g *GeminiTranslator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temp := float32(0.2)
	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: g.prompt(text)},
			},
		},
	}, &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("gemini translate: %w", err)
	}

	out := strings.TrimSpace(extractText(resp))
	if out == "" {
		return "", ErrEmptyTranslation
	}

	g.logger.Debug("synopsis translated", zap.String("target", g.target), zap.Int("length", len(out)))
	return out, nil
}

func (g *GeminiTranslator) prompt(text string) string {
	lang, ok := languageNames[g.target]
	if !ok {
		lang = g.target
	}
	return fmt.Sprintf("Translate the following anime or manga synopsis to %s. "+
		"Keep character names and titles unchanged, keep paragraph breaks, "+
		"and answer with the translation only.\n\n%s", lang, text)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

// Passthrough returns text unchanged. Used when no API key is configured.
type Passthrough struct{}

func (Passthrough) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}
