// Package llm connects story and image prompts to hosted generators.
package llm

import (
	"context"
	"fmt"
)

// StoryWriter turns a story prompt into a short mnemonic story.
type StoryWriter interface {
	WriteStory(ctx context.Context, prompt string) (string, error)
}

// ImagePainter turns an image prompt into encoded image bytes (PNG).
type ImagePainter interface {
	PaintImage(ctx context.Context, prompt string) ([]byte, error)
}

// Options configures a provider.
type Options struct {
	Provider     string // "anthropic", "gemini" or "none"
	Model        string
	ImageModel   string
	System       string
	Temperature  float64
	MaxTokens    int
	AnthropicKey string
	GeminiKey    string
}

// New returns the writer and painter for the configured provider.
// Either may be nil: "none" yields neither and Anthropic cannot paint.
func New(ctx context.Context, opts Options) (StoryWriter, ImagePainter, error) {
	switch opts.Provider {
	case "", "none":
		return nil, nil, nil
	case "anthropic":
		a, err := NewAnthropic(opts.AnthropicKey,
			WithModel(opts.Model),
			WithSystem(opts.System),
			WithTemperature(opts.Temperature),
			WithMaxTokens(opts.MaxTokens),
		)
		if err != nil {
			return nil, nil, err
		}
		return a, nil, nil
	case "gemini":
		g, err := NewGemini(ctx, GeminiConfig{
			APIKey:      opts.GeminiKey,
			Model:       opts.Model,
			ImageModel:  opts.ImageModel,
			System:      opts.System,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		})
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}
