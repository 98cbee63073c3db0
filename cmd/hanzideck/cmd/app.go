package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/card"
	"github.com/f3rmion/hanzideck/internal/config"
	"github.com/f3rmion/hanzideck/internal/decomp"
	"github.com/f3rmion/hanzideck/internal/llm"
	"github.com/f3rmion/hanzideck/internal/media"
	"github.com/f3rmion/hanzideck/internal/pinyin"
	"github.com/f3rmion/hanzideck/internal/prompt"
)

// loadDictionary loads the Make Me a Hanzi dictionary. A partial read is
// logged and the entries read so far are used.
func loadDictionary() *decomp.Database {
	db, err := decomp.Load(settings.Dictionary)
	if err != nil {
		logger.Warn("dictionary incomplete", zap.String("path", settings.Dictionary), zap.Error(err))
	}
	if db.Size() == 0 {
		logger.Warn("dictionary is empty; meanings and hints will be missing",
			zap.String("path", settings.Dictionary))
	}
	logger.Debug("dictionary loaded", zap.Int("entries", db.Size()), zap.Int("skipped", db.Skipped()))
	return db
}

// loadCatalog loads the user's catalog, falling back to the built-in one.
func loadCatalog() (*config.Catalog, error) {
	c, err := config.LoadCatalogOrDefault(settings.Catalog)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		logger.Warn("catalog is incomplete; some syllables will not resolve", zap.Error(err))
	}
	return c, nil
}

func newComposer() (*prompt.Composer, error) {
	c := prompt.NewComposer(settings.Language)

	if path := settings.Prompts.StoryTemplate; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading story template: %w", err)
		}
		if err := c.SetStoryTemplate(string(data)); err != nil {
			return nil, err
		}
	}
	if path := settings.Prompts.ImageTemplate; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading image template: %w", err)
		}
		if err := c.SetImageTemplate(string(data)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// builderOptions selects which outside services a builder may call.
type builderOptions struct {
	generators bool // story writer and image painter
	media      bool // pronunciation audio, stroke diagrams and example sentences
}

// newBuilder wires the card builder from the loaded settings.
func newBuilder(ctx context.Context, opts builderOptions) (*card.Builder, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	composer, err := newComposer()
	if err != nil {
		return nil, err
	}

	deps := card.Deps{
		Dictionary: loadDictionary(),
		Mapper:     pinyin.NewMapper(catalog.Locations, catalog.Actors),
		Composer:   composer,
		Romanizer:  pinyin.NewRomanizer(),
		ImageDir:   settings.Media.Dir,
		Logger:     logger,
	}

	if opts.generators {
		writer, painter, err := llm.New(ctx, llm.Options{
			Provider:     settings.LLM.Provider,
			Model:        settings.LLM.Model,
			ImageModel:   settings.LLM.ImageModel,
			System:       prompt.SystemPrompt,
			Temperature:  settings.LLM.Temperature,
			MaxTokens:    settings.LLM.MaxTokens,
			AnthropicKey: settings.LLM.AnthropicKey,
			GeminiKey:    settings.LLM.GeminiKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %s client: %w", settings.LLM.Provider, err)
		}
		policy := llm.DefaultRetryPolicy()
		if writer != nil {
			deps.Writer = llm.RetryingWriter(writer, policy, logger)
		}
		if painter != nil {
			deps.Painter = llm.RetryingPainter(painter, policy, logger)
		}
	}

	if opts.media {
		if settings.Media.ForvoKey != "" {
			deps.Audio = media.NewForvo(settings.Media.ForvoKey, settings.Media.Dir, logger)
		} else {
			logger.Debug("FORVO_API_KEY not set; cards will have no audio")
		}
		if len(settings.Media.StrokeDirs) > 0 {
			deps.Strokes = media.NewStrokeLocator(settings.Media.StrokeDirs, logger)
		}
		if settings.Media.Examples {
			deps.Examples = media.NewTatoeba(logger)
		}
	}

	return card.NewBuilder(deps), nil
}

// newPacer spaces out generator calls, or does nothing without a provider.
func newPacer() *card.Pacer {
	if settings.LLM.Provider == config.ProviderNone {
		return card.NewPacer(0)
	}
	return card.NewPacer(settings.Pace)
}
