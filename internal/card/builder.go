package card

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/decomp"
	"github.com/f3rmion/hanzideck/internal/hmm"
	"github.com/f3rmion/hanzideck/internal/llm"
	"github.com/f3rmion/hanzideck/internal/media"
	"github.com/f3rmion/hanzideck/internal/pinyin"
	"github.com/f3rmion/hanzideck/internal/prompt"
	"github.com/f3rmion/hanzideck/internal/wordlist"
)

// fallbackMeaning stands in for a word with no dictionary entry.
const fallbackMeaning = "something"

// AudioSource fetches a pronunciation file for a word.
type AudioSource interface {
	Fetch(ctx context.Context, word string) (string, error)
}

// StrokeSource finds stroke order diagrams for the characters of a word.
type StrokeSource interface {
	Locate(word string) ([]string, error)
}

// ExampleSource finds a sentence using a word.
type ExampleSource interface {
	Fetch(ctx context.Context, word string) (media.Example, error)
}

// Deps wires a Builder. Writer, Painter, Audio, Strokes and Examples are
// optional.
type Deps struct {
	Dictionary *decomp.Database
	Resolver   *decomp.Resolver
	Mapper     *pinyin.Mapper
	Composer   *prompt.Composer
	Romanizer  *pinyin.Romanizer

	Writer  llm.StoryWriter
	Painter llm.ImagePainter
	Audio   AudioSource
	Strokes StrokeSource

	Examples ExampleSource

	ImageDir string
	Logger   *zap.Logger
}

// Builder assembles cards in two stages: Draft produces a reviewable
// StoryRecord and Build attaches media to it.
type Builder struct {
	deps   Deps
	logger *zap.Logger
}

// NewBuilder creates a builder. Missing core parts get empty defaults.
func NewBuilder(deps Deps) *Builder {
	if deps.Resolver == nil {
		deps.Resolver = decomp.NewResolver(deps.Dictionary, nil)
	}
	if deps.Mapper == nil {
		deps.Mapper = pinyin.NewMapper(nil, nil)
	}
	if deps.Composer == nil {
		deps.Composer = prompt.NewComposer("")
	}
	if deps.Romanizer == nil {
		deps.Romanizer = pinyin.NewRomanizer()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{deps: deps, logger: logger}
}

// Description is everything known about a word without calling out to
// a generator.
type Description struct {
	Word          string
	Reading       string
	Entry         *decomp.Entry // nil when neither the word nor its first character is known
	Tag           hmm.MnemonicTag
	Decomposition decomp.Decomposition
	Decomposed    bool
}

// Meaning returns the full definition or "".
func (d Description) Meaning() string {
	if d.Entry == nil {
		return ""
	}
	return d.Entry.Definition
}

// PrimaryMeaning returns the first meaning, or a placeholder.
func (d Description) PrimaryMeaning() string {
	if d.Entry != nil {
		if m := d.Entry.PrimaryMeaning(); m != "" {
			return m
		}
	}
	return fallbackMeaning
}

// Hint returns the component hint of the first character.
func (d Description) Hint() string {
	if !d.Decomposed {
		return decomp.NoDecomposition
	}
	return d.Decomposition.Hint()
}

// Describe looks a word up in the dictionary, romanizes it and maps its
// first syllable and first character. Traditional characters are
// converted to simplified ones first.
func (b *Builder) Describe(word string) Description {
	word = wordlist.Simplify(word)
	d := Description{Word: word}

	first := firstChar(word)
	entry, ok := b.deps.Dictionary.Lookup(word)
	if !ok && first != "" {
		entry, ok = b.deps.Dictionary.Lookup(first)
	}
	if ok {
		d.Entry = entry
	}

	d.Reading = b.deps.Romanizer.Romanize(word)
	if d.Reading == "" && d.Entry != nil && len(d.Entry.Pinyin) > 0 {
		d.Reading = pinyin.Numbered(d.Entry.Pinyin[0])
	}

	d.Tag = b.deps.Mapper.GenerateForReading(d.Reading)
	if first != "" {
		d.Decomposition, d.Decomposed = b.deps.Resolver.Resolve(first)
	}
	return d
}

// Draft writes the story for a word. Without a writer, or when the writer
// fails, a template story is used instead.
func (b *Builder) Draft(ctx context.Context, word string) (StoryRecord, error) {
	d := b.Describe(word)
	word = d.Word

	rec := StoryRecord{
		Hanzi:    word,
		Pinyin:   d.Reading,
		Meaning:  d.Meaning(),
		Actor:    d.Tag.Actor,
		Location: d.Tag.Place(),
		Space:    d.Tag.String(),
		Hint:     d.Hint(),
	}

	in := prompt.StoryInput{
		Character:      word,
		PrimaryMeaning: d.PrimaryMeaning(),
		Actor:          rec.Actor,
		Location:       rec.Location,
		Decomposition:  rec.Hint,
	}

	if b.deps.Writer == nil {
		rec.Story = prompt.FallbackStory(word, in.PrimaryMeaning, in.Actor, in.Location)
		return rec, nil
	}

	p, err := b.deps.Composer.StoryPrompt(in)
	if err != nil {
		return rec, fmt.Errorf("composing story prompt: %w", err)
	}

	story, err := b.deps.Writer.WriteStory(ctx, p)
	switch {
	case err == nil:
		rec.Story = story
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return rec, err
	default:
		b.logger.Warn("story generation failed, using template story",
			zap.String("word", word), zap.Error(err))
		rec.Story = prompt.FallbackStory(word, in.PrimaryMeaning, in.Actor, in.Location)
	}
	return rec, nil
}

// Build turns a reviewed record into a card. Missing media is logged and
// left empty; only a cancelled context fails the build.
func (b *Builder) Build(ctx context.Context, rec StoryRecord) (Card, error) {
	c := Card{
		Hanzi:         rec.Hanzi,
		Pinyin:        rec.Pinyin,
		ColoredPinyin: pinyin.Colorize(rec.Pinyin),
		Meaning:       rec.Meaning,
		Space:         rec.Space,
		Hint:          rec.Hint,
		Story:         rec.Story,
	}
	if c.Space == "" {
		c.Space = space(rec.Actor, rec.Location)
	}

	if path, ok := b.image(ctx, rec); ok {
		c.StoryImage = ImageTags(path)
		c.Media = append(c.Media, path)
	}
	if err := ctx.Err(); err != nil {
		return c, err
	}

	if b.deps.Audio != nil {
		path, err := b.deps.Audio.Fetch(ctx, rec.Hanzi)
		if err != nil {
			if ctx.Err() != nil {
				return c, ctx.Err()
			}
			b.logger.Warn("no audio", zap.String("word", rec.Hanzi), zap.Error(err))
		} else {
			c.Audio = SoundTag(path)
			c.Media = append(c.Media, path)
		}
	}

	if b.deps.Strokes != nil {
		paths, err := b.deps.Strokes.Locate(rec.Hanzi)
		if err != nil {
			b.logger.Warn("no stroke order", zap.String("word", rec.Hanzi), zap.Error(err))
		} else {
			c.StrokeOrder = ImageTags(paths...)
			c.Media = append(c.Media, paths...)
		}
	}

	if b.deps.Examples != nil {
		ex, err := b.deps.Examples.Fetch(ctx, rec.Hanzi)
		if err != nil {
			if ctx.Err() != nil {
				return c, ctx.Err()
			}
			b.logger.Warn("no example sentence", zap.String("word", rec.Hanzi), zap.Error(err))
		} else {
			c.Example = ex.Sentence
			c.ExamplePinyin = pinyin.Colorize(b.deps.Romanizer.Romanize(ex.Sentence))
			c.ExampleMeaning = ex.Meaning
		}
	}

	return c, nil
}

// BuildWord drafts and builds in one go.
func (b *Builder) BuildWord(ctx context.Context, word string) (Card, error) {
	rec, err := b.Draft(ctx, word)
	if err != nil {
		return Card{}, err
	}
	return b.Build(ctx, rec)
}

// image returns a cached story image or paints a new one.
func (b *Builder) image(ctx context.Context, rec StoryRecord) (string, bool) {
	dir := b.deps.ImageDir
	if dir == "" {
		return "", false
	}
	if path, ok := media.CachedImage(dir, rec.Hanzi); ok {
		return path, true
	}
	if b.deps.Painter == nil || strings.TrimSpace(rec.Story) == "" {
		return "", false
	}

	p, err := b.deps.Composer.ImagePrompt(prompt.ImageInput{
		PrimaryMeaning: primaryMeaning(rec.Meaning),
		Actor:          rec.Actor,
		Location:       rec.Location,
		Story:          rec.Story,
	})
	if err != nil {
		b.logger.Warn("composing image prompt", zap.String("word", rec.Hanzi), zap.Error(err))
		return "", false
	}

	data, err := b.deps.Painter.PaintImage(ctx, p)
	if err != nil {
		b.logger.Warn("image generation failed", zap.String("word", rec.Hanzi), zap.Error(err))
		return "", false
	}

	path, err := media.SaveImage(dir, rec.Hanzi, data)
	if err != nil {
		b.logger.Warn("saving image", zap.String("word", rec.Hanzi), zap.Error(err))
		return "", false
	}
	return path, true
}

func space(actor, location string) string {
	if actor == "" {
		if location == "" {
			return hmm.UnknownSpace
		}
		return location
	}
	return fmt.Sprintf("(%s) %s", actor, location)
}

func primaryMeaning(definition string) string {
	if m := decomp.SplitMeanings(definition); len(m) > 0 {
		return m[0]
	}
	return fallbackMeaning
}

func firstChar(word string) string {
	for _, r := range word {
		return string(r)
	}
	return ""
}
