package card

import (
	"context"

	"go.uber.org/zap"
)

// DraftAll drafts each word in order, waiting on pacer between words.
// Only a cancelled context stops the batch; the records drafted so far are
// returned with its error.
func (b *Builder) DraftAll(ctx context.Context, words []string, pacer *Pacer) ([]StoryRecord, error) {
	records := make([]StoryRecord, 0, len(words))
	for i, word := range words {
		if err := pacer.Wait(ctx); err != nil {
			return records, err
		}
		b.logger.Info("drafting story",
			zap.String("word", word), zap.Int("n", i+1), zap.Int("of", len(words)))

		rec, err := b.Draft(ctx, word)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			b.logger.Error("skipping word", zap.String("word", word), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// BuildAll builds a card for each record, waiting on pacer between records.
func (b *Builder) BuildAll(ctx context.Context, records []StoryRecord, pacer *Pacer) ([]Card, error) {
	cards := make([]Card, 0, len(records))
	for i, rec := range records {
		if err := pacer.Wait(ctx); err != nil {
			return cards, err
		}
		b.logger.Info("building card",
			zap.String("word", rec.Hanzi), zap.Int("n", i+1), zap.Int("of", len(records)))

		c, err := b.Build(ctx, rec)
		if err != nil {
			return cards, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
