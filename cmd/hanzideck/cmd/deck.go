package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/f3rmion/hanzideck/internal/anki"
	"github.com/f3rmion/hanzideck/internal/card"
)

var deckCmd = &cobra.Command{
	Use:   "deck [word...]",
	Short: "Build flashcards with images, audio and stroke order",
	Long: `Build a card for each word, or for each reviewed record of the stories
file with --from-stories, and write them out.

Cards are either exported as an Anki import file (--tsv, media copied into
a media/ directory beside it) or appended as new notes to an existing
package (--base). The note type gains any missing card fields.

Examples:
  hanzideck deck --from-stories --tsv out/cards.tsv
  hanzideck deck 你好 --base mydeck.apkg --model Chinese --deck Words`,
	RunE: runDeck,
}

var (
	deckFromStories bool
	deckStories     string
	deckTSV         string
	deckBase        string
	deckModel       string
	deckName        string
	deckOutput      string
)

func init() {
	rootCmd.AddCommand(deckCmd)
	deckCmd.Flags().BoolVar(&deckFromStories, "from-stories", false, "build from the stories file instead of words")
	deckCmd.Flags().StringVar(&deckStories, "stories", "", "stories file (default from config)")
	deckCmd.Flags().StringVar(&deckTSV, "tsv", "", "write an Anki import file")
	deckCmd.Flags().StringVar(&deckBase, "base", "", "append notes to this .apkg")
	deckCmd.Flags().StringVar(&deckModel, "model", "Basic", "note type to add notes with")
	deckCmd.Flags().StringVar(&deckName, "deck", "Default", "deck to add cards to")
	deckCmd.Flags().StringVarP(&deckOutput, "output", "o", "", "output .apkg (default <base>_hanzideck.apkg)")
}

func runDeck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if deckTSV == "" && deckBase == "" {
		return errors.New("nothing to write: use --tsv or --base")
	}

	b, err := newBuilder(ctx, builderOptions{generators: true, media: true})
	if err != nil {
		return err
	}
	pacer := newPacer()

	var records []card.StoryRecord
	if deckFromStories {
		path := deckStories
		if path == "" {
			path = settings.Stories
		}
		if records, err = card.LoadStories(path); err != nil {
			return err
		}
	} else {
		words, _, err := collectWords(args, "")
		if err != nil {
			return err
		}
		if len(words) == 0 {
			return errors.New("no words given")
		}
		if records, err = b.DraftAll(ctx, words, pacer); err != nil {
			return err
		}
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stories to build.")
		return nil
	}

	cards, err := b.BuildAll(ctx, records, pacer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if deckTSV != "" {
		if err := card.ExportTSV(deckTSV, cards); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d cards to %s\n", len(cards), deckTSV)
	}

	if deckBase != "" {
		pkg, err := anki.OpenPackage(deckBase)
		if err != nil {
			return fmt.Errorf("opening package: %w", err)
		}
		defer pkg.Close()

		n, err := card.AppendToPackage(pkg, deckModel, deckName, cards)
		if err != nil {
			return err
		}

		output := deckOutput
		if output == "" {
			output = suffixed(deckBase, "_hanzideck")
		}
		if err := pkg.SaveAs(output); err != nil {
			return fmt.Errorf("saving package: %w", err)
		}
		fmt.Fprintf(out, "Added %d notes to %s\n", n, output)
	}
	return nil
}

// suffixed inserts suffix before the extension: deck.apkg -> deck_x.apkg.
func suffixed(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
