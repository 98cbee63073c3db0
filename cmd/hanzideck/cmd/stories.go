package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/card"
	"github.com/f3rmion/hanzideck/internal/wordlist"
)

var storiesCmd = &cobra.Command{
	Use:   "stories [word...]",
	Short: "Draft mnemonic stories for new words",
	Long: `Draft a story for each new word and append it to the stories file for
review. Words come from the arguments or, when none are given, from the
words file. Words already recorded in the archive are skipped.

After a successful run the drafted words are archived and the words file
is emptied.

Examples:
  hanzideck stories
  hanzideck stories 你好 谢谢 --all`,
	RunE: runStories,
}

var (
	storiesWordsFile string
	storiesOut       string
	storiesAll       bool
	storiesKeep      bool
)

func init() {
	rootCmd.AddCommand(storiesCmd)
	storiesCmd.Flags().StringVarP(&storiesWordsFile, "file", "f", "", "words file (default from config)")
	storiesCmd.Flags().StringVarP(&storiesOut, "output", "o", "", "stories file (default from config)")
	storiesCmd.Flags().BoolVar(&storiesAll, "all", false, "include words already in the archive")
	storiesCmd.Flags().BoolVar(&storiesKeep, "keep", false, "leave the words file untouched")
}

func runStories(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	wordsFile := storiesWordsFile
	if wordsFile == "" {
		wordsFile = settings.WordsFile
	}
	out := storiesOut
	if out == "" {
		out = settings.Stories
	}

	words, fromFile, err := collectWords(args, wordsFile)
	if err != nil {
		return err
	}

	archive := wordlist.Archive{Dir: settings.Archive}
	if !storiesAll {
		var errs []error
		words, errs = archive.Filter(words)
		for _, err := range errs {
			logger.Warn("reading archive", zap.Error(err))
		}
	}
	if len(words) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No new words.")
		return nil
	}

	b, err := newBuilder(ctx, builderOptions{generators: true})
	if err != nil {
		return err
	}

	records, draftErr := b.DraftAll(ctx, words, newPacer())
	if len(records) > 0 {
		if err := card.AppendStories(out, records); err != nil {
			return err
		}
		drafted := make([]string, len(records))
		for i, r := range records {
			drafted[i] = r.Hanzi
		}
		path, err := archive.Record(drafted, time.Now())
		if err != nil {
			return fmt.Errorf("archiving words: %w", err)
		}
		logger.Debug("archived words", zap.String("path", path))
	}
	if draftErr != nil {
		return fmt.Errorf("drafting stopped after %d of %d words: %w", len(records), len(words), draftErr)
	}

	if fromFile && !storiesKeep {
		if err := wordlist.Truncate(wordsFile); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Drafted %d stories into %s\n", len(records), out)
	return nil
}

// collectWords returns the Han words given as arguments, or those of the
// words file when there are none.
func collectWords(args []string, wordsFile string) ([]string, bool, error) {
	if len(args) == 0 {
		words, err := wordlist.ReadWords(wordsFile)
		if err != nil {
			return nil, true, err
		}
		return words, true, nil
	}

	seen := make(map[string]bool)
	var words []string
	var bad []error
	for _, arg := range args {
		word := wordlist.Clean(arg)
		if !wordlist.IsHan(word) {
			bad = append(bad, fmt.Errorf("not a Chinese word: %q", arg))
			continue
		}
		if !seen[word] {
			seen[word] = true
			words = append(words, word)
		}
	}
	return words, false, errors.Join(bad...)
}
