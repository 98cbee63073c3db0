package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/f3rmion/hanzideck/internal/card"
	"github.com/f3rmion/hanzideck/internal/wordlist"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <word>...",
	Short: "Show the mnemonic breakdown of words",
	Long: `Look up Chinese words and display their:
  - Numbered pinyin
  - Actor (initial), location (final) and room (tone)
  - Meaning
  - Components of the first character

Examples:
  hanzideck lookup 好
  hanzideck lookup 中国 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var lookupJSON bool

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print records as JSON")
}

type lookupResult struct {
	Word    string `json:"word"`
	Pinyin  string `json:"pinyin"`
	Meaning string `json:"meaning"`
	Actor   string `json:"actor"`
	Place   string `json:"location"`
	Space   string `json:"space"`
	Hint    string `json:"hint"`
	Initial string `json:"initial,omitempty"`
	Final   string `json:"final,omitempty"`
	Tone    string `json:"tone"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd.Context(), builderOptions{})
	if err != nil {
		return err
	}

	var results []lookupResult
	for _, arg := range args {
		word := wordlist.Clean(arg)
		if !wordlist.IsHan(word) {
			return fmt.Errorf("not a Chinese word: %q", arg)
		}
		results = append(results, describe(b.Describe(word)))
	}

	out := cmd.OutOrStdout()
	if lookupJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printLookup(out, r)
	}
	return nil
}

func describe(d card.Description) lookupResult {
	return lookupResult{
		Word:    d.Word,
		Pinyin:  d.Reading,
		Meaning: d.Meaning(),
		Actor:   d.Tag.Actor,
		Place:   d.Tag.Place(),
		Space:   d.Tag.String(),
		Hint:    d.Hint(),
		Initial: d.Tag.InitialKey,
		Final:   d.Tag.FinalKey,
		Tone:    d.Tag.Tone.String(),
	}
}

func printLookup(w io.Writer, r lookupResult) {
	fmt.Fprintf(w, "%s  %s\n", r.Word, r.Pinyin)
	if r.Meaning != "" {
		fmt.Fprintf(w, "  Meaning:  %s\n", r.Meaning)
	}
	if r.Initial != "" {
		fmt.Fprintf(w, "  Initial:  %s → %s\n", r.Initial, r.Actor)
		fmt.Fprintf(w, "  Final:    %s\n", r.Final)
		fmt.Fprintf(w, "  Tone:     %s\n", r.Tone)
	}
	fmt.Fprintf(w, "  Space:    %s\n", r.Space)
	fmt.Fprintf(w, "  Hint:     %s\n", r.Hint)
}
