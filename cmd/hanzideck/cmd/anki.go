package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/anki"
	"github.com/f3rmion/hanzideck/internal/card"
)

var ankiCmd = &cobra.Command{
	Use:   "anki",
	Short: "Work with Anki decks",
	Long:  `Commands for inspecting, cleaning and augmenting Anki .apkg files.`,
}

var ankiInspectCmd = &cobra.Command{
	Use:   "inspect <file.apkg>",
	Short: "Inspect an Anki deck",
	Long: `Inspect an Anki .apkg file to see its structure:
  - Decks
  - Note types (models), their fields and templates
  - Media files
  - Sample notes

Example:
  hanzideck anki inspect chinese.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiInspect,
}

var ankiDedupeCmd = &cobra.Command{
	Use:   "dedupe <file.apkg>",
	Short: "Remove duplicate notes from a deck",
	Long: `Remove notes whose note type and fields equal an earlier note's, with
their cards. The oldest note is kept. The package is rewritten in place
unless --output is given.

Example:
  hanzideck anki dedupe chinese.apkg -o clean.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiDedupe,
}

var ankiAugmentCmd = &cobra.Command{
	Use:   "augment <file.apkg>",
	Short: "Add mnemonic fields to existing notes",
	Long: `Read an Anki deck and add the mnemonic space, component hint and
colored pinyin of the Chinese word in each note.

This command:
1. Reads the .apkg file
2. Finds the field containing Chinese characters
3. Adds Space, Hint and ColoredPinyin fields to its note types
4. Writes a new .apkg (or prints JSON with --json)

Examples:
  hanzideck anki augment chinese.apkg
  hanzideck anki augment chinese.apkg --field Hanzi -o augmented.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnkiAugment,
}

var (
	ankiInspectLimit  int
	ankiDedupeOutput  string
	ankiAugmentField  string
	ankiAugmentOutput string
	ankiAugmentJSON   bool
)

func init() {
	rootCmd.AddCommand(ankiCmd)
	ankiCmd.AddCommand(ankiInspectCmd)
	ankiCmd.AddCommand(ankiDedupeCmd)
	ankiCmd.AddCommand(ankiAugmentCmd)

	ankiInspectCmd.Flags().IntVarP(&ankiInspectLimit, "limit", "n", 5, "Number of sample notes to show")

	ankiDedupeCmd.Flags().StringVarP(&ankiDedupeOutput, "output", "o", "", "Output file (rewrite input if not specified)")

	ankiAugmentCmd.Flags().StringVarP(&ankiAugmentField, "field", "f", "", "Field containing Chinese characters (auto-detect if not specified)")
	ankiAugmentCmd.Flags().StringVarP(&ankiAugmentOutput, "output", "o", "", "Output file (default <input>_hanzideck.apkg)")
	ankiAugmentCmd.Flags().BoolVar(&ankiAugmentJSON, "json", false, "Print the augmented data as JSON instead of writing a package")
}

func runAnkiInspect(cmd *cobra.Command, args []string) error {
	pkg, err := anki.OpenPackage(args[0])
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Opened: %s\n\n", args[0])
	fmt.Fprint(out, pkg.Summary())
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Sample Notes (first %d):\n", ankiInspectLimit)
	for i, note := range pkg.Notes {
		if i >= ankiInspectLimit {
			break
		}

		modelName := "unknown"
		if model := pkg.GetModel(note); model != nil {
			modelName = model.Name
		}

		fmt.Fprintf(out, "\n  Note %d (Model: %s):\n", note.ID, modelName)
		names := pkg.GetFieldNames(note)
		for j, value := range note.Fields {
			name := fmt.Sprintf("Field %d", j)
			if j < len(names) {
				name = names[j]
			}
			value = anki.StripHTML(value)
			if r := []rune(value); len(r) > 100 {
				value = string(r[:100]) + "..."
			}
			fmt.Fprintf(out, "    %s: %s\n", name, value)
		}
	}
	return nil
}

func runAnkiDedupe(cmd *cobra.Command, args []string) error {
	pkg, err := anki.OpenPackage(args[0])
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()

	removed, err := pkg.RemoveDuplicates()
	if err != nil {
		return err
	}

	output := ankiDedupeOutput
	if output == "" {
		output = args[0]
	}
	if err := pkg.SaveAs(output); err != nil {
		return fmt.Errorf("saving package: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicate notes, wrote %s\n", removed, output)
	return nil
}

func runAnkiAugment(cmd *cobra.Command, args []string) error {
	path := args[0]

	pkg, err := anki.OpenPackage(path)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer pkg.Close()
	logger.Info("opened package", zap.String("path", path), zap.Int("notes", len(pkg.Notes)))

	field := ankiAugmentField
	if field == "" {
		field = card.DetectHanField(pkg)
		if field == "" {
			return fmt.Errorf("could not auto-detect field with Chinese characters. Use --field to specify")
		}
		logger.Info("auto-detected Chinese field", zap.String("field", field))
	}

	b, err := newBuilder(cmd.Context(), builderOptions{})
	if err != nil {
		return err
	}

	results, err := b.Augment(pkg, field)
	if err != nil {
		return err
	}

	if ankiAugmentJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	output := ankiAugmentOutput
	if output == "" {
		output = suffixed(path, "_hanzideck")
	}
	if err := pkg.SaveAs(output); err != nil {
		return fmt.Errorf("saving augmented package: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d notes with Chinese characters\n", len(results))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote augmented deck to: %s\n", output)
	return nil
}
