package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/f3rmion/hanzideck/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize hanzideck configuration",
	Long: `Initialize configuration files in your config directory.

This creates:
  - config.yaml   (paths, language, provider and pacing)
  - catalog.yaml  (pinyin initials → actors, finals → locations, tones → rooms)
  - media/, archive/ and an empty words.txt

Edit catalog.yaml to replace the default actors and locations with your own.
API keys are read from ANTHROPIC_API_KEY, GEMINI_API_KEY and FORVO_API_KEY.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing configuration")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := settings.ConfigDir
	configPath := filepath.Join(dir, config.ConfigFile)
	catalogPath := filepath.Join(dir, config.CatalogFile)

	if !initForce {
		for _, p := range []string{configPath, catalogPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists\nUse --force to overwrite", p)
			}
		}
	}

	for _, d := range []string{dir, settings.Media.Dir, settings.Archive} {
		if err := config.EnsureDir(d); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initializing configuration in %s\n\n", dir)

	if err := config.SaveSettings(configPath, settings); err != nil {
		return err
	}
	fmt.Fprintf(out, "  Created %s\n", config.ConfigFile)

	if err := os.WriteFile(catalogPath, config.DefaultCatalogYAML(), 0644); err != nil {
		return fmt.Errorf("writing catalog file: %w", err)
	}
	fmt.Fprintf(out, "  Created %s\n", config.CatalogFile)

	if _, err := os.Stat(settings.WordsFile); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(settings.WordsFile, nil, 0644); err != nil {
			return fmt.Errorf("creating words file: %w", err)
		}
		fmt.Fprintf(out, "  Created %s\n", filepath.Base(settings.WordsFile))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration initialized!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Download the Make Me a Hanzi dictionary.txt to %s\n", settings.Dictionary)
	fmt.Fprintln(out, "  2. Edit catalog.yaml to add your personal actors and locations")
	fmt.Fprintln(out, "  3. Run 'hanzideck lookup 好' to check a word")
	fmt.Fprintf(out, "  4. Add words to %s and run 'hanzideck stories'\n", settings.WordsFile)
	return nil
}
