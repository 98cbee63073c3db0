// Package cmd contains all CLI commands for the hanzideck tool.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/config"
	"github.com/f3rmion/hanzideck/internal/logging"
)

var (
	cfgDir  string
	verbose bool

	settings *config.Settings
	logger   = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hanzideck",
	Short: "Hanzi Movie Method flashcards for Chinese words",
	Long: `hanzideck builds Anki flashcards for Chinese words using the Hanzi Movie
Method mnemonic system.

The system maps:
  - Actors (people)      → Pinyin initials
  - Locations (places)   → Pinyin finals
  - Rooms (areas)        → Tones 1-4
  - Components (hints)   → Character decomposition

Each word becomes a short story set in its mnemonic space, optionally
illustrated, voiced and annotated with stroke order.

Running 'hanzideck' without arguments launches the interactive TUI.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runInteractive,
}

// Execute adds all child commands to the root command and runs it with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.config/hanzideck)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup resolves the config directory, loads settings and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	l, err := logging.New(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger = l

	dir := cfgDir
	if dir == "" {
		if dir, err = config.DefaultConfigDir(); err != nil {
			return fmt.Errorf("finding config directory: %w", err)
		}
	}

	v := viper.New()
	config.SetDefaults(v, dir)
	if settings, err = config.Load(v, dir); err != nil {
		return err
	}
	logger.Debug("settings loaded",
		zap.String("dir", dir),
		zap.String("provider", settings.LLM.Provider),
		zap.String("language", settings.Language))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	_ = logger.Sync()
	return nil
}
