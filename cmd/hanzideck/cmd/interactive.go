package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/tui"
	"github.com/f3rmion/hanzideck/internal/tui/bigchar"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i", "ui"},
	Short:   "Launch interactive TUI",
	Long: `Launch an interactive terminal UI for exploring Chinese words.

Features:
  - Type any Chinese word to see its mnemonic breakdown
  - View actor, location, room and components of each character
  - Draft a story and save it to the stories file

Controls:
  Enter    Analyze word
  ←/→      Switch character
  Ctrl+G   Draft story
  Ctrl+Y   Copy story
  Ctrl+S   Save story
  Esc      Quit`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	b, err := newBuilder(cmd.Context(), builderOptions{generators: true})
	if err != nil {
		return err
	}

	art, err := bigchar.Load()
	if err != nil {
		logger.Debug("large characters disabled", zap.Error(err))
	}

	p := tea.NewProgram(
		tui.New(tui.Options{
			Builder:     b,
			Art:         art,
			StoriesPath: settings.Stories,
			Logger:      logger,
		}),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
