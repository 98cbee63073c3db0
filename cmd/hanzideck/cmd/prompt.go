package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f3rmion/hanzideck/internal/prompt"
	"github.com/f3rmion/hanzideck/internal/wordlist"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <word>",
	Short: "Print the story and image prompts for a word",
	Long: `Print the prompts that would be sent to the story writer and the image
generator, without calling either. The image prompt uses the template story
unless --story is given.

Example:
  hanzideck prompt 好
  hanzideck prompt 好 --story "Harrison Ford lands at the airport..."`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompt,
}

var promptStory string

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVar(&promptStory, "story", "", "story to build the image prompt from")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	word := wordlist.Clean(args[0])
	if !wordlist.IsHan(word) {
		return fmt.Errorf("not a Chinese word: %q", args[0])
	}

	b, err := newBuilder(cmd.Context(), builderOptions{})
	if err != nil {
		return err
	}
	composer, err := newComposer()
	if err != nil {
		return err
	}

	d := b.Describe(word)
	story, err := composer.StoryPrompt(prompt.StoryInput{
		Character:      word,
		PrimaryMeaning: d.PrimaryMeaning(),
		Actor:          d.Tag.Actor,
		Location:       d.Tag.Place(),
		Decomposition:  d.Hint(),
	})
	if err != nil {
		return err
	}

	text := promptStory
	if text == "" {
		text = prompt.FallbackStory(word, d.PrimaryMeaning(), d.Tag.Actor, d.Tag.Place())
	}
	image, err := composer.ImagePrompt(prompt.ImageInput{
		PrimaryMeaning: d.PrimaryMeaning(),
		Actor:          d.Tag.Actor,
		Location:       d.Tag.Place(),
		Story:          text,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# System")
	fmt.Fprintln(out, prompt.SystemPrompt)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "# Story prompt")
	fmt.Fprintln(out, story)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "# Image prompt")
	fmt.Fprintln(out, image)
	return nil
}
