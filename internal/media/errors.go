package media

import "errors"

var (
	// ErrNoPronunciation is returned when Forvo has no recording for a word.
	ErrNoPronunciation = errors.New("no pronunciation found")

	// ErrNoStrokeDiagram is returned when no stroke SVG exists for any rune of a word.
	ErrNoStrokeDiagram = errors.New("no stroke order diagram found")

	// ErrNoExample is returned when Tatoeba has no translated sentence for a word.
	ErrNoExample = errors.New("no example sentence found")
)
