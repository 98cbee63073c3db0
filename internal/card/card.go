// Package card turns words into flashcards: mnemonic, story, image, audio
// and stroke order.
package card

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Card is one flashcard. Media fields hold Anki markup referencing files
// listed in Media.
type Card struct {
	Hanzi         string
	Pinyin        string
	ColoredPinyin string
	Meaning       string
	Space         string
	Hint          string
	Audio         string
	Story         string
	StoryImage    string
	StrokeOrder   string

	Example        string
	ExamplePinyin  string
	ExampleMeaning string

	Media []string `json:"-"` // files referenced by Audio, StoryImage and StrokeOrder
}

// FieldNames is the note field order used for exports.
var FieldNames = []string{
	"Hanzi",
	"Pinyin",
	"ColoredPinyin",
	"Meaning",
	"Space",
	"Hint",
	"Audio",
	"Story",
	"StoryImage",
	"StrokeOrder",
	"Example",
	"ExamplePinyin",
	"ExampleMeaning",
}

// Values returns the fields in FieldNames order.
func (c Card) Values() []string {
	return []string{
		c.Hanzi,
		c.Pinyin,
		c.ColoredPinyin,
		c.Meaning,
		c.Space,
		c.Hint,
		c.Audio,
		c.Story,
		c.StoryImage,
		c.StrokeOrder,
		c.Example,
		c.ExamplePinyin,
		c.ExampleMeaning,
	}
}

// Fields returns the fields keyed by name.
func (c Card) Fields() map[string]string {
	values := c.Values()
	out := make(map[string]string, len(FieldNames))
	for i, name := range FieldNames {
		out[name] = values[i]
	}
	return out
}

// SoundTag returns the Anki sound reference for a media file.
func SoundTag(path string) string {
	return fmt.Sprintf("[sound:%s]", filepath.Base(path))
}

// ImageTags returns one <img> reference per media file.
func ImageTags(paths ...string) string {
	var sb strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&sb, `<img src="%s">`, filepath.Base(p))
	}
	return sb.String()
}
