package card

import (
	"fmt"
	"strings"

	"github.com/f3rmion/hanzideck/internal/anki"
	"github.com/f3rmion/hanzideck/internal/pinyin"
	"github.com/f3rmion/hanzideck/internal/wordlist"
)

// AugmentFields are added to every note type that Augment touches.
var AugmentFields = []string{"Space", "Hint", "ColoredPinyin"}

// Augmented is the mnemonic data written to one existing note.
type Augmented struct {
	NoteID        int64  `json:"note_id"`
	Word          string `json:"word"`
	Pinyin        string `json:"pinyin"`
	Space         string `json:"space"`
	Hint          string `json:"hint"`
	ColoredPinyin string `json:"colored_pinyin"`
}

// Augment fills AugmentFields on every note whose field holds Chinese
// characters. Only the Han characters of the field are used as the word.
func (b *Builder) Augment(pkg *anki.Package, field string) ([]Augmented, error) {
	ensured := make(map[int64]bool)
	var results []Augmented

	for _, note := range pkg.Notes {
		word := hanOnly(anki.StripHTML(pkg.GetFieldValue(note, field)))
		if word == "" {
			continue
		}

		if !ensured[note.ModelID] {
			if _, err := pkg.EnsureFields(note.ModelID, AugmentFields); err != nil {
				return results, err
			}
			ensured[note.ModelID] = true
		}

		d := b.Describe(word)
		a := Augmented{
			NoteID:        note.ID,
			Word:          word,
			Pinyin:        d.Reading,
			Space:         d.Tag.String(),
			Hint:          d.Hint(),
			ColoredPinyin: pinyin.Colorize(d.Reading),
		}
		if err := pkg.SetFields(note, map[string]string{
			"Space":         a.Space,
			"Hint":          a.Hint,
			"ColoredPinyin": a.ColoredPinyin,
		}); err != nil {
			return results, fmt.Errorf("updating note %d: %w", note.ID, err)
		}
		results = append(results, a)
	}
	return results, nil
}

// DetectHanField returns the first field holding Chinese characters among
// the first notes of the package, or "".
func DetectHanField(pkg *anki.Package) string {
	for i, note := range pkg.Notes {
		if i >= 10 {
			break
		}
		names := pkg.GetFieldNames(note)
		for j, value := range note.Fields {
			if hanOnly(anki.StripHTML(value)) != "" && j < len(names) {
				return names[j]
			}
		}
	}
	return ""
}

func hanOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if wordlist.IsHan(string(r)) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
