// Package pinyin romanizes characters and maps syllables to Hanzi Movie Method mnemonics.
package pinyin

import (
	"fmt"
	"strings"

	"github.com/f3rmion/hanzideck/internal/hmm"
	gopinyin "github.com/mozillazg/go-pinyin"
)

// Romanizer converts Chinese text to numbered pinyin ("ni3 hao3").
type Romanizer struct {
	args gopinyin.Args
}

// NewRomanizer creates a romanizer using the first reading of each character.
func NewRomanizer() *Romanizer {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Tone3 // Tone digit after the syllable: hao3
	args.Heteronym = false
	return &Romanizer{args: args}
}

// Romanize returns the space-separated numbered syllables for word.
// Characters without a known reading are skipped.
func (r *Romanizer) Romanize(word string) string {
	var syllables []string
	for _, readings := range gopinyin.Pinyin(word, r.args) {
		if len(readings) > 0 && readings[0] != "" {
			syllables = append(syllables, readings[0])
		}
	}
	return strings.Join(syllables, " ")
}

var toneMarks = map[rune]struct {
	base rune
	tone hmm.Tone
}{
	'ā': {'a', hmm.Tone1}, 'á': {'a', hmm.Tone2}, 'ǎ': {'a', hmm.Tone3}, 'à': {'a', hmm.Tone4},
	'ē': {'e', hmm.Tone1}, 'é': {'e', hmm.Tone2}, 'ě': {'e', hmm.Tone3}, 'è': {'e', hmm.Tone4},
	'ī': {'i', hmm.Tone1}, 'í': {'i', hmm.Tone2}, 'ǐ': {'i', hmm.Tone3}, 'ì': {'i', hmm.Tone4},
	'ō': {'o', hmm.Tone1}, 'ó': {'o', hmm.Tone2}, 'ǒ': {'o', hmm.Tone3}, 'ò': {'o', hmm.Tone4},
	'ū': {'u', hmm.Tone1}, 'ú': {'u', hmm.Tone2}, 'ǔ': {'u', hmm.Tone3}, 'ù': {'u', hmm.Tone4},
	'ǖ': {'ü', hmm.Tone1}, 'ǘ': {'ü', hmm.Tone2}, 'ǚ': {'ü', hmm.Tone3}, 'ǜ': {'ü', hmm.Tone4},
}

// Numbered converts tone-marked pinyin ("hǎo") to numbered pinyin ("hao3").
// Syllables without a mark are left without a digit.
func Numbered(marked string) string {
	fields := strings.Fields(marked)
	for i, syllable := range fields {
		var b strings.Builder
		tone := hmm.ToneUnknown
		for _, r := range syllable {
			if mark, ok := toneMarks[r]; ok {
				b.WriteRune(mark.base)
				tone = mark.tone
				continue
			}
			b.WriteRune(r)
		}
		if tone != hmm.ToneUnknown {
			b.WriteString(tone.String())
		}
		fields[i] = b.String()
	}
	return strings.Join(fields, " ")
}

// Colorize wraps each numbered syllable in a tone span:
// "ni3 hao3" -> `<span class="tone3">ni3</span> <span class="tone3">hao3</span>`.
// Syllables without a digit are left as they are.
func Colorize(reading string) string {
	fields := strings.Fields(reading)
	for i, syllable := range fields {
		s := ParseSyllable(syllable)
		if !s.HasDigit {
			continue
		}
		fields[i] = fmt.Sprintf(`<span class="tone%d">%s%d</span>`, s.Tone, s.Letters, s.Tone)
	}
	return strings.Join(fields, " ")
}

// FirstSyllable returns the first whitespace-delimited syllable of a reading.
func FirstSyllable(reading string) string {
	if fields := strings.Fields(reading); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
