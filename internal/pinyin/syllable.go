package pinyin

import (
	"strings"
	"unicode"

	"github.com/f3rmion/hanzideck/internal/hmm"
)

// Syllable is a numbered pinyin syllable split into letters and tone.
type Syllable struct {
	Raw      string
	Letters  string   // Raw without digits, as written
	Key      string   // Letters lower-cased with v and u: folded to ü; used for catalog matching
	Tone     hmm.Tone // From the first digit; ToneUnknown when there is none
	HasDigit bool
}

// ParseSyllable extracts the tone digit and the matching key from a syllable.
// Only the first digit counts as the tone; every digit is stripped.
func ParseSyllable(raw string) Syllable {
	s := Syllable{Raw: raw}

	var letters strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			if !s.HasDigit {
				s.Tone = hmm.Tone(r - '0')
				s.HasDigit = true
			}
			continue
		}
		letters.WriteRune(r)
	}
	s.Letters = letters.String()

	key := strings.ToLower(strings.TrimSpace(s.Letters))
	key = strings.ReplaceAll(key, "u:", "ü")
	key = strings.ReplaceAll(key, "v", "ü")
	s.Key = key

	return s
}

// Valid reports whether the key is a non-empty run of latin letters or ü.
func (s Syllable) Valid() bool {
	if s.Key == "" {
		return false
	}
	for _, r := range s.Key {
		if r == 'ü' {
			continue
		}
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
