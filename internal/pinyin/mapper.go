package pinyin

import (
	"sort"
	"strings"

	"github.com/f3rmion/hanzideck/internal/hmm"
)

// Mapper resolves syllables to mnemonic tags.
//
// Finals are matched as the longest catalog key that ends the syllable and
// initials as the longest key that starts it. Keys of equal length keep
// their catalog order. The "null" entries are never matched as text: they
// are the catch-all location and the empty-onset actor.
type Mapper struct {
	finals   []hmm.Location // matchable, longest key first
	initials []hmm.Actor    // matchable, longest key first

	catchAll     *hmm.Location
	defaultActor *hmm.Actor
}

// NewMapper builds a mapper over copies of the given catalogs.
func NewMapper(locations []hmm.Location, actors []hmm.Actor) *Mapper {
	m := &Mapper{}

	for _, l := range locations {
		l.Rooms = copyRooms(l.Rooms)
		if l.Key == hmm.NullKey {
			if m.catchAll == nil {
				catchAll := l
				m.catchAll = &catchAll
			}
			continue
		}
		if l.Key != "" {
			m.finals = append(m.finals, l)
		}
	}

	for _, a := range actors {
		if a.Key == hmm.NullKey {
			if m.defaultActor == nil {
				def := a
				m.defaultActor = &def
			}
			continue
		}
		if a.Key != "" {
			m.initials = append(m.initials, a)
		}
	}

	sort.SliceStable(m.finals, func(i, j int) bool {
		return len(m.finals[i].Key) > len(m.finals[j].Key)
	})
	sort.SliceStable(m.initials, func(i, j int) bool {
		return len(m.initials[i].Key) > len(m.initials[j].Key)
	})

	return m
}

func copyRooms(rooms map[hmm.Tone]string) map[hmm.Tone]string {
	out := make(map[hmm.Tone]string, len(rooms))
	for t, r := range rooms {
		out[t] = r
	}
	return out
}

// Generate returns the mnemonic tag for one numbered syllable, e.g. "hao3".
// It never fails: unusable input yields an unresolved tag.
func (m *Mapper) Generate(raw string) hmm.MnemonicTag {
	s := ParseSyllable(raw)
	tag := hmm.MnemonicTag{Syllable: raw, Tone: s.Tone}
	if !s.HasDigit {
		tag.Tone = hmm.ToneUnknown
	}

	if !s.Valid() || m.catchAll == nil || m.defaultActor == nil {
		return tag
	}

	location := m.final(s.Key)
	actor := m.initial(s.Key)

	tag.FinalKey = location.Key
	tag.InitialKey = actor.Key
	tag.Location = location.Name
	tag.Room = location.Room(tag.Tone)
	tag.Actor = actor.Persona
	tag.Resolved = true
	return tag
}

// GenerateForReading uses only the first syllable of a multi-syllable reading.
func (m *Mapper) GenerateForReading(reading string) hmm.MnemonicTag {
	return m.Generate(FirstSyllable(reading))
}

func (m *Mapper) final(key string) hmm.Location {
	for _, l := range m.finals {
		if strings.HasSuffix(key, l.Key) {
			return l
		}
	}
	return *m.catchAll
}

func (m *Mapper) initial(key string) hmm.Actor {
	for _, a := range m.initials {
		if strings.HasPrefix(key, a.Key) {
			return a
		}
	}
	return *m.defaultActor
}

// Location returns the catalog entry for a final key.
func (m *Mapper) Location(key string) (hmm.Location, bool) {
	if m.catchAll != nil && key == m.catchAll.Key {
		return *m.catchAll, true
	}
	for _, l := range m.finals {
		if l.Key == key {
			return l, true
		}
	}
	return hmm.Location{}, false
}

// Actor returns the catalog entry for an initial key.
func (m *Mapper) Actor(key string) (hmm.Actor, bool) {
	if m.defaultActor != nil && key == m.defaultActor.Key {
		return *m.defaultActor, true
	}
	for _, a := range m.initials {
		if a.Key == key {
			return a, true
		}
	}
	return hmm.Actor{}, false
}
