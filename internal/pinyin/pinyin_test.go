package pinyin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/hanzideck/internal/hmm"
)

func rooms(prefix string) map[hmm.Tone]string {
	return map[hmm.Tone]string{
		hmm.Tone1: prefix + " entrance",
		hmm.Tone2: prefix + " kitchen",
		hmm.Tone3: prefix + " bedroom",
		hmm.Tone4: prefix + " bathroom",
	}
}

// Declared so that short keys come first; matching must still prefer the
// longest key.
func testLocations() []hmm.Location {
	return []hmm.Location{
		{Key: "a", Name: "Art gallery", Rooms: rooms("gallery")},
		{Key: "o", Name: "Old castle", Rooms: rooms("castle")},
		{Key: "e", Name: "Embassy", Rooms: rooms("embassy")},
		{Key: "ao", Name: "Airport", Rooms: rooms("airport")},
		{Key: "an", Name: "Anthill", Rooms: rooms("anthill")},
		{Key: "ang", Name: "Angel tower", Rooms: rooms("tower")},
		{Key: "null", Name: "Grandma's house", Rooms: rooms("house")},
	}
}

func testActors() []hmm.Actor {
	return []hmm.Actor{
		{Key: "null", Category: hmm.ActorMale, Persona: "Jackie Chan"},
		{Key: "h", Category: hmm.ActorMale, Persona: "Harrison Ford"},
		{Key: "n", Category: hmm.ActorMale, Persona: "Neil Armstrong"},
		{Key: "z", Category: hmm.ActorMale, Persona: "Zinedine Zidane"},
		{Key: "zh", Category: hmm.ActorMale, Persona: "Zhuge Liang"},
		{Key: "y", Category: hmm.ActorFemale, Persona: "Yoko Ono"},
		{Key: "ni", Category: hmm.ActorFemale, Persona: "Nicole Kidman"},
		{Key: "yu", Category: hmm.ActorGodLeader, Persona: "Yu the Great"},
		{Key: "nü", Category: hmm.ActorGodLeader, Persona: "Nüwa"},
	}
}

func testMapper() *Mapper {
	return NewMapper(testLocations(), testActors())
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		syllable  string
		initial   string
		final     string
		wantSpace string
	}{
		{"longest final wins", "hao3", "h", "ao", "(Harrison Ford) Airport - airport bedroom"},
		{"female initial", "ni3", "ni", "null", "(Nicole Kidman) Grandma's house - house bedroom"},
		{"empty onset", "a1", "null", "a", "(Jackie Chan) Art gallery - gallery entrance"},
		{"longest initial wins", "zhang1", "zh", "ang", "(Zhuge Liang) Angel tower - tower entrance"},
		{"short initial", "zan4", "z", "an", "(Zinedine Zidane) Anthill - anthill bathroom"},
		{"god leader", "yuan2", "yu", "an", "(Yu the Great) Anthill - anthill kitchen"},
		{"v folds to ü", "nv3", "nü", "null", "(Nüwa) Grandma's house - house bedroom"},
		{"u colon folds to ü", "nu:3", "nü", "null", "(Nüwa) Grandma's house - house bedroom"},
		{"upper case", "HAO3", "h", "ao", "(Harrison Ford) Airport - airport bedroom"},
	}
	m := testMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := m.Generate(tt.syllable)
			require.True(t, tag.Resolved)
			assert.Equal(t, tt.initial, tag.InitialKey)
			assert.Equal(t, tt.final, tag.FinalKey)
			assert.Equal(t, tt.wantSpace, tag.String())
		})
	}
}

func TestGenerateUnknownRoom(t *testing.T) {
	m := testMapper()
	for _, syllable := range []string{"hao", "hao5", "hao0"} {
		t.Run(syllable, func(t *testing.T) {
			tag := m.Generate(syllable)
			require.True(t, tag.Resolved)
			assert.Equal(t, hmm.UnknownRoom, tag.Room)
			assert.Equal(t, "(Harrison Ford) Airport - unknown room", tag.String())
		})
	}
}

func TestGenerateFirstDigitIsTone(t *testing.T) {
	tag := testMapper().Generate("hao34")
	assert.Equal(t, hmm.Tone3, tag.Tone)
	assert.Equal(t, "airport bedroom", tag.Room)
}

func TestGenerateMalformed(t *testing.T) {
	m := testMapper()
	for _, syllable := range []string{"", "3", "hao-3", "好3", "ha o3"} {
		t.Run(syllable, func(t *testing.T) {
			tag := m.Generate(syllable)
			assert.False(t, tag.Resolved)
			assert.Equal(t, hmm.UnknownSpace, tag.String())
			assert.Equal(t, hmm.UnknownSpace, tag.Place())
		})
	}
}

func TestGenerateWithoutDefaults(t *testing.T) {
	var locations []hmm.Location
	for _, l := range testLocations() {
		if l.Key != hmm.NullKey {
			locations = append(locations, l)
		}
	}
	tag := NewMapper(locations, testActors()).Generate("hao3")
	assert.Equal(t, hmm.UnknownSpace, tag.String())

	tag = NewMapper(testLocations(), nil).Generate("hao3")
	assert.Equal(t, hmm.UnknownSpace, tag.String())
}

func TestGenerateIsIdempotent(t *testing.T) {
	m := testMapper()
	assert.Equal(t, m.Generate("zhang1"), m.Generate("zhang1"))
}

func TestMapperCopiesCatalog(t *testing.T) {
	locations := testLocations()
	m := NewMapper(locations, testActors())
	locations[3].Rooms[hmm.Tone3] = "changed"

	assert.Equal(t, "airport bedroom", m.Generate("hao3").Room)
}

func TestGenerateForReading(t *testing.T) {
	m := testMapper()
	assert.Equal(t, m.Generate("ni3"), m.GenerateForReading("ni3 hao3"))
	assert.Equal(t, hmm.UnknownSpace, m.GenerateForReading("   ").String())
}

func TestLookupKeys(t *testing.T) {
	m := testMapper()

	l, ok := m.Location("null")
	require.True(t, ok)
	assert.Equal(t, "Grandma's house", l.Name)

	a, ok := m.Actor("zh")
	require.True(t, ok)
	assert.Equal(t, "Zhuge Liang", a.Persona)

	_, ok = m.Actor("q")
	assert.False(t, ok)
}

func TestParseSyllable(t *testing.T) {
	s := ParseSyllable("Lv4")
	assert.Equal(t, "Lv", s.Letters)
	assert.Equal(t, "lü", s.Key)
	assert.Equal(t, hmm.Tone4, s.Tone)
	assert.True(t, s.HasDigit)
	assert.True(t, s.Valid())

	s = ParseSyllable("de")
	assert.False(t, s.HasDigit)
	assert.Equal(t, hmm.ToneUnknown, s.Tone)
}

func TestNumbered(t *testing.T) {
	assert.Equal(t, "hao3", Numbered("hǎo"))
	assert.Equal(t, "ni3 hao3", Numbered("nǐ hǎo"))
	assert.Equal(t, "lü4", Numbered("lǜ"))
	assert.Equal(t, "de", Numbered("de"))
}

func TestColorize(t *testing.T) {
	assert.Equal(t,
		`<span class="tone3">ni3</span> <span class="tone3">hao3</span>`,
		Colorize("ni3 hao3"))
	assert.Equal(t, `<span class="tone4">xie4</span> xie`, Colorize("xie4 xie"))
	assert.Equal(t, "", Colorize(""))
}

func TestRomanize(t *testing.T) {
	r := NewRomanizer()
	assert.Equal(t, "ni3 hao3", r.Romanize("你好"))
	assert.Equal(t, "", r.Romanize("abc"))
}
