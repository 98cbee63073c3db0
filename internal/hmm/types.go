// Package hmm provides core types for Hanzi Movie Method mnemonics.
package hmm

import (
	"fmt"
	"strconv"
)

// ActorCategory groups actors into the four casting pools.
type ActorCategory string

const (
	ActorMale      ActorCategory = "male"       // Real men - plain consonant initials
	ActorFemale    ActorCategory = "female"     // Real women - consonant+i initials
	ActorFictional ActorCategory = "fictional"  // Fictional characters - consonant+u initials
	ActorGodLeader ActorCategory = "god_leader" // Gods or world leaders - consonant+ü initials
)

// NullKey is the catalog key of the catch-all location and the empty-onset actor.
const NullKey = "null"

// Actor is a recurring persona bound to a pinyin initial.
type Actor struct {
	Key      string        `yaml:"key" json:"key"`           // The initial, e.g. "b", "bi", "zhu"
	Category ActorCategory `yaml:"category" json:"category"` // male, female, fictional, god_leader
	Persona  string        `yaml:"persona" json:"persona"`   // Descriptive persona used in scenes
}

// Tone is a Mandarin tone number. Only tones 1-4 have rooms.
type Tone int

const (
	ToneUnknown Tone = 0
	Tone1       Tone = 1 // First tone (high level) - ˉ
	Tone2       Tone = 2 // Second tone (rising) - ˊ
	Tone3       Tone = 3 // Third tone (dipping) - ˇ
	Tone4       Tone = 4 // Fourth tone (falling) - ˋ
	Tone5       Tone = 5 // Neutral tone
)

// HasRoom reports whether the tone selects a room in a location.
func (t Tone) HasRoom() bool {
	return t >= Tone1 && t <= Tone4
}

// String returns the tone digit, or "?" when unknown.
func (t Tone) String() string {
	if t == ToneUnknown {
		return "?"
	}
	return strconv.Itoa(int(t))
}

// Location is a memory palace bound to a pinyin final.
// Rooms are keyed by tone; tones without a room fall back to UnknownRoom.
type Location struct {
	Key   string          `yaml:"key" json:"key"`     // The final, e.g. "a", "ang"; "null" is the catch-all
	Name  string          `yaml:"name" json:"name"`   // e.g. "Art gallery"
	Rooms map[Tone]string `yaml:"rooms" json:"rooms"` // tone 1-4 -> room name
}

// Room returns the room for a tone.
func (l Location) Room(t Tone) string {
	if !t.HasRoom() {
		return UnknownRoom
	}
	if room, ok := l.Rooms[t]; ok && room != "" {
		return room
	}
	return UnknownRoom
}

// Placeholders used when a mnemonic cannot be fully resolved.
const (
	UnknownRoom  = "unknown room"
	UnknownSpace = "unknown mnemonic space"
)

// MnemonicTag is the actor, location and room derived from one syllable.
type MnemonicTag struct {
	Syllable   string
	Tone       Tone
	InitialKey string
	FinalKey   string
	Actor      string
	Location   string
	Room       string
	Resolved   bool
}

// Place returns "location - room", the scene setting without the actor.
func (m MnemonicTag) Place() string {
	if !m.Resolved {
		return UnknownSpace
	}
	return fmt.Sprintf("%s - %s", m.Location, m.Room)
}

// String returns the display form "(actor) location - room".
func (m MnemonicTag) String() string {
	if !m.Resolved {
		return UnknownSpace
	}
	return fmt.Sprintf("(%s) %s - %s", m.Actor, m.Location, m.Room)
}
