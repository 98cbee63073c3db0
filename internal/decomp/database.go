// Package decomp handles Chinese character decomposition using Make Me a Hanzi data.
package decomp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Entry represents a single record from the Make Me a Hanzi dictionary.
type Entry struct {
	Character     string     `json:"character"`
	Definition    string     `json:"definition"`
	Pinyin        []string   `json:"pinyin"`
	Decomposition string     `json:"decomposition"`
	Etymology     *Etymology `json:"etymology,omitempty"`
	Radical       string     `json:"radical"`
}

// Etymology from Make Me a Hanzi.
type Etymology struct {
	Type     string `json:"type"`               // pictophonetic, pictographic, ideographic
	Semantic string `json:"semantic,omitempty"` // meaning component
	Phonetic string `json:"phonetic,omitempty"` // sound component
	Hint     string `json:"hint,omitempty"`
}

// Meanings splits the definition into its short meanings.
// Both ';' and ',' separate meanings in the source data.
func (e *Entry) Meanings() []string {
	return SplitMeanings(e.Definition)
}

// PrimaryMeaning returns the first meaning, or "" when there is none.
func (e *Entry) PrimaryMeaning() string {
	if m := e.Meanings(); len(m) > 0 {
		return m[0]
	}
	return ""
}

// EtymologyHint returns the etymology hint, or "" when there is none.
func (e *Entry) EtymologyHint() string {
	if e.Etymology == nil {
		return ""
	}
	return e.Etymology.Hint
}

// SplitMeanings splits a ';' or ',' separated definition list.
func SplitMeanings(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})
	meanings := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			meanings = append(meanings, f)
		}
	}
	return meanings
}

// Database holds all character data. It is not modified after loading.
type Database struct {
	entries map[string]*Entry
	skipped int
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{
		entries: make(map[string]*Entry),
	}
}

// Load reads a Make Me a Hanzi dictionary.txt file.
//
// A missing file is not an error: the returned database is simply empty.
// Any other read failure is returned together with whatever was parsed
// before it, so callers may log it and carry on.
func Load(path string) (*Database, error) {
	db := NewDatabase()

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return db, nil
	}
	if err != nil {
		return db, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer file.Close()

	if err := db.read(file); err != nil {
		return db, fmt.Errorf("reading dictionary file: %w", err)
	}
	return db, nil
}

// Parse reads dictionary records from r.
func Parse(r io.Reader) (*Database, error) {
	db := NewDatabase()
	if err := db.read(r); err != nil {
		return db, fmt.Errorf("reading dictionary: %w", err)
	}
	return db, nil
}

func (d *Database) read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Character == "" {
			d.skipped++
			continue
		}

		d.entries[entry.Character] = &entry
	}
	return scanner.Err()
}

// Lookup returns the entry for a character.
func (d *Database) Lookup(char string) (*Entry, bool) {
	if d == nil {
		return nil, false
	}
	e, ok := d.entries[char]
	return e, ok
}

// Size returns the number of entries in the database.
func (d *Database) Size() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Skipped returns the number of malformed lines ignored while loading.
func (d *Database) Skipped() int {
	if d == nil {
		return 0
	}
	return d.skipped
}
