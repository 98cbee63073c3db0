// Package anki reads, augments and appends to Anki .apkg files.
package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// fieldSeparator separates note fields in the flds column.
const fieldSeparator = "\x1f"

// Package represents an opened Anki .apkg file.
type Package struct {
	path    string
	tempDir string
	db      *sql.DB
	Models  map[int64]*Model
	Decks   map[int64]*Deck
	Notes   []*Note
	Cards   []*Card

	// rawModels keeps each model's JSON so saving only rewrites "flds".
	rawModels map[int64]json.RawMessage
	dirty     map[int64]bool // models whose fields changed
	touched   map[int64]bool // existing notes whose fields changed
	media     map[string]string
	lastID    int64
}

// Model represents an Anki note type (model).
type Model struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Fields    []Field    `json:"flds"`
	Templates []Template `json:"tmpls"`
	CSS       string     `json:"css"`
	Type      int        `json:"type"` // 0 = standard, 1 = cloze
	SortField int        `json:"sortf"`
}

// Field represents a field in a note type.
type Field struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
}

// Template is a card template of a note type.
type Template struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Deck represents an Anki deck.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// Note represents an Anki note.
type Note struct {
	ID      int64
	GUID    string
	ModelID int64
	Mod     int64
	USN     int
	Tags    string
	Fields  []string // Parsed from flds
	RawFlds string   // Original flds string
	SFLD    string   // Sort field
	CSum    int64
	Flags   int
	Data    string
}

// Card represents an Anki card.
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
	Mod    int64
	USN    int
	Type   int
	Queue  int
	Due    int
	IVL    int
	Factor int
	Reps   int
	Lapses int
	Left   int
	ODue   int
	ODid   int64
	Flags  int
	Data   string
}

// OpenPackage opens an Anki .apkg file. Changes are made to a private
// copy and only written out by SaveAs.
func OpenPackage(path string) (*Package, error) {
	pkg := &Package{
		path:      path,
		Models:    make(map[int64]*Model),
		Decks:     make(map[int64]*Deck),
		rawModels: make(map[int64]json.RawMessage),
		dirty:     make(map[int64]bool),
		touched:   make(map[int64]bool),
		media:     make(map[string]string),
	}

	tempDir, err := os.MkdirTemp("", "anki-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	pkg.tempDir = tempDir

	// Extract .apkg (it's a zip file)
	if err := pkg.extract(); err != nil {
		pkg.Close()
		return nil, err
	}

	// Newer exports ship a placeholder collection.anki2 next to the real anki21.
	dbPath := filepath.Join(tempDir, "collection.anki21")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		dbPath = filepath.Join(tempDir, "collection.anki2")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		pkg.Close()
		return nil, ErrNoCollection
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		pkg.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	pkg.db = db

	loaders := []func() error{pkg.loadCollection, pkg.loadNotes, pkg.loadCards, pkg.loadMedia}
	for _, load := range loaders {
		if err := load(); err != nil {
			pkg.Close()
			return nil, err
		}
	}

	return pkg, nil
}

// Path returns the file the package was opened from.
func (p *Package) Path() string {
	return p.path
}

// extract unzips the .apkg file.
func (p *Package) extract() error {
	r, err := zip.OpenReader(p.path)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(p.tempDir, f.Name)

		// Prevent zip slip
		if !strings.HasPrefix(fpath, filepath.Clean(p.tempDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}
		if err := extractFile(f, fpath); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}

	return nil
}

func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// loadCollection loads models and decks from the col table.
func (p *Package) loadCollection() error {
	var models, decks string

	row := p.db.QueryRow("SELECT models, decks FROM col")
	if err := row.Scan(&models, &decks); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	var modelsMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &modelsMap); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}

	for _, modelJSON := range modelsMap {
		var model Model
		if err := json.Unmarshal(modelJSON, &model); err != nil {
			continue // Skip malformed models
		}
		p.Models[model.ID] = &model
		p.rawModels[model.ID] = modelJSON
	}

	var decksMap map[string]json.RawMessage
	if err := json.Unmarshal([]byte(decks), &decksMap); err != nil {
		return fmt.Errorf("parsing decks: %w", err)
	}

	for _, deckJSON := range decksMap {
		var deck Deck
		if err := json.Unmarshal(deckJSON, &deck); err != nil {
			continue // Skip malformed decks
		}
		p.Decks[deck.ID] = &deck
	}

	return nil
}

// loadNotes loads all notes from the database, ordered by id.
func (p *Package) loadNotes() error {
	rows, err := p.db.Query(`
		SELECT id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data
		FROM notes ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var note Note
		if err := rows.Scan(
			&note.ID, &note.GUID, &note.ModelID, &note.Mod, &note.USN,
			&note.Tags, &note.RawFlds, &note.SFLD, &note.CSum, &note.Flags, &note.Data,
		); err != nil {
			return fmt.Errorf("scanning note: %w", err)
		}

		note.Fields = strings.Split(note.RawFlds, fieldSeparator)
		p.Notes = append(p.Notes, &note)
	}

	return rows.Err()
}

// loadCards loads all cards from the database, ordered by id.
func (p *Package) loadCards() error {
	rows, err := p.db.Query(`
		SELECT id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data
		FROM cards ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var card Card
		if err := rows.Scan(
			&card.ID, &card.NoteID, &card.DeckID, &card.Ord, &card.Mod, &card.USN,
			&card.Type, &card.Queue, &card.Due, &card.IVL, &card.Factor, &card.Reps,
			&card.Lapses, &card.Left, &card.ODue, &card.ODid, &card.Flags, &card.Data,
		); err != nil {
			return fmt.Errorf("scanning card: %w", err)
		}
		p.Cards = append(p.Cards, &card)
	}

	return rows.Err()
}

// loadMedia reads the "media" index mapping zip entry numbers to file names.
func (p *Package) loadMedia() error {
	data, err := os.ReadFile(filepath.Join(p.tempDir, "media"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading media index: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &p.media); err != nil {
		return fmt.Errorf("parsing media index: %w", err)
	}
	return nil
}

// GetModel returns the model for a note.
func (p *Package) GetModel(note *Note) *Model {
	return p.Models[note.ModelID]
}

// GetDeck returns the deck for a card.
func (p *Package) GetDeck(card *Card) *Deck {
	return p.Decks[card.DeckID]
}

// ModelByName finds a note type by name (case-insensitive).
func (p *Package) ModelByName(name string) (*Model, error) {
	for _, id := range sortedIDs(p.Models) {
		if strings.EqualFold(p.Models[id].Name, name) {
			return p.Models[id], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
}

// DeckByName finds a deck by name (case-insensitive).
func (p *Package) DeckByName(name string) (*Deck, error) {
	for _, id := range sortedIDs(p.Decks) {
		if strings.EqualFold(p.Decks[id].Name, name) {
			return p.Decks[id], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDeckNotFound, name)
}

// GetNoteByID finds a note by ID.
func (p *Package) GetNoteByID(id int64) *Note {
	for _, note := range p.Notes {
		if note.ID == id {
			return note
		}
	}
	return nil
}

// GetFieldValue returns a specific field value from a note by field name.
func (p *Package) GetFieldValue(note *Note, fieldName string) string {
	model := p.GetModel(note)
	if model == nil {
		return ""
	}

	for _, field := range model.Fields {
		if strings.EqualFold(field.Name, fieldName) && field.Ord < len(note.Fields) {
			return note.Fields[field.Ord]
		}
	}

	return ""
}

// GetFieldNames returns all field names for a note's model.
func (p *Package) GetFieldNames(note *Note) []string {
	model := p.GetModel(note)
	if model == nil {
		return nil
	}

	names := make([]string, len(model.Fields))
	for i, field := range model.Fields {
		names[i] = field.Name
	}
	return names
}

// MediaFiles returns the media file names in the package, sorted.
func (p *Package) MediaFiles() []string {
	names := make([]string, 0, len(p.media))
	for _, name := range p.media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close cleans up resources.
func (p *Package) Close() error {
	var err error
	if p.db != nil {
		err = p.db.Close()
		p.db = nil
	}
	if p.tempDir != "" {
		if rmErr := os.RemoveAll(p.tempDir); rmErr != nil && err == nil {
			err = rmErr
		}
		p.tempDir = ""
	}
	return err
}

// Summary returns a summary of the package contents.
func (p *Package) Summary() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Anki Package: %s\n", p.path)
	fmt.Fprintf(&sb, "  Decks: %d\n", len(p.Decks))
	for _, id := range sortedIDs(p.Decks) {
		fmt.Fprintf(&sb, "    - %s\n", p.Decks[id].Name)
	}
	fmt.Fprintf(&sb, "  Models (Note Types): %d\n", len(p.Models))
	for _, id := range sortedIDs(p.Models) {
		model := p.Models[id]
		fmt.Fprintf(&sb, "    - %s (%d fields, %d templates)\n", model.Name, len(model.Fields), len(model.Templates))
	}
	fmt.Fprintf(&sb, "  Notes: %d\n", len(p.Notes))
	fmt.Fprintf(&sb, "  Cards: %d\n", len(p.Cards))
	fmt.Fprintf(&sb, "  Media: %d\n", len(p.media))

	return sb.String()
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags from a field value.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}

// nextMediaKey returns the next free numeric media entry name.
func (p *Package) nextMediaKey() string {
	next := 0
	for key := range p.media {
		if n, err := strconv.Atoi(key); err == nil && n >= next {
			next = n + 1
		}
	}
	return strconv.Itoa(next)
}
