package anki

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// now is the clock used for ids and modification times.
var now = time.Now

// EnsureFields appends the named fields to a model if they don't exist and
// returns the names that were added. Existing notes get empty values.
func (p *Package) EnsureFields(modelID int64, names []string) ([]string, error) {
	model, ok := p.Models[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrModelNotFound, modelID)
	}

	existing := make(map[string]bool)
	for _, f := range model.Fields {
		existing[strings.ToLower(f.Name)] = true
	}

	var added []string
	nextOrd := len(model.Fields)
	for _, name := range names {
		if existing[strings.ToLower(name)] {
			continue
		}
		model.Fields = append(model.Fields, Field{
			Name: name,
			Ord:  nextOrd,
			Font: "Arial",
			Size: 20,
		})
		existing[strings.ToLower(name)] = true
		added = append(added, name)
		nextOrd++
	}
	if len(added) == 0 {
		return nil, nil
	}
	p.dirty[modelID] = true

	for _, note := range p.Notes {
		if note.ModelID != modelID {
			continue
		}
		for len(note.Fields) < len(model.Fields) {
			note.Fields = append(note.Fields, "")
		}
		note.RawFlds = strings.Join(note.Fields, fieldSeparator)
		p.touched[note.ID] = true
	}

	return added, nil
}

// SetFields sets named field values on a note. Unknown names are reported.
func (p *Package) SetFields(note *Note, values map[string]string) error {
	model := p.GetModel(note)
	if model == nil {
		return fmt.Errorf("%w: note %d", ErrModelNotFound, note.ID)
	}

	for len(note.Fields) < len(model.Fields) {
		note.Fields = append(note.Fields, "")
	}

	for name, value := range values {
		ord, ok := fieldOrd(model, name)
		if !ok {
			return fmt.Errorf("model %q has no field %q", model.Name, name)
		}
		note.Fields[ord] = value
	}

	note.RawFlds = strings.Join(note.Fields, fieldSeparator)
	note.SFLD = sortField(model, note.Fields)
	note.CSum = checksum(note.Fields[0])
	note.Mod = now().Unix()
	note.USN = -1
	p.touched[note.ID] = true
	return nil
}

func fieldOrd(model *Model, name string) (int, bool) {
	for _, f := range model.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Ord, true
		}
	}
	return 0, false
}

// sortField returns the stripped value of the model's sort field.
func sortField(model *Model, fields []string) string {
	if model.SortField >= 0 && model.SortField < len(fields) {
		return StripHTML(fields[model.SortField])
	}
	return ""
}

// checksum is Anki's duplicate check: the first 8 hex digits of the SHA-1
// of the stripped first field.
func checksum(first string) int64 {
	sum := sha1.Sum([]byte(StripHTML(first)))
	csum, _ := strconv.ParseInt(fmt.Sprintf("%x", sum[:4]), 16, 64)
	return csum
}

// nextID returns a millisecond-based id above every id handed out so far.
func (p *Package) nextID() (int64, error) {
	if p.lastID == 0 {
		var maxNote, maxCard int64
		if err := p.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM notes").Scan(&maxNote); err != nil {
			return 0, fmt.Errorf("reading note ids: %w", err)
		}
		if err := p.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM cards").Scan(&maxCard); err != nil {
			return 0, fmt.Errorf("reading card ids: %w", err)
		}
		p.lastID = max(maxNote, maxCard)
	}
	id := max(now().UnixMilli(), p.lastID+1)
	p.lastID = id
	return id, nil
}

// AppendNote adds a note of the given model to a deck, with one new card
// per template. Fields not named in values are left empty.
func (p *Package) AppendNote(modelID, deckID int64, values map[string]string, tags []string) (*Note, error) {
	model, ok := p.Models[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrModelNotFound, modelID)
	}
	if _, ok := p.Decks[deckID]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrDeckNotFound, deckID)
	}

	fields := make([]string, len(model.Fields))
	for name, value := range values {
		ord, ok := fieldOrd(model, name)
		if !ok {
			return nil, fmt.Errorf("model %q has no field %q", model.Name, name)
		}
		fields[ord] = value
	}

	id, err := p.nextID()
	if err != nil {
		return nil, err
	}

	note := &Note{
		ID:      id,
		GUID:    uuid.NewString(),
		ModelID: modelID,
		Mod:     now().Unix(),
		USN:     -1,
		Fields:  fields,
		RawFlds: strings.Join(fields, fieldSeparator),
		SFLD:    sortField(model, fields),
	}
	if len(tags) > 0 {
		note.Tags = " " + strings.Join(tags, " ") + " "
	}
	if len(fields) > 0 {
		note.CSum = checksum(fields[0])
	}

	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '')
	`, note.ID, note.GUID, note.ModelID, note.Mod, note.USN, note.Tags, note.RawFlds, note.SFLD, note.CSum); err != nil {
		return nil, fmt.Errorf("inserting note: %w", err)
	}

	var due int
	if err := tx.QueryRow("SELECT COALESCE(MAX(due), 0) + 1 FROM cards WHERE type = 0").Scan(&due); err != nil {
		return nil, fmt.Errorf("reading new card position: %w", err)
	}

	templates := model.Templates
	if len(templates) == 0 || model.Type == 1 {
		templates = []Template{{Ord: 0}}
	}

	var cards []*Card
	for _, tmpl := range templates {
		cardID, err := p.nextID()
		if err != nil {
			return nil, err
		}
		card := &Card{
			ID:     cardID,
			NoteID: note.ID,
			DeckID: deckID,
			Ord:    tmpl.Ord,
			Mod:    note.Mod,
			USN:    -1,
			Due:    due,
		}
		if _, err := tx.Exec(`
			INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
			VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')
		`, card.ID, card.NoteID, card.DeckID, card.Ord, card.Mod, card.USN, card.Due); err != nil {
			return nil, fmt.Errorf("inserting card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing note: %w", err)
	}

	p.Notes = append(p.Notes, note)
	p.Cards = append(p.Cards, cards...)
	return note, nil
}

// AddMedia copies a file into the package and returns the name cards
// should reference. A file already present under the same name is reused.
func (p *Package) AddMedia(path string) (string, error) {
	name := filepath.Base(path)
	for _, existing := range p.media {
		if existing == name {
			return name, nil
		}
	}

	key := p.nextMediaKey()
	if err := copyFile(path, filepath.Join(p.tempDir, key)); err != nil {
		return "", fmt.Errorf("adding media %s: %w", name, err)
	}
	p.media[key] = name
	return name, nil
}

// RemoveDuplicates deletes notes whose model and fields equal an earlier
// note's, together with their cards. The note with the lowest id is kept.
func (p *Package) RemoveDuplicates() (int, error) {
	type key struct {
		model int64
		flds  string
	}
	first := make(map[key]int64)
	remove := make(map[int64]bool)
	for _, note := range p.Notes { // ordered by id
		k := key{note.ModelID, note.RawFlds}
		if _, ok := first[k]; ok {
			remove[note.ID] = true
			continue
		}
		first[k] = note.ID
	}
	if len(remove) == 0 {
		return 0, nil
	}

	tx, err := p.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for id := range remove {
		if _, err := tx.Exec("DELETE FROM cards WHERE nid = ?", id); err != nil {
			return 0, fmt.Errorf("deleting cards of note %d: %w", id, err)
		}
		if _, err := tx.Exec("DELETE FROM notes WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("deleting note %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing deletions: %w", err)
	}

	notes := p.Notes[:0]
	for _, note := range p.Notes {
		if !remove[note.ID] {
			notes = append(notes, note)
		}
	}
	p.Notes = notes

	cards := p.Cards[:0]
	for _, card := range p.Cards {
		if !remove[card.NoteID] {
			cards = append(cards, card)
		}
	}
	p.Cards = cards

	return len(remove), nil
}

// SaveAs writes the modified package to a new .apkg file.
func (p *Package) SaveAs(outputPath string) error {
	if err := p.updateDatabase(); err != nil {
		return fmt.Errorf("updating database: %w", err)
	}
	if err := p.writeMediaIndex(); err != nil {
		return err
	}

	// The zip is assembled next to the target and renamed into place so
	// outputPath may be the file the package was opened from.
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".apkg-*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zipWriter := zip.NewWriter(tmp)
	err = filepath.Walk(p.tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		// sqlite side files belong to the open connection, not the package.
		if strings.HasSuffix(path, "-journal") || strings.HasSuffix(path, "-wal") || strings.HasSuffix(path, "-shm") {
			return nil
		}

		relPath, err := filepath.Rel(p.tempDir, path)
		if err != nil {
			return err
		}

		writer, err := zipWriter.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		tmp.Close()
		return fmt.Errorf("creating zip: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finishing zip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

// updateDatabase writes changes back to the SQLite database.
func (p *Package) updateDatabase() error {
	if err := p.updateModels(); err != nil {
		return err
	}
	return p.updateNotes()
}

// updateModels rewrites "flds" of changed models, leaving every other key
// of the stored model JSON untouched.
func (p *Package) updateModels() error {
	if len(p.dirty) == 0 {
		return nil
	}

	for id := range p.dirty {
		model := p.Models[id]

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(p.rawModels[id], &obj); err != nil {
			return fmt.Errorf("parsing model %d: %w", id, err)
		}

		// Keep unknown per-field keys of fields that already existed.
		var oldFields []map[string]json.RawMessage
		if raw, ok := obj["flds"]; ok {
			if err := json.Unmarshal(raw, &oldFields); err != nil {
				return fmt.Errorf("parsing fields of model %d: %w", id, err)
			}
		}
		fields := make([]map[string]json.RawMessage, 0, len(model.Fields))
		for i, f := range model.Fields {
			encoded, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("marshaling field %q: %w", f.Name, err)
			}
			var fieldObj map[string]json.RawMessage
			if err := json.Unmarshal(encoded, &fieldObj); err != nil {
				return err
			}
			if i < len(oldFields) {
				for k, v := range oldFields[i] {
					if _, known := fieldObj[k]; !known {
						fieldObj[k] = v
					}
				}
			}
			fields = append(fields, fieldObj)
		}

		flds, err := marshalRaw(fields)
		if err != nil {
			return fmt.Errorf("marshaling fields: %w", err)
		}
		obj["flds"] = flds
		obj["mod"] = json.RawMessage(strconv.FormatInt(now().Unix(), 10))
		obj["usn"] = json.RawMessage("-1")

		raw, err := marshalRaw(obj)
		if err != nil {
			return fmt.Errorf("marshaling model %d: %w", id, err)
		}
		p.rawModels[id] = raw
	}

	modelsMap := make(map[string]json.RawMessage, len(p.rawModels))
	for id, raw := range p.rawModels {
		modelsMap[strconv.FormatInt(id, 10)] = raw
	}
	modelsJSON, err := marshalRaw(modelsMap)
	if err != nil {
		return fmt.Errorf("marshaling models: %w", err)
	}

	if _, err := p.db.Exec("UPDATE col SET models = ?", string(modelsJSON)); err != nil {
		return fmt.Errorf("updating models: %w", err)
	}

	p.dirty = make(map[int64]bool)
	return nil
}

// updateNotes writes back notes whose fields changed since opening.
func (p *Package) updateNotes() error {
	for _, note := range p.Notes {
		if !p.touched[note.ID] {
			continue
		}
		if model := p.GetModel(note); model != nil && len(note.Fields) > 0 {
			note.SFLD = sortField(model, note.Fields)
			note.CSum = checksum(note.Fields[0])
		}

		_, err := p.db.Exec(`
			UPDATE notes SET
				mod = ?,
				usn = ?,
				flds = ?,
				sfld = ?,
				csum = ?
			WHERE id = ?
		`, note.Mod, note.USN, note.RawFlds, note.SFLD, note.CSum, note.ID)
		if err != nil {
			return fmt.Errorf("updating note %d: %w", note.ID, err)
		}
	}

	p.touched = make(map[int64]bool)
	return nil
}

// marshalRaw encodes v without escaping HTML, so templates keep their markup.
func marshalRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (p *Package) writeMediaIndex() error {
	data, err := json.Marshal(p.media)
	if err != nil {
		return fmt.Errorf("marshaling media index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.tempDir, "media"), data, 0644); err != nil {
		return fmt.Errorf("writing media index: %w", err)
	}
	return nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
