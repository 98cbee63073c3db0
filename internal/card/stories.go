package card

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// StoryRecord is the reviewable first stage of a card. Records are written
// to a JSON file, edited by hand, and turned into cards afterwards.
type StoryRecord struct {
	Hanzi    string `json:"hanzi"`
	Pinyin   string `json:"pinyin"`
	Meaning  string `json:"meaning"`
	Actor    string `json:"actor"`
	Location string `json:"location"`
	Space    string `json:"space"`
	Hint     string `json:"hint"`
	Story    string `json:"story"`
}

// LoadStories reads a stories file. A missing file holds no records.
func LoadStories(path string) ([]StoryRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stories file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []StoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing stories file: %w", err)
	}
	return records, nil
}

// SaveStories writes records as indented JSON with characters left unescaped.
func SaveStories(path string, records []StoryRecord) error {
	if records == nil {
		records = []StoryRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding stories: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating stories directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing stories file: %w", err)
	}
	return nil
}

// AppendStories adds records to the end of the stories file.
func AppendStories(path string, records []StoryRecord) error {
	existing, err := LoadStories(path)
	if err != nil {
		return err
	}
	return SaveStories(path, append(existing, records...))
}
