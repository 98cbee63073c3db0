// Package wordlist reads the input word list and keeps the archive of
// words that were already processed.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const zeroWidthSpace = "\u200b"

// IsHan reports whether s is non-empty and made only of CJK Unified
// Ideographs (U+4E00-U+9FFF) or Extension A (U+3400-U+4DBF).
func IsHan(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 0x4E00 && r <= 0x9FFF) && !(r >= 0x3400 && r <= 0x4DBF) {
			return false
		}
	}
	return true
}

// Clean trims a line, drops zero-width spaces, applies NFC and converts
// traditional characters to simplified ones.
func Clean(line string) string {
	line = strings.ReplaceAll(line, zeroWidthSpace, "")
	return Simplify(norm.NFC.String(strings.TrimSpace(line)))
}

// Parse returns the distinct Han words of r in first-seen order.
// Other lines are ignored.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := Clean(scanner.Text())
		if !IsHan(w) || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return words, fmt.Errorf("reading word list: %w", err)
	}
	return words, nil
}

// ReadWords reads a word list file. A missing file is an empty list.
func ReadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Truncate empties the file at path if it exists.
func Truncate(path string) error {
	if err := os.Truncate(path, 0); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing word list: %w", err)
	}
	return nil
}

// Archive is a directory of processed_*.txt files listing handled words.
type Archive struct {
	Dir string
}

// Seen returns every word recorded in any file of the archive.
// Unreadable files are skipped and reported in the returned error list.
func (a Archive) Seen() (map[string]bool, []error) {
	seen := make(map[string]bool)

	entries, err := os.ReadDir(a.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return seen, []error{fmt.Errorf("reading archive: %w", err)}
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(a.Dir, e.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("reading archive file %s: %w", e.Name(), err))
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			if w := Clean(line); w != "" {
				seen[w] = true
			}
		}
	}
	return seen, errs
}

// Filter returns the words not present in the archive, order kept.
func (a Archive) Filter(words []string) ([]string, []error) {
	seen, errs := a.Seen()
	fresh := make([]string, 0, len(words))
	for _, w := range words {
		if !seen[w] {
			fresh = append(fresh, w)
		}
	}
	return fresh, errs
}

// FileName returns the archive file name for a batch processed at now.
func FileName(now time.Time) string {
	return "processed_" + now.Format("2006-01-02_150405") + ".txt"
}

// Record writes words to a new archive file and returns its path.
func (a Archive) Record(words []string, now time.Time) (string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}

	var b strings.Builder
	for _, w := range words {
		b.WriteString(w)
		b.WriteByte('\n')
	}

	path := filepath.Join(a.Dir, FileName(now))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing archive file: %w", err)
	}
	return path, nil
}
