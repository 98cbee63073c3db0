// Package clipboard copies prompts and stories to the system clipboard.
package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility could be found.
var ErrUnavailable = errors.New("clipboard unavailable")

// Write copies text to the system clipboard. Trailing newlines are dropped.
func Write(text string) error {
	if !Available() {
		return ErrUnavailable
	}
	return clipboard.WriteAll(strings.TrimRight(text, "\n"))
}

// Read returns the clipboard contents.
func Read() (string, error) {
	if !Available() {
		return "", ErrUnavailable
	}
	return clipboard.ReadAll()
}

// Available reports whether a clipboard utility is present.
func Available() bool {
	return !clipboard.Unsupported
}
