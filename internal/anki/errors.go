package anki

import "errors"

var (
	// ErrModelNotFound is returned when a note type id or name is unknown.
	ErrModelNotFound = errors.New("model not found")

	// ErrDeckNotFound is returned when a deck id or name is unknown.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrNoCollection is returned when an .apkg has no collection database.
	ErrNoCollection = errors.New("package has no collection database")
)
