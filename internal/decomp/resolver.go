package decomp

import (
	"fmt"
	"strings"
)

// UnknownStructure labels a decomposition whose first glyph is not an IDS symbol.
const UnknownStructure = "unknown structure"

// unknownComponent is the Make Me a Hanzi placeholder for an unidentified part.
const unknownComponent = '？'

// StructureCatalog maps IDS (Ideographic Description Sequence) glyphs to labels.
type StructureCatalog map[rune]string

// DefaultStructures returns the twelve IDS arrangement glyphs.
func DefaultStructures() StructureCatalog {
	return StructureCatalog{
		'⿰': "left-right",        // ⿰AB = A on left, B on right
		'⿱': "top-bottom",        // ⿱AB = A on top, B on bottom
		'⿲': "left-middle-right", // ⿲ABC
		'⿳': "top-middle-bottom", // ⿳ABC
		'⿴': "surround",          // ⿴AB = A surrounds B
		'⿵': "surround-from-above",
		'⿶': "surround-from-below",
		'⿷': "surround-from-left",
		'⿸': "surround-from-upper-left",
		'⿹': "surround-from-upper-right",
		'⿺': "surround-from-lower-left",
		'⿻': "overlaid",
	}
}

// Label returns the label for a structure glyph.
func (c StructureCatalog) Label(r rune) (string, bool) {
	label, ok := c[r]
	return label, ok
}

// Component is one part of a decomposed character.
type Component struct {
	Char    string
	Meaning string // first meaning of the component's own entry, may be empty
}

// Decomposition is a character's structure and its immediate components.
type Decomposition struct {
	Character  string
	Structure  string
	Components []Component
}

// Chars returns the component glyphs in order.
func (d Decomposition) Chars() []string {
	chars := make([]string, len(d.Components))
	for i, c := range d.Components {
		chars[i] = c.Char
	}
	return chars
}

// Hint formats the components with their meanings, e.g. "木 (tree), 子 (child)".
func (d Decomposition) Hint() string {
	if len(d.Components) == 0 {
		return NoDecomposition
	}
	parts := make([]string, len(d.Components))
	for i, c := range d.Components {
		if c.Meaning == "" {
			parts[i] = c.Char
			continue
		}
		parts[i] = fmt.Sprintf("%s (%s)", c.Char, c.Meaning)
	}
	return strings.Join(parts, ", ")
}

// String returns "structure: A + B".
func (d Decomposition) String() string {
	if len(d.Components) == 0 {
		return NoDecomposition
	}
	structure := d.Structure
	if structure == "" {
		structure = UnknownStructure
	}
	return fmt.Sprintf("%s: %s", structure, strings.Join(d.Chars(), " + "))
}

// NoDecomposition is shown when a character has no known components.
const NoDecomposition = "no decomposition available"

// Resolver decomposes characters against a database.
type Resolver struct {
	db         *Database
	structures StructureCatalog
}

// NewResolver creates a resolver. A nil database resolves nothing.
func NewResolver(db *Database, structures StructureCatalog) *Resolver {
	if structures == nil {
		structures = DefaultStructures()
	}
	return &Resolver{db: db, structures: structures}
}

// Resolve returns the decomposition of char.
// The boolean is false when the character is not in the database.
// Every code point other than IDS glyphs becomes a component, except the
// unknown-part marker ？, which is dropped.
func (r *Resolver) Resolve(char string) (Decomposition, bool) {
	entry, ok := r.db.Lookup(char)
	if !ok {
		return Decomposition{Character: char}, false
	}

	structure, parts := r.split(entry.Decomposition)
	d := Decomposition{
		Character:  char,
		Structure:  structure,
		Components: make([]Component, 0, len(parts)),
	}
	for _, part := range parts {
		c := Component{Char: part}
		if ce, ok := r.db.Lookup(part); ok {
			c.Meaning = ce.PrimaryMeaning()
		}
		d.Components = append(d.Components, c)
	}
	return d, true
}

// split separates the leading structure glyph from the component glyphs.
func (r *Resolver) split(decomposition string) (string, []string) {
	runes := []rune(decomposition)
	if len(runes) == 0 {
		return "", nil
	}

	structure := UnknownStructure
	if label, ok := r.structures.Label(runes[0]); ok {
		structure = label
		runes = runes[1:]
	}

	var parts []string
	for _, c := range runes {
		if _, isIDS := r.structures[c]; isIDS || c == unknownComponent {
			continue
		}
		parts = append(parts, string(c))
	}
	return structure, parts
}
