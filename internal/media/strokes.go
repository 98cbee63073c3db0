package media

import (
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// StrokeLocator finds per-character stroke order SVGs.
//
// Each root is searched for an animated "svgs/<codepoint>.svg" first and a
// still "svgs-still/<codepoint>-still.svg" second.
type StrokeLocator struct {
	roots  []string
	logger *zap.Logger
}

// NewStrokeLocator searches the given root directories in order.
func NewStrokeLocator(roots []string, logger *zap.Logger) *StrokeLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrokeLocator{roots: roots, logger: logger}
}

// Locate returns one SVG path per rune of word that has a diagram, in order.
// Runes without a diagram are skipped; if none has one the error is
// ErrNoStrokeDiagram.
func (s *StrokeLocator) Locate(word string) ([]string, error) {
	var paths []string
	for _, r := range word {
		path, ok := s.find(r)
		if !ok {
			s.logger.Warn("no stroke diagram", zap.String("char", string(r)), zap.Int("codepoint", int(r)))
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStrokeDiagram, word)
	}
	return paths, nil
}

func (s *StrokeLocator) find(r rune) (string, bool) {
	cp := strconv.Itoa(int(r))
	for _, root := range s.roots {
		candidates := []string{
			filepath.Join(root, "svgs", cp+".svg"),
			filepath.Join(root, "svgs-still", cp+"-still.svg"),
		}
		for _, c := range candidates {
			if exists(c) {
				return c, true
			}
		}
	}
	return "", false
}
