package card

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/f3rmion/hanzideck/internal/anki"
)

// NoteTag marks notes added by this tool.
const NoteTag = "hanzideck"

// WriteTSV writes cards as an Anki import file: header lines, then one
// tab-separated row per card in FieldNames order.
func WriteTSV(w io.Writer, cards []Card) error {
	header := "#separator:tab\n#html:true\n#columns:" + strings.Join(FieldNames, "\t") + "\n"
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	for _, c := range cards {
		if err := cw.Write(c.Values()); err != nil {
			return fmt.Errorf("writing card %s: %w", c.Hanzi, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTSV writes cards to path and copies their media next to it in a
// "media" directory, ready to be moved into collection.media.
func ExportTSV(path string, cards []Card) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteTSV(f, cards); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	mediaDir := filepath.Join(filepath.Dir(path), "media")
	for _, c := range cards {
		for _, src := range c.Media {
			if err := os.MkdirAll(mediaDir, 0755); err != nil {
				return fmt.Errorf("creating media directory: %w", err)
			}
			if err := copyFile(src, filepath.Join(mediaDir, filepath.Base(src))); err != nil {
				return fmt.Errorf("copying %s: %w", src, err)
			}
		}
	}
	return nil
}

// AppendToPackage adds cards as new notes of model into deck, adding any
// missing fields to the model and the media files to the package.
// It returns the number of notes added.
func AppendToPackage(pkg *anki.Package, modelName, deckName string, cards []Card) (int, error) {
	model, err := pkg.ModelByName(modelName)
	if err != nil {
		return 0, err
	}
	deck, err := pkg.DeckByName(deckName)
	if err != nil {
		return 0, err
	}

	if _, err := pkg.EnsureFields(model.ID, FieldNames); err != nil {
		return 0, fmt.Errorf("adding fields to %s: %w", modelName, err)
	}

	added := 0
	for _, c := range cards {
		for _, path := range c.Media {
			if _, err := pkg.AddMedia(path); err != nil {
				return added, fmt.Errorf("adding media for %s: %w", c.Hanzi, err)
			}
		}
		if _, err := pkg.AppendNote(model.ID, deck.ID, c.Fields(), []string{NoteTag}); err != nil {
			return added, fmt.Errorf("adding note for %s: %w", c.Hanzi, err)
		}
		added++
	}
	return added, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
