package card

import (
	"archive/zip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/f3rmion/hanzideck/internal/anki"
)

const deckSchema = `
CREATE TABLE col (id integer primary key, models text not null, decks text not null);
CREATE TABLE notes (
	id integer primary key, guid text not null, mid integer not null, mod integer not null,
	usn integer not null, tags text not null, flds text not null, sfld integer not null,
	csum integer not null, flags integer not null, data text not null
);
CREATE TABLE cards (
	id integer primary key, nid integer not null, did integer not null, ord integer not null,
	mod integer not null, usn integer not null, type integer not null, queue integer not null,
	due integer not null, ivl integer not null, factor integer not null, reps integer not null,
	lapses integer not null, left integer not null, odue integer not null, odid integer not null,
	flags integer not null, data text not null
);
`

const deckModels = `{"1700000000000":{"id":1700000000000,"name":"Chinese","type":0,"sortf":0,"css":"",
"flds":[{"name":"Front","ord":0,"font":"Arial","size":20},{"name":"Back","ord":1,"font":"Arial","size":20}],
"tmpls":[{"name":"Card 1","ord":0,"qfmt":"{{Front}}","afmt":"{{Back}}"}]}}`

const deckDecks = `{"1":{"id":1,"name":"Default","desc":""}}`

// writeDeck builds a one-model .apkg whose notes have the given Front values.
func writeDeck(t *testing.T, fronts ...string) string {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "collection.anki2")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(deckSchema)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO col (id, models, decks) VALUES (1, ?, ?)", deckModels, deckDecks)
	require.NoError(t, err)
	for i, front := range fronts {
		id := int64(1000 + i)
		_, err = db.Exec(`INSERT INTO notes VALUES (?, ?, 1700000000000, 0, 0, '', ?, '', 0, 0, '')`,
			id, "g"+front, front+"\x1fback")
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO cards VALUES (?, ?, 1, 0, 0, 0, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			id+5000, id, i+1)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	apkg := filepath.Join(dir, "deck.apkg")
	f, err := os.Create(apkg)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, path := range map[string]string{"collection.anki2": dbPath} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	w, err := zw.Create("media")
	require.NoError(t, err)
	_, err = w.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return apkg
}

func openDeck(t *testing.T, fronts ...string) *anki.Package {
	t.Helper()
	pkg, err := anki.OpenPackage(writeDeck(t, fronts...))
	require.NoError(t, err)
	t.Cleanup(func() { pkg.Close() })
	return pkg
}

func TestAugment(t *testing.T) {
	pkg := openDeck(t, "<b>好</b>", "hello")
	b := NewBuilder(testDeps(t))

	assert.Equal(t, "Front", DetectHanField(pkg))

	results, err := b.Augment(pkg, "Front")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "好", results[0].Word)

	note := pkg.GetNoteByID(results[0].NoteID)
	require.NotNil(t, note)
	assert.Equal(t, "(Harrison Ford) Airport - airport bedroom", pkg.GetFieldValue(note, "Space"))
	assert.Equal(t, "女 (woman), 子 (child)", pkg.GetFieldValue(note, "Hint"))
	assert.Equal(t, `<span class="tone3">hao3</span>`, pkg.GetFieldValue(note, "ColoredPinyin"))

	out := filepath.Join(t.TempDir(), "augmented.apkg")
	require.NoError(t, pkg.SaveAs(out))

	reopened, err := anki.OpenPackage(out)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []string{"Front", "Back", "Space", "Hint", "ColoredPinyin"},
		reopened.GetFieldNames(reopened.Notes[0]))
}

func TestAppendToPackage(t *testing.T) {
	pkg := openDeck(t, "好")
	deps := testDeps(t)
	deps.Audio = &fakeAudio{dir: t.TempDir()}
	b := NewBuilder(deps)

	c, err := b.BuildWord(context.Background(), "你")
	require.NoError(t, err)

	n, err := AppendToPackage(pkg, "Chinese", "Default", []Card{c})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, pkg.Notes, 2)

	added := pkg.Notes[1]
	assert.Equal(t, "你", pkg.GetFieldValue(added, "Hanzi"))
	assert.Equal(t, "[sound:你_audio.mp3]", pkg.GetFieldValue(added, "Audio"))
	assert.Contains(t, pkg.MediaFiles(), "你_audio.mp3")
}

func TestAppendToPackageUnknownModel(t *testing.T) {
	pkg := openDeck(t, "好")

	_, err := AppendToPackage(pkg, "Missing", "Default", nil)
	assert.ErrorIs(t, err, anki.ErrModelNotFound)
}
