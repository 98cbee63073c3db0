package anki

import (
	"archive/zip"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testModelID int64 = 1342697561419
	testDeckID  int64 = 1
)

const fixtureSchema = `
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

const fixtureModels = `{"1342697561419":{"id":1342697561419,"name":"Radical","type":0,"sortf":0,"css":".card{}",
"req":[[0,"any",[0]]],"latexPre":"\\documentclass{article}",
"flds":[{"name":"Hanzi","ord":0,"sticky":false,"rtl":false,"font":"KaiTi","size":40,"media":[]},
        {"name":"Meaning","ord":1,"sticky":false,"rtl":false,"font":"Arial","size":20,"media":[]}],
"tmpls":[{"name":"Recognition","ord":0,"qfmt":"{{Hanzi}}","afmt":"{{Meaning}}"},
         {"name":"Recall","ord":1,"qfmt":"{{Meaning}}","afmt":"{{Hanzi}}"}]}}`

const fixtureDecks = `{"1":{"id":1,"name":"Default","desc":""},"2":{"id":2,"name":"Radicals","desc":"214 radicals"}}`

type fixtureNote struct {
	id   int64
	flds string
}

// writeFixture builds an .apkg with two templates per note and returns its path.
func writeFixture(t *testing.T, notes []fixtureNote, media map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "collection.anki2")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(fixtureSchema)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO col (id, models, decks) VALUES (1, ?, ?)", fixtureModels, fixtureDecks)
	require.NoError(t, err)

	cardID := int64(5000)
	for i, n := range notes {
		_, err = db.Exec(`INSERT INTO notes VALUES (?, ?, ?, 0, 0, '', ?, '', 0, 0, '')`,
			n.id, "guid"+string(rune('a'+i)), testModelID, n.flds)
		require.NoError(t, err)
		for ord := 0; ord < 2; ord++ {
			cardID++
			_, err = db.Exec(`INSERT INTO cards VALUES (?, ?, 2, ?, 0, 0, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
				cardID, n.id, ord, i+1)
			require.NoError(t, err)
		}
	}
	require.NoError(t, db.Close())

	apkg := filepath.Join(dir, "fixture.apkg")
	f, err := os.Create(apkg)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	addEntry := func(name string, data []byte) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	addEntry("collection.anki2", data)

	index := "{}"
	if len(media) > 0 {
		index = "{"
		first := true
		for key, name := range media {
			if !first {
				index += ","
			}
			first = false
			index += `"` + key + `":"` + name + `"`
			addEntry(key, []byte("media:"+name))
		}
		index += "}"
	}
	addEntry("media", []byte(index))

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return apkg
}

func openFixture(t *testing.T, notes []fixtureNote, media map[string]string) *Package {
	t.Helper()
	pkg, err := OpenPackage(writeFixture(t, notes, media))
	require.NoError(t, err)
	t.Cleanup(func() { pkg.Close() })
	return pkg
}
