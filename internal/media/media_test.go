package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forvoServer(t *testing.T, items string) (*httptest.Server, *int) {
	t.Helper()
	lookups := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/key/"):
			lookups++
			assert.Contains(t, r.URL.Path, "/action/word-pronunciations/word/")
			assert.True(t, strings.HasSuffix(r.URL.Path, "/language/zh"))
			_, _ = io.WriteString(w, strings.ReplaceAll(items, "{{host}}", srv.URL))
		case r.URL.Path == "/audio/best.mp3":
			_, _ = io.WriteString(w, "best-audio")
		case r.URL.Path == "/audio/other.mp3":
			_, _ = io.WriteString(w, "other-audio")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &lookups
}

func TestForvoPicksMostVotedAndCaches(t *testing.T) {
	srv, lookups := forvoServer(t, `{"items":[
		{"pathmp3":"{{host}}/audio/other.mp3","num_positive_votes":1},
		{"pathmp3":"{{host}}/audio/best.mp3","num_positive_votes":"7"}
	]}`)

	dir := t.TempDir()
	f := NewForvo("key", dir, nil)
	f.SetBaseURL(srv.URL)

	path, err := f.Fetch(context.Background(), "你好")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "你好_audio.mp3"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "best-audio", string(data))

	_, err = f.Fetch(context.Background(), "你好")
	require.NoError(t, err)
	assert.Equal(t, 1, *lookups)
}

func TestForvoNoItems(t *testing.T) {
	srv, _ := forvoServer(t, `{"items":[]}`)
	f := NewForvo("key", t.TempDir(), nil)
	f.SetBaseURL(srv.URL)

	_, err := f.Fetch(context.Background(), "龘")
	assert.ErrorIs(t, err, ErrNoPronunciation)
}

func TestForvoHTTPError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewForvo("key", t.TempDir(), nil)
	f.SetBaseURL(srv.URL)
	f.SetRetry(2, time.Millisecond)
	_, err := f.Fetch(context.Background(), "好")
	assert.Error(t, err)
	assert.Equal(t, 1, calls, "client errors are not retried")
}

func TestForvoRetriesServerErrors(t *testing.T) {
	failures := 2
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failures > 0 {
			failures--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/key/") {
			fmt.Fprintf(w, `{"items":[{"pathmp3":"%s/audio.mp3","num_positive_votes":3}]}`, srv.URL)
			return
		}
		_, _ = io.WriteString(w, "audio")
	}))
	defer srv.Close()

	f := NewForvo("key", t.TempDir(), nil)
	f.SetBaseURL(srv.URL)
	f.SetRetry(2, time.Millisecond)

	path, err := f.Fetch(context.Background(), "好")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}

func TestForvoGivesUpAfterRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewForvo("key", t.TempDir(), nil)
	f.SetBaseURL(srv.URL)
	f.SetRetry(1, time.Millisecond)

	_, err := f.Fetch(context.Background(), "好")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func tatoebaServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eng/api_v0/search", r.URL.Path)
		assert.Equal(t, "cmn", r.URL.Query().Get("from"))
		assert.Equal(t, "eng", r.URL.Query().Get("to"))
		assert.Equal(t, "学习", r.URL.Query().Get("query"))
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTatoebaFetch(t *testing.T) {
	srv := tatoebaServer(t, `{"results":[
		{"text":"沒有翻譯。","translations":[[],[]]},
		{"text":" 我喜歡學習中文。 ","translations":[[],[
			{"text":"I like studying Chinese very much."},
			{"text":"I like studying Chinese."}
		]]}
	]}`)

	tt := NewTatoeba(nil)
	tt.SetBaseURL(srv.URL)

	ex, err := tt.Fetch(context.Background(), "学习")
	require.NoError(t, err)
	assert.Equal(t, "我喜欢学习中文。", ex.Sentence)
	assert.Equal(t, "I like studying Chinese.", ex.Meaning)
}

func TestTatoebaNoResults(t *testing.T) {
	srv := tatoebaServer(t, `{"results":[]}`)

	tt := NewTatoeba(nil)
	tt.SetBaseURL(srv.URL)

	_, err := tt.Fetch(context.Background(), "学习")
	assert.ErrorIs(t, err, ErrNoExample)
}

func TestTatoebaCancelled(t *testing.T) {
	srv := tatoebaServer(t, `{"results":[]}`)

	tt := NewTatoeba(nil)
	tt.SetBaseURL(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tt.Fetch(ctx, "学习")
	assert.ErrorIs(t, err, context.Canceled)
}

func writeSVG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("<svg/>"), 0644))
}

func TestStrokeLocator(t *testing.T) {
	root := t.TempDir()
	ni := fmt.Sprint(int('你'))
	hao := fmt.Sprint(int('好'))
	writeSVG(t, filepath.Join(root, "svgs", ni+".svg"))
	writeSVG(t, filepath.Join(root, "svgs-still", ni+"-still.svg"))
	writeSVG(t, filepath.Join(root, "svgs-still", hao+"-still.svg"))

	s := NewStrokeLocator([]string{filepath.Join(root, "missing"), root}, nil)

	paths, err := s.Locate("你好吗")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "svgs", ni+".svg"),
		filepath.Join(root, "svgs-still", hao+"-still.svg"),
	}, paths)

	paths, err = s.Locate("好")
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	_, err = s.Locate("吗")
	assert.ErrorIs(t, err, ErrNoStrokeDiagram)
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	_, ok := CachedImage(dir, "好")
	assert.False(t, ok)

	path, err := SaveImage(dir, "好", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "好_story.png"), path)

	cached, ok := CachedImage(dir, "好")
	assert.True(t, ok)
	assert.Equal(t, path, cached)
}
