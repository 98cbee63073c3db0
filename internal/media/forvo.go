// Package media fetches and caches the audio, stroke diagrams, images and
// example sentences attached to cards.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const forvoAPIURL = "https://apifree.forvo.com"

// Forvo downloads native-speaker pronunciations from the Forvo API.
type Forvo struct {
	apiKey   string
	baseURL  string
	language string
	dir      string
	web      *fetcher
	logger   *zap.Logger
}

// NewForvo creates a Forvo client caching mp3 files in dir.
func NewForvo(apiKey, dir string, logger *zap.Logger) *Forvo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forvo{
		apiKey:   apiKey,
		baseURL:  forvoAPIURL,
		language: "zh",
		dir:      dir,
		web:      newFetcher(logger),
		logger:   logger,
	}
}

// SetBaseURL points the client at a different API host.
func (f *Forvo) SetBaseURL(u string) {
	f.baseURL = u
}

// SetRetry sets how often a failed request is retried and the first wait.
func (f *Forvo) SetRetry(maxRetries uint64, interval time.Duration) {
	f.web.maxRetries = maxRetries
	f.web.interval = interval
}

// AudioPath returns the cache path for word.
func (f *Forvo) AudioPath(word string) string {
	return filepath.Join(f.dir, word+"_audio.mp3")
}

type forvoItem struct {
	PathMP3          string          `json:"pathmp3"`
	NumPositiveVotes json.RawMessage `json:"num_positive_votes"`
}

// votes accepts both numeric and quoted vote counts.
func (i forvoItem) votes() int {
	var n int
	if err := json.Unmarshal(i.NumPositiveVotes, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(i.NumPositiveVotes, &s); err == nil {
		n, _ = strconv.Atoi(s)
	}
	return n
}

type forvoResponse struct {
	Items []forvoItem `json:"items"`
}

// Fetch returns the path of an mp3 for word, downloading the recording with
// the most positive votes when it is not cached yet.
func (f *Forvo) Fetch(ctx context.Context, word string) (string, error) {
	path := f.AudioPath(word)
	if _, err := os.Stat(path); err == nil {
		f.logger.Debug("audio cached", zap.String("word", word), zap.String("path", path))
		return path, nil
	}

	endpoint := fmt.Sprintf("%s/key/%s/format/json/action/word-pronunciations/word/%s/language/%s",
		f.baseURL, url.PathEscape(f.apiKey), url.PathEscape(word), f.language)

	body, err := f.web.get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("looking up pronunciation: %w", err)
	}

	var resp forvoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing forvo response: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoPronunciation, word)
	}

	sort.SliceStable(resp.Items, func(i, j int) bool {
		return resp.Items[i].votes() > resp.Items[j].votes()
	})
	best := resp.Items[0]
	if best.PathMP3 == "" {
		return "", fmt.Errorf("%w: %s", ErrNoPronunciation, word)
	}

	audio, err := f.web.get(ctx, best.PathMP3)
	if err != nil {
		return "", fmt.Errorf("downloading pronunciation: %w", err)
	}

	if err := writeFile(path, audio); err != nil {
		return "", err
	}
	f.logger.Debug("audio downloaded", zap.String("word", word), zap.String("path", path))
	return path, nil
}

// writeFile writes data to path, creating the parent directory.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating media directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// exists reports whether path is an existing regular file.
func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
