package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/wordlist"
)

const tatoebaAPIURL = "https://tatoeba.org"

// Example is a sentence using a word, with its translation.
type Example struct {
	Sentence string
	Meaning  string
}

// Tatoeba looks up example sentences on tatoeba.org.
type Tatoeba struct {
	baseURL string
	from    string
	to      string
	web     *fetcher
	logger  *zap.Logger
}

// NewTatoeba creates a client searching Mandarin sentences with English
// translations.
func NewTatoeba(logger *zap.Logger) *Tatoeba {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tatoeba{
		baseURL: tatoebaAPIURL,
		from:    "cmn",
		to:      "eng",
		web:     newFetcher(logger),
		logger:  logger,
	}
}

// SetBaseURL points the client at a different host.
func (t *Tatoeba) SetBaseURL(u string) {
	t.baseURL = u
}

// SetRetry sets how often a failed request is retried and the first wait.
func (t *Tatoeba) SetRetry(maxRetries uint64, interval time.Duration) {
	t.web.maxRetries = maxRetries
	t.web.interval = interval
}

type tatoebaTranslation struct {
	Text string `json:"text"`
}

type tatoebaSentence struct {
	Text string `json:"text"`
	// Translations is grouped: direct translations first, then
	// translations of translations.
	Translations json.RawMessage `json:"translations"`
}

// translation returns the shortest translation of the first non-empty group.
func (s tatoebaSentence) translation() string {
	var groups [][]tatoebaTranslation
	if err := json.Unmarshal(s.Translations, &groups); err != nil {
		return ""
	}
	for _, group := range groups {
		best := ""
		for _, tr := range group {
			text := strings.TrimSpace(tr.Text)
			if text == "" {
				continue
			}
			if best == "" || len(text) < len(best) {
				best = text
			}
		}
		if best != "" {
			return best
		}
	}
	return ""
}

type tatoebaResponse struct {
	Results []tatoebaSentence `json:"results"`
}

// Fetch returns the first translated sentence containing word. The
// sentence is converted to simplified characters.
func (t *Tatoeba) Fetch(ctx context.Context, word string) (Example, error) {
	q := url.Values{}
	q.Set("from", t.from)
	q.Set("to", t.to)
	q.Set("query", word)
	endpoint := t.baseURL + "/eng/api_v0/search?" + q.Encode()

	body, err := t.web.get(ctx, endpoint)
	if err != nil {
		return Example{}, fmt.Errorf("searching examples: %w", err)
	}

	var resp tatoebaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Example{}, fmt.Errorf("parsing tatoeba response: %w", err)
	}

	for _, s := range resp.Results {
		sentence := wordlist.Simplify(strings.TrimSpace(s.Text))
		if sentence == "" {
			continue
		}
		if meaning := s.translation(); meaning != "" {
			t.logger.Debug("example found", zap.String("word", word), zap.String("sentence", sentence))
			return Example{Sentence: sentence, Meaning: meaning}, nil
		}
	}
	return Example{}, fmt.Errorf("%w: %s", ErrNoExample, word)
}
