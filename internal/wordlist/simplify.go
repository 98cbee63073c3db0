package wordlist

import (
	"sync"

	"github.com/longbridgeapp/opencc"
)

var (
	t2sOnce sync.Once
	t2s     *opencc.OpenCC
)

// Simplify converts traditional characters in s to simplified ones.
// Simplified and non-Chinese text is returned as is, and so is s when the
// conversion tables cannot be loaded.
func Simplify(s string) string {
	if s == "" {
		return s
	}
	t2sOnce.Do(func() {
		t2s, _ = opencc.New("t2s")
	})
	if t2s == nil {
		return s
	}
	out, err := t2s.Convert(s)
	if err != nil {
		return s
	}
	return out
}
