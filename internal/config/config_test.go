package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/hanzideck/internal/hmm"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Len(t, c.Locations, 13)
	assert.Len(t, c.ActorsByCategory(hmm.ActorFemale), 11)
	assert.Len(t, c.ActorsByCategory(hmm.ActorFictional), 19)
	assert.Len(t, c.ActorsByCategory(hmm.ActorGodLeader), 6)

	for _, l := range c.Locations {
		for tone := hmm.Tone1; tone <= hmm.Tone4; tone++ {
			assert.NotEqual(t, hmm.UnknownRoom, l.Room(tone), "location %s tone %d", l.Key, tone)
		}
	}

	keys := make(map[string]bool)
	for _, a := range c.Actors {
		keys[a.Key] = true
	}
	for _, k := range []string{"null", "y", "n", "zh", "nü", "lü"} {
		assert.True(t, keys[k], "missing actor %q", k)
	}
}

func TestSaveLoadCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), CatalogFile)
	require.NoError(t, SaveCatalog(path, c))

	loaded, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadCatalogOrDefault(t *testing.T) {
	c, err := LoadCatalogOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.Actors)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("locations: [unclosed"), 0644))
	_, err = LoadCatalogOrDefault(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := &Catalog{
		Locations: []hmm.Location{{Key: "a"}, {Key: "a"}},
		Actors:    []hmm.Actor{{Key: "b"}},
	}
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Contains(t, err.Error(), `duplicate location "a"`)
	assert.Contains(t, err.Error(), `no "null" location`)
	assert.Contains(t, err.Error(), `no "null" actor`)
}

func TestLoadSettingsDefaults(t *testing.T) {
	dir := t.TempDir()
	v := viper.New()
	SetDefaults(v, dir)

	s, err := Load(v, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dictionary.txt"), s.Dictionary)
	assert.Equal(t, filepath.Join(dir, CatalogFile), s.Catalog)
	assert.Equal(t, ProviderNone, s.LLM.Provider)
	assert.Equal(t, 2*time.Second, s.Pace)
	assert.Equal(t, 300, s.LLM.MaxTokens)
	assert.True(t, s.Media.Examples)
}

func TestLoadSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `language: Russian
llm:
  provider: Gemini
  temperature: 0.2
pace:
  delay: 500ms
media:
  stroke_dirs: [/a, /b]
  examples: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0644))

	v := viper.New()
	SetDefaults(v, dir)
	s, err := Load(v, dir)
	require.NoError(t, err)

	assert.Equal(t, "Russian", s.Language)
	assert.Equal(t, ProviderGemini, s.LLM.Provider)
	assert.InDelta(t, 0.2, s.LLM.Temperature, 1e-9)
	assert.Equal(t, 500*time.Millisecond, s.Pace)
	assert.Equal(t, []string{"/a", "/b"}, s.Media.StrokeDirs)
	assert.False(t, s.Media.Examples)
}

func TestLoadSettingsEnv(t *testing.T) {
	t.Setenv("HANZIDECK_LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "  sk-test\n")

	dir := t.TempDir()
	v := viper.New()
	SetDefaults(v, dir)
	s, err := Load(v, dir)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, s.LLM.Provider)
	assert.Equal(t, "sk-test", s.LLM.AnthropicKey)
}

func TestLoadSettingsUnknownProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("llm:\n  provider: openai\n"), 0644))

	v := viper.New()
	SetDefaults(v, dir)
	_, err := Load(v, dir)
	assert.Error(t, err)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	v := viper.New()
	SetDefaults(v, dir)
	s, err := Load(v, dir)
	require.NoError(t, err)
	s.Language = "German"
	s.Pace = 3 * time.Second
	s.Media.Examples = false

	require.NoError(t, SaveSettings(filepath.Join(dir, ConfigFile), s))

	v = viper.New()
	SetDefaults(v, dir)
	reloaded, err := Load(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "German", reloaded.Language)
	assert.Equal(t, 3*time.Second, reloaded.Pace)
	assert.Equal(t, s.Media.Dir, reloaded.Media.Dir)
	assert.False(t, reloaded.Media.Examples)
}
