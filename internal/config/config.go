// Package config handles application settings and the mnemonic catalog.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/f3rmion/hanzideck/internal/hmm"
)

// File names inside the config directory.
const (
	ConfigFile  = "config.yaml"
	CatalogFile = "catalog.yaml"
)

// EnvPrefix prefixes environment overrides, e.g. HANZIDECK_LLM_PROVIDER.
const EnvPrefix = "HANZIDECK"

// Providers accepted for llm.provider.
const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ErrInvalidCatalog is returned when a catalog lacks a required entry.
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog holds the locations (finals) and actors (initials) used for mnemonics.
type Catalog struct {
	Locations []hmm.Location `yaml:"locations"`
	Actors    []hmm.Actor    `yaml:"actors"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("parsing default catalog: %w", err)
	}
	return c, nil
}

// DefaultCatalogYAML returns the built-in catalog file, comments included.
func DefaultCatalogYAML() []byte {
	out := make([]byte, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// ParseCatalog decodes a catalog from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &c, nil
}

// LoadCatalog loads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// LoadCatalogOrDefault loads path, or the built-in catalog if path does not exist.
func LoadCatalogOrDefault(path string) (*Catalog, error) {
	c, err := LoadCatalog(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalog()
	}
	return c, err
}

// SaveCatalog saves a catalog to a YAML file.
func SaveCatalog(path string, c *Catalog) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing catalog file: %w", err)
	}

	return nil
}

// Validate checks that the catch-all location and the default actor exist
// and that no key is declared twice.
func (c *Catalog) Validate() error {
	var problems []string

	seen := make(map[string]bool)
	hasCatchAll := false
	for _, l := range c.Locations {
		if l.Key == hmm.NullKey {
			hasCatchAll = true
		}
		if seen[l.Key] {
			problems = append(problems, fmt.Sprintf("duplicate location %q", l.Key))
		}
		seen[l.Key] = true
	}
	if !hasCatchAll {
		problems = append(problems, `no "null" location`)
	}

	seen = make(map[string]bool)
	hasDefault := false
	for _, a := range c.Actors {
		if a.Key == hmm.NullKey {
			hasDefault = true
		}
		if seen[a.Key] {
			problems = append(problems, fmt.Sprintf("duplicate actor %q", a.Key))
		}
		seen[a.Key] = true
	}
	if !hasDefault {
		problems = append(problems, `no "null" actor`)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

// ActorsByCategory returns the actors of one category in catalog order.
func (c *Catalog) ActorsByCategory(category hmm.ActorCategory) []hmm.Actor {
	var out []hmm.Actor
	for _, a := range c.Actors {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Settings is the resolved application configuration.
type Settings struct {
	ConfigDir  string
	Dictionary string
	Catalog    string
	Language   string
	WordsFile  string

	LLM     LLMSettings
	Pace    time.Duration
	Media   MediaSettings
	Archive string
	Stories string
	Prompts PromptSettings
}

// LLMSettings configures the story writer and image painter.
type LLMSettings struct {
	Provider     string
	Model        string
	ImageModel   string
	Temperature  float64
	MaxTokens    int
	AnthropicKey string
	GeminiKey    string
}

// MediaSettings configures pronunciation audio, stroke diagrams, images
// and example sentences.
type MediaSettings struct {
	Dir        string
	StrokeDirs []string
	ForvoKey   string
	Examples   bool // look up Tatoeba sentences
}

// PromptSettings points at optional user templates.
type PromptSettings struct {
	StoryTemplate string
	ImageTemplate string
}

// DefaultConfigDir returns $HOME/.config/hanzideck.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hanzideck"), nil
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("dictionary", filepath.Join(configDir, "dictionary.txt"))
	v.SetDefault("catalog", filepath.Join(configDir, CatalogFile))
	v.SetDefault("language", "English")
	v.SetDefault("words.file", filepath.Join(configDir, "words.txt"))

	v.SetDefault("llm.provider", ProviderNone)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.image_model", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 300)

	v.SetDefault("pace.delay", "2s")

	v.SetDefault("media.dir", filepath.Join(configDir, "media"))
	v.SetDefault("media.stroke_dirs", []string{})
	v.SetDefault("media.examples", true)
	v.SetDefault("archive.dir", filepath.Join(configDir, "archive"))
	v.SetDefault("stories.file", filepath.Join(configDir, "stories.json"))

	v.SetDefault("prompts.story_template", "")
	v.SetDefault("prompts.image_template", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("llm.anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("media.forvo_api_key", "FORVO_API_KEY")
}

// Load reads config.yaml from configDir (if present) into v and resolves
// the settings. Defaults must have been registered with SetDefaults.
func Load(v *viper.Viper, configDir string) (*Settings, error) {
	v.SetConfigFile(filepath.Join(configDir, ConfigFile))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	s := &Settings{
		ConfigDir:  configDir,
		Dictionary: v.GetString("dictionary"),
		Catalog:    v.GetString("catalog"),
		Language:   v.GetString("language"),
		WordsFile:  v.GetString("words.file"),
		LLM: LLMSettings{
			Provider:     strings.ToLower(v.GetString("llm.provider")),
			Model:        v.GetString("llm.model"),
			ImageModel:   v.GetString("llm.image_model"),
			Temperature:  v.GetFloat64("llm.temperature"),
			MaxTokens:    v.GetInt("llm.max_tokens"),
			AnthropicKey: strings.TrimSpace(v.GetString("llm.anthropic_api_key")),
			GeminiKey:    strings.TrimSpace(v.GetString("llm.gemini_api_key")),
		},
		Pace: v.GetDuration("pace.delay"),
		Media: MediaSettings{
			Dir:        v.GetString("media.dir"),
			StrokeDirs: v.GetStringSlice("media.stroke_dirs"),
			ForvoKey:   strings.TrimSpace(v.GetString("media.forvo_api_key")),
			Examples:   v.GetBool("media.examples"),
		},
		Archive: v.GetString("archive.dir"),
		Stories: v.GetString("stories.file"),
		Prompts: PromptSettings{
			StoryTemplate: v.GetString("prompts.story_template"),
			ImageTemplate: v.GetString("prompts.image_template"),
		},
	}

	switch s.LLM.Provider {
	case ProviderNone, ProviderAnthropic, ProviderGemini:
	case "":
		s.LLM.Provider = ProviderNone
	default:
		return nil, fmt.Errorf("unknown llm.provider %q", s.LLM.Provider)
	}
	if s.Pace < 0 {
		s.Pace = 0
	}

	return s, nil
}

// fileSettings is the on-disk shape of config.yaml. API keys are left to
// the environment.
type fileSettings struct {
	Dictionary string `yaml:"dictionary"`
	Catalog    string `yaml:"catalog"`
	Language   string `yaml:"language"`
	Words      struct {
		File string `yaml:"file"`
	} `yaml:"words"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		ImageModel  string  `yaml:"image_model"`
		Temperature float64 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"llm"`
	Pace struct {
		Delay string `yaml:"delay"`
	} `yaml:"pace"`
	Media struct {
		Dir        string   `yaml:"dir"`
		StrokeDirs []string `yaml:"stroke_dirs"`
		Examples   bool     `yaml:"examples"`
	} `yaml:"media"`
	Archive struct {
		Dir string `yaml:"dir"`
	} `yaml:"archive"`
	Stories struct {
		File string `yaml:"file"`
	} `yaml:"stories"`
	Prompts struct {
		StoryTemplate string `yaml:"story_template"`
		ImageTemplate string `yaml:"image_template"`
	} `yaml:"prompts"`
}

// SaveSettings writes s to path as config.yaml, without API keys.
func SaveSettings(path string, s *Settings) error {
	var f fileSettings
	f.Dictionary = s.Dictionary
	f.Catalog = s.Catalog
	f.Language = s.Language
	f.Words.File = s.WordsFile
	f.LLM.Provider = s.LLM.Provider
	f.LLM.Model = s.LLM.Model
	f.LLM.ImageModel = s.LLM.ImageModel
	f.LLM.Temperature = s.LLM.Temperature
	f.LLM.MaxTokens = s.LLM.MaxTokens
	f.Pace.Delay = s.Pace.String()
	f.Media.Dir = s.Media.Dir
	f.Media.StrokeDirs = s.Media.StrokeDirs
	f.Media.Examples = s.Media.Examples
	f.Archive.Dir = s.Archive
	f.Stories.File = s.Stories
	f.Prompts.StoryTemplate = s.Prompts.StoryTemplate
	f.Prompts.ImageTemplate = s.Prompts.ImageTemplate

	out, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// EnsureDir creates dir if it doesn't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
