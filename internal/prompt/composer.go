// Package prompt composes story and image prompts for mnemonic scenes.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// SystemPrompt is sent as the system instruction alongside story prompts.
const SystemPrompt = "You are a creative assistant who writes mnemonic stories."

// StoryInput is the data substituted into the story template.
type StoryInput struct {
	Character      string
	PrimaryMeaning string
	Actor          string
	Location       string // "location - room"
	Decomposition  string // component hint, e.g. "女 (woman), 子 (child)"
	Language       string // filled from the composer when empty
}

// ImageInput is the data substituted into the image template.
// It deliberately has no field for the character itself.
type ImageInput struct {
	PrimaryMeaning string
	Actor          string
	Location       string
	Story          string
	Style          Style // filled from the composer when empty
}

// Style describes the look requested from the image generator.
type Style struct {
	Name   string // e.g. "photorealistic image", "watercolor"
	Suffix string // added after the scene description
}

// DefaultStyle returns the style used for story images.
func DefaultStyle() Style {
	return Style{
		Name:   "Photorealistic image",
		Suffix: "cinematic lighting, high detail",
	}
}

// Composer renders prompts from templates.
type Composer struct {
	language string
	style    Style
	story    *template.Template
	image    *template.Template
}

// NewComposer creates a composer writing stories in language.
func NewComposer(language string) *Composer {
	if strings.TrimSpace(language) == "" {
		language = "English"
	}
	return &Composer{
		language: language,
		style:    DefaultStyle(),
		story:    template.Must(template.New("story").Parse(defaultStoryTemplate)),
		image:    template.Must(template.New("image").Parse(defaultImageTemplate)),
	}
}

// Language returns the story language.
func (c *Composer) Language() string {
	return c.language
}

// SetStyle updates the image style.
func (c *Composer) SetStyle(style Style) {
	c.style = style
}

// SetStoryTemplate replaces the story template.
func (c *Composer) SetStoryTemplate(tmpl string) error {
	t, err := template.New("story").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing story template: %w", err)
	}
	c.story = t
	return nil
}

// SetImageTemplate replaces the image template.
func (c *Composer) SetImageTemplate(tmpl string) error {
	t, err := template.New("image").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing image template: %w", err)
	}
	c.image = t
	return nil
}

// StoryPrompt renders the prompt asking for a short mnemonic story.
func (c *Composer) StoryPrompt(in StoryInput) (string, error) {
	if in.Language == "" {
		in.Language = c.language
	}
	return render(c.story, in)
}

// ImagePrompt renders the prompt for an illustration of a story.
func (c *Composer) ImagePrompt(in ImageInput) (string, error) {
	if in.Style == (Style{}) {
		in.Style = c.style
	}
	return render(c.image, in)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// FallbackStory is used when no story writer is available or it fails.
func FallbackStory(character, primaryMeaning, actor, location string) string {
	return fmt.Sprintf("%s at %s sees the character %s and remembers '%s'.",
		actor, location, character, primaryMeaning)
}

const defaultStoryTemplate = `Create a simple, memorable Hanzi Movie Method story for learning a Chinese character.
Details:
- Character: {{ .Character }}, meaning: {{ .PrimaryMeaning }}
- Setting: {{ .Location }}, main character: {{ .Actor }}
- Components of the character: {{ .Decomposition }}
Requirements:
- Keep the story short (1-2 sentences), easy to remember, and tie all the elements together.
- Important: the story must relate directly to the meanings of the components {{ .Decomposition }}.
- Write in {{ .Language }}.
- Keep the description simple and brief.
- Avoid violence, insults, or anything else that could violate a content policy.
- End the story with the character {{ .Character }} to mark it as the key element.`

const defaultImageTemplate = `{{ .Style.Name }}, {{ .Style.Suffix }}. A scene based on the story: '{{ .Story }}'.
In the scene: {{ .Actor }} at '{{ .Location }}'. The image illustrates the idea of '{{ .PrimaryMeaning }}'.

CRITICALLY IMPORTANT: the image must contain only the scene. No Chinese characters, words, captions, letters or text of any kind. An absolutely clean image.`
