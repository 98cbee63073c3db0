// Package tui provides an interactive terminal UI for looking up mnemonics
// and drafting stories.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/f3rmion/hanzideck/internal/card"
	"github.com/f3rmion/hanzideck/internal/clipboard"
	"github.com/f3rmion/hanzideck/internal/hmm"
	"github.com/f3rmion/hanzideck/internal/tui/bigchar"
	"github.com/f3rmion/hanzideck/internal/wordlist"
)

// draftTimeout bounds one story request made from the UI.
const draftTimeout = 2 * time.Minute

type draftMsg struct {
	record card.StoryRecord
	err    error
}

type clearStatusMsg struct{}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// Options configures the UI.
type Options struct {
	Builder     *card.Builder
	Art         *bigchar.Renderer // optional
	StoriesPath string            // where 's' appends the drafted story
	Logger      *zap.Logger
}

// Model is the lookup screen.
type Model struct {
	input   textinput.Model
	builder *card.Builder
	art     *bigchar.Renderer
	stories string
	logger  *zap.Logger

	word     string
	chars    []card.Description
	selected int
	err      error

	record   *card.StoryRecord
	drafting bool
	draftErr error
	status   string

	width  int
	height int
}

// New creates the lookup model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter Chinese characters or words..."
	ti.Focus()
	ti.CharLimit = 50
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	ti.TextStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return Model{
		input:   ti,
		builder: opts.Builder,
		art:     opts.Art,
		stories: opts.StoriesPath,
		logger:  logger,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.analyze()
			return m, nil
		case "left":
			if len(m.chars) > 1 {
				m.selected = (m.selected - 1 + len(m.chars)) % len(m.chars)
				return m, nil
			}
		case "right":
			if len(m.chars) > 1 {
				m.selected = (m.selected + 1) % len(m.chars)
				return m, nil
			}
		case "ctrl+g":
			if m.word != "" && !m.drafting {
				m.drafting = true
				m.draftErr = nil
				return m, m.draft()
			}
			return m, nil
		case "ctrl+y":
			if m.record != nil {
				if err := clipboard.Write(m.record.Story); err != nil {
					m.draftErr = err
					return m, nil
				}
				m.status = "Copied!"
				return m, clearStatusAfter(2 * time.Second)
			}
			return m, nil
		case "ctrl+s":
			if m.record != nil && m.stories != "" {
				if err := card.AppendStories(m.stories, []card.StoryRecord{*m.record}); err != nil {
					m.draftErr = err
					return m, nil
				}
				m.status = "Saved to " + m.stories
				return m, clearStatusAfter(3 * time.Second)
			}
			return m, nil
		}

	case draftMsg:
		m.drafting = false
		if msg.err != nil {
			m.draftErr = msg.err
			return m, nil
		}
		if msg.record.Hanzi == m.word {
			rec := msg.record
			m.record = &rec
		}
		return m, nil

	case clearStatusMsg:
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) analyze() {
	input := wordlist.Clean(m.input.Value())
	if input == "" {
		return
	}

	m.word = ""
	m.chars = nil
	m.selected = 0
	m.err = nil
	m.record = nil
	m.draftErr = nil

	var word strings.Builder
	for _, r := range input {
		if wordlist.IsHan(string(r)) {
			word.WriteRune(r)
		}
	}
	if word.Len() == 0 {
		m.err = fmt.Errorf("no Chinese characters found in: %s", input)
		return
	}

	m.word = word.String()
	for _, r := range m.word {
		m.chars = append(m.chars, m.builder.Describe(string(r)))
	}
}

func (m Model) draft() tea.Cmd {
	b, word, logger := m.builder, m.word, m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), draftTimeout)
		defer cancel()

		rec, err := b.Draft(ctx, word)
		if err != nil {
			logger.Warn("drafting story", zap.String("word", word), zap.Error(err))
		}
		return draftMsg{record: rec, err: err}
	}
}

// View renders the lookup screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Hanzi Movie Method"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	if len(m.chars) > 0 {
		if len(m.chars) > 1 {
			b.WriteString(m.renderWordBar())
			b.WriteString("\n")
		}
		b.WriteString(m.renderDetail(m.chars[m.selected]))
		b.WriteString(m.renderStory())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHelp() string {
	if len(m.chars) == 0 {
		return helpStyle.Render("Type characters and press Enter to analyze • esc: quit")
	}
	var parts []string
	if len(m.chars) > 1 {
		parts = append(parts, "←/→: navigate")
	}
	parts = append(parts, "ctrl+g: draft story")
	if m.record != nil {
		parts = append(parts, "ctrl+y: copy")
		if m.stories != "" {
			parts = append(parts, "ctrl+s: save")
		}
	}
	parts = append(parts, "esc: quit")
	return helpStyle.Render(strings.Join(parts, " • "))
}

func (m Model) renderWordBar() string {
	tabs := make([]string, 0, len(m.chars))
	for i, d := range m.chars {
		label := fmt.Sprintf("%s\n%s", d.Word, charTabPinyinStyle.Render(d.Reading))
		if i == m.selected {
			tabs = append(tabs, charTabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, charTabStyle.Render(label))
		}
	}

	nav := wordNavStyle.Render(fmt.Sprintf("◀ %d/%d ▶", m.selected+1, len(m.chars)))
	bar := lipgloss.JoinHorizontal(lipgloss.Center, tabs...)
	return wordDisplayStyle.Render(lipgloss.JoinHorizontal(lipgloss.Center, bar, "  ", nav))
}

func (m Model) contentWidth() int {
	return max(m.width-4, 40)
}

func (m Model) renderDetail(d card.Description) string {
	var b strings.Builder
	width := m.contentWidth()

	glyph := bigCharStyle.Render(d.Word)
	if art := m.art.Render(d.Word, 30, 15); art != "" {
		glyph = artStyle.Render(art)
	}
	block := lipgloss.JoinVertical(lipgloss.Center, glyph, pinyinUnderStyle.Render(d.Reading))

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(block))
	b.WriteString("\n")

	if meaning := d.Meaning(); meaning != "" {
		meaning = runewidth.Truncate(meaning, width-8, "...")
		b.WriteString(lipgloss.NewStyle().
			Foreground(ColorText).
			Width(width).
			Align(lipgloss.Center).
			Render(meaning))
		b.WriteString("\n")
	}

	b.WriteString(renderMnemonicBox(d.Tag))
	b.WriteString("\n")
	b.WriteString(renderComponentsBox(d))
	b.WriteString("\n")

	if d.Entry != nil {
		if hint := d.Entry.EtymologyHint(); hint != "" {
			b.WriteString(renderRow("Etymology", hint))
		}
	}
	return b.String()
}

func renderRow(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value) + "\n"
}

func renderMnemonicBox(tag hmm.MnemonicTag) string {
	if !tag.Resolved {
		return boxStyle.Render(subtitleStyle.Render("Mnemonic") + "\n\n" + errorStyle.Render(hmm.UnknownSpace))
	}

	lines := []string{
		fmt.Sprintf("%s  %s → %s", labelStyle.Render("Initial:"),
			actorStyle.Render(displayKey(tag.InitialKey)), actorStyle.Render(tag.Actor)),
		fmt.Sprintf("%s  %s → %s", labelStyle.Render("Final:"),
			locationStyle.Render(displayKey(tag.FinalKey)), locationStyle.Render(tag.Location)),
		fmt.Sprintf("%s  %s → %s", labelStyle.Render("Tone:"),
			roomStyle.Render(tag.Tone.String()), roomStyle.Render(tag.Room)),
		"",
		valueStyle.Render(tag.String()),
	}
	return boxStyle.Render(subtitleStyle.Render("Mnemonic") + "\n\n" + strings.Join(lines, "\n"))
}

// displayKey shows the null key as an empty-set sign.
func displayKey(key string) string {
	if key == hmm.NullKey {
		return "Ø"
	}
	return key
}

func renderComponentsBox(d card.Description) string {
	if !d.Decomposed || len(d.Decomposition.Components) == 0 {
		return boxStyle.Render(subtitleStyle.Render("Components") + "\n\n" + helpStyle.Render(d.Hint()))
	}

	var lines []string
	for _, c := range d.Decomposition.Components {
		meaning := c.Meaning
		if meaning == "" {
			meaning = "(unknown)"
		}
		lines = append(lines, fmt.Sprintf("  %s → %s", componentStyle.Render(c.Char), valueStyle.Render(meaning)))
	}
	lines = append(lines, "", helpStyle.Render("Structure: "+d.Decomposition.String()))
	return boxStyle.Render(subtitleStyle.Render("Components") + "\n\n" + strings.Join(lines, "\n"))
}

func (m Model) renderStory() string {
	switch {
	case m.drafting:
		return "\n" + loadingStyle.Render("Drafting story for "+m.word+"...") + "\n"
	case m.draftErr != nil:
		return "\n" + errorStyle.Render("Error: "+m.draftErr.Error()) + "\n"
	case m.record == nil:
		return ""
	}

	width := min(70, m.contentWidth()-6)
	header := actorStyle.Render("Story")
	if m.status != "" {
		header += "  " + statusStyle.Render(m.status)
	}
	return storyStyle.Width(width).Render(header + "\n\n" + wordWrap(m.record.Story, width-6))
}

func wordWrap(s string, width int) string {
	if width <= 0 {
		width = 60
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		if lineWidth+w+1 > width && lineWidth > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(" ")
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
