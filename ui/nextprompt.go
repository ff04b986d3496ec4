package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// NextPrompt asks whether to continue with the next episode after
// playback ends. When autoplay is enabled it counts down and answers
// yes on its own.
type NextPrompt struct {
	styles        Styles
	help          help.Model
	title         string
	countdown     int // seconds until autoplay, 0 when disabled
	selected      int // 0 = yes, 1 = no
	universalKeys UniversalKeys
}

// NextPromptMsg is sent when the user (or the countdown) decides
type NextPromptMsg struct {
	PlayNext bool
}

// nextCountdownMsg ticks the autoplay countdown once a second
type nextCountdownMsg struct{}

// NewNextPrompt creates the prompt. countdown of 0 disables autoplay.
func NewNextPrompt(title string, countdown int) *NextPrompt {
	m := &NextPrompt{
		styles:        DefaultStyles(),
		help:          help.New(),
		title:         title,
		countdown:     countdown,
		universalKeys: DefaultUniversalKeys(),
	}
	m.help.ShowAll = false
	return m
}

func (m *NextPrompt) Init() tea.Cmd {
	if m.countdown > 0 {
		return tickCountdown()
	}
	return nil
}

func tickCountdown() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return nextCountdownMsg{}
	})
}

func (m *NextPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.universalKeys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.universalKeys.Quit):
			return m, func() tea.Msg { return NextPromptMsg{PlayNext: false} }
		}

		switch msg.String() {
		case "up", "k", "left", "h":
			m.selected = 0
			m.countdown = 0
		case "down", "j", "right", "l":
			m.selected = 1
			m.countdown = 0
		case "enter":
			return m, func() tea.Msg {
				return NextPromptMsg{PlayNext: m.selected == 0}
			}
		case "y", "Y":
			return m, func() tea.Msg { return NextPromptMsg{PlayNext: true} }
		case "n", "N", "esc":
			return m, func() tea.Msg { return NextPromptMsg{PlayNext: false} }
		}

	case nextCountdownMsg:
		if m.countdown <= 0 {
			return m, nil
		}
		m.countdown--
		if m.countdown == 0 {
			return m, func() tea.Msg { return NextPromptMsg{PlayNext: true} }
		}
		return m, tickCountdown()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}

	return m, nil
}

func (m *NextPrompt) View() string {
	s := "\n"
	s += m.styles.Title.Render(fmt.Sprintf("Continue watching %s?", m.title)) + "\n\n"

	if m.countdown > 0 {
		s += m.styles.Info.Render(fmt.Sprintf("Next episode in %d...", m.countdown)) + "\n\n"
	}

	yesStyle := m.styles.MenuItem
	noStyle := m.styles.MenuItem
	if m.selected == 0 {
		yesStyle = m.styles.SelectedItem
	} else {
		noStyle = m.styles.SelectedItem
	}

	s += yesStyle.Render("  Yes - Play next episode") + "\n"
	s += noStyle.Render("  No  - Quit") + "\n\n"

	helpKeys := nextPromptKeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "quit"),
		),
	}

	extendedKeys := ExtendedKeyMap{
		Universal: m.universalKeys,
		ViewKeys:  helpKeys.ShortHelp(),
		ViewFull:  helpKeys.FullHelp(),
	}

	s += "\n" + m.help.View(extendedKeys)
	return s
}

type nextPromptKeyMap struct {
	Enter key.Binding
	Yes   key.Binding
	No    key.Binding
	Back  key.Binding
}

func (k nextPromptKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No, k.Enter, k.Back}
}

func (k nextPromptKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Yes, k.No},
		{k.Back},
	}
}
