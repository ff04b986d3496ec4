package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harunobu/miru/player"
)

// settingsRow identifies one adjustable row in the settings overlay
type settingsRow int

const (
	rowSpeed settingsRow = iota
	rowVariant
	rowCaptions
	rowSubFontSize
	rowSubColor
	rowSubBackground
	rowCount
)

var subtitleColors = []string{"#FFFFFF", "#FFFF00", "#00FF00", "#00FFFF"}

// SettingsMenu is the in-playback settings overlay. It reads and
// mutates the session directly; every change is applied immediately.
type SettingsMenu struct {
	session *player.Session
	styles  Styles
	cursor  settingsRow
}

// NewSettingsMenu creates the settings overlay for a session
func NewSettingsMenu(session *player.Session, styles Styles) SettingsMenu {
	return SettingsMenu{session: session, styles: styles}
}

// Update handles a key press while the overlay is open. It returns
// true when the overlay should close.
func (m *SettingsMenu) Update(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "esc", "q", "s", "backspace":
		return true

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < rowCount-1 {
			m.cursor++
		}

	case "left", "h":
		m.adjust(-1)

	case "right", "l", "enter":
		m.adjust(1)
	}
	return false
}

// adjust moves the selected row's value by one step in the given
// direction
func (m *SettingsMenu) adjust(dir int) {
	st := m.session.State()

	switch m.cursor {
	case rowSpeed:
		idx := rateIndex(st.Rate)
		idx = wrap(idx+dir, len(player.Rates))
		m.session.SetRate(player.Rates[idx])

	case rowVariant:
		variants := m.session.Variants()
		if len(variants) < 2 {
			return
		}
		idx := 0
		for i, v := range variants {
			if v.Label == st.ActiveVariant {
				idx = i
				break
			}
		}
		idx = wrap(idx+dir, len(variants))
		m.session.SelectVariant(variants[idx].Label)

	case rowCaptions:
		if dir > 0 {
			m.session.CycleCaption()
		} else {
			m.session.SelectCaption("")
		}

	case rowSubFontSize:
		style := st.SubtitleStyle
		style.FontSize += dir * 2
		if style.FontSize < 10 {
			style.FontSize = 10
		}
		if style.FontSize > 60 {
			style.FontSize = 60
		}
		m.session.SetSubtitleStyle(style)

	case rowSubColor:
		style := st.SubtitleStyle
		idx := 0
		for i, c := range subtitleColors {
			if c == style.Color {
				idx = i
				break
			}
		}
		style.Color = subtitleColors[wrap(idx+dir, len(subtitleColors))]
		m.session.SetSubtitleStyle(style)

	case rowSubBackground:
		style := st.SubtitleStyle
		style.Background = !style.Background
		m.session.SetSubtitleStyle(style)
	}
}

// View renders the overlay
func (m SettingsMenu) View() string {
	st := m.session.State()

	caption := st.ActiveCaption
	if caption == "" {
		caption = "off"
	}
	variant := st.ActiveVariant
	if variant == "" {
		variant = "default"
	}
	background := "OFF"
	if st.SubtitleStyle.Background {
		background = "ON"
	}

	rows := []struct {
		name  string
		value string
	}{
		{"Speed", fmt.Sprintf("%gx", st.Rate)},
		{"Quality", variant},
		{"Captions", caption},
		{"Subtitle Size", fmt.Sprintf("%d", st.SubtitleStyle.FontSize)},
		{"Subtitle Color", st.SubtitleStyle.Color},
		{"Subtitle Background", fmt.Sprintf("[%s]", background)},
	}

	s := m.styles.Title.Render("Settings") + "\n\n"
	for i, row := range rows {
		display := fmt.Sprintf("%s: %s", row.name, row.value)
		if settingsRow(i) == m.cursor {
			s += m.styles.SelectedItem.Render("> "+display) + "\n"
		} else {
			s += m.styles.MenuItem.Render("  "+display) + "\n"
		}
	}
	s += "\n" + m.styles.Help.Render("↑/↓ select · ←/→ adjust · esc close")
	return s
}

// rateIndex finds the closest supported rate index
func rateIndex(rate float64) int {
	for i, r := range player.Rates {
		if r == rate {
			return i
		}
	}
	return 2 // 1x
}

func wrap(idx, n int) int {
	if n == 0 {
		return 0
	}
	return ((idx % n) + n) % n
}
