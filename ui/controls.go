package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/harunobu/miru/player"
)

// formatTime renders seconds as H:MM:SS when hours are present, else
// M:SS. Non-finite or negative input renders as 0:00.
func formatTime(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		return "0:00"
	}

	total := int(sec)
	s := total % 60
	m := (total / 60) % 60
	h := total / 3600

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ControlsBar renders the transport surface. It holds only the seek bar
// widget; everything it shows is derived from the session state passed
// to View.
type ControlsBar struct {
	styles  Styles
	seekBar progress.Model
	width   int
}

// NewControlsBar creates the controls bar
func NewControlsBar(styles Styles) ControlsBar {
	bar := progress.New(
		progress.WithSolidFill("#E06C75"),
		progress.WithoutPercentage(),
	)
	return ControlsBar{styles: styles, seekBar: bar}
}

// SetWidth adjusts the bar to the terminal width
func (c *ControlsBar) SetWidth(width int) {
	c.width = width
	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}
	c.seekBar.Width = barWidth
}

// View renders the controls for the given session state
func (c ControlsBar) View(st player.State, nextAvailable bool) string {
	var b strings.Builder

	percent := 0.0
	if st.Duration > 0 {
		percent = st.Position / st.Duration
	}
	b.WriteString("  " + c.seekBar.ViewAs(percent) + "\n")

	playIcon := "▶"
	if st.Playing {
		playIcon = "⏸"
	}

	times := c.styles.TimeDisplay.Render(
		fmt.Sprintf("%s / %s", formatTime(st.Position), formatTime(st.Duration)),
	)

	var indicators []string
	indicators = append(indicators, c.styles.Indicator.Render(playIcon))
	indicators = append(indicators, times)

	if st.Muted {
		indicators = append(indicators, c.styles.Indicator.Render("muted"))
	} else {
		indicators = append(indicators, c.styles.TimeDisplay.Render(fmt.Sprintf("vol %d%%", int(st.Volume*100+0.5))))
	}

	if st.Rate != 1 {
		indicators = append(indicators, c.styles.Indicator.Render(fmt.Sprintf("%gx", st.Rate)))
	}
	if st.ActiveCaption != "" {
		indicators = append(indicators, c.styles.Indicator.Render("cc:"+st.ActiveCaption))
	}
	if st.ActiveVariant != "" {
		indicators = append(indicators, c.styles.Indicator.Render(st.ActiveVariant))
	}
	if st.Pinned {
		indicators = append(indicators, c.styles.Indicator.Render("pinned"))
	}
	if nextAvailable && st.NextPromptVisible {
		indicators = append(indicators, c.styles.Success.Render("n: next episode"))
	}

	b.WriteString("  " + lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(indicators, " ")))
	return b.String()
}
