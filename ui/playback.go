package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harunobu/miru/player"
)

// controlsHideDelay is how long the controls bar stays up after the
// last interaction
const controlsHideDelay = 3 * time.Second

// PlaybackOptions tunes the playback view
type PlaybackOptions struct {
	SeekStep      float64 // seconds per arrow-key seek
	External      bool    // player offers no transport channel, controls disabled
	NextCountdown int     // autoplay countdown seconds, 0 to disable
}

// playerEventMsg wraps one controller event for the update loop
type playerEventMsg struct {
	ev player.Event
}

// eventsClosedMsg is sent when the controller event stream ends
type eventsClosedMsg struct{}

// hideControlsMsg hides the controls bar; seq guards against stale
// timers after later interactions
type hideControlsMsg struct {
	seq int
}

// PlaybackView is the top-level model while something is playing. It
// pumps controller events into the session and renders the transport
// surface over the session snapshot.
type PlaybackView struct {
	session *player.Session
	events  <-chan player.Event
	opts    PlaybackOptions

	styles        Styles
	controls      ControlsBar
	help          help.Model
	keys          PlaybackKeys
	universalKeys UniversalKeys

	width  int
	height int

	controlsVisible bool
	hideSeq         int

	settings     SettingsMenu
	settingsOpen bool

	nextPrompt *NextPrompt
	playNext   bool
}

// NewPlaybackView creates the playback view over a started session.
// events is the controller's event stream.
func NewPlaybackView(session *player.Session, events <-chan player.Event, opts PlaybackOptions) *PlaybackView {
	if opts.SeekStep <= 0 {
		opts.SeekStep = 10
	}
	styles := DefaultStyles()
	m := &PlaybackView{
		session:         session,
		events:          events,
		opts:            opts,
		styles:          styles,
		controls:        NewControlsBar(styles),
		help:            help.New(),
		keys:            DefaultPlaybackKeys(opts.SeekStep),
		universalKeys:   DefaultUniversalKeys(),
		controlsVisible: true,
		settings:        NewSettingsMenu(session, styles),
	}
	m.help.ShowAll = false
	return m
}

// PlayNext reports whether the user chose to continue with the next
// episode when the view quit
func (m *PlaybackView) PlayNext() bool {
	return m.playNext
}

func (m *PlaybackView) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.scheduleHide())
}

// waitForEvent blocks on the controller event stream
func (m *PlaybackView) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return playerEventMsg{ev: ev}
	}
}

// scheduleHide arms the auto-hide timer for the current interaction
func (m *PlaybackView) scheduleHide() tea.Cmd {
	m.hideSeq++
	seq := m.hideSeq
	return tea.Tick(controlsHideDelay, func(time.Time) tea.Msg {
		return hideControlsMsg{seq: seq}
	})
}

func (m *PlaybackView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.controls.SetWidth(msg.Width)
		return m, nil

	case playerEventMsg:
		m.session.HandleEvent(msg.ev)
		cmds := []tea.Cmd{m.waitForEvent()}

		// Playback state changes reset the auto-hide debounce just like
		// key input does, so an armed timer never hides the controls
		// across them
		switch msg.ev.Kind {
		case player.EventPosition, player.EventPause, player.EventFileLoaded:
			m.controlsVisible = true
			cmds = append(cmds, m.scheduleHide())
		}

		if m.session.State().Phase == player.PhaseEnded && m.nextPrompt == nil {
			cmds = append(cmds, m.enterEndedState())
		}
		return m, tea.Batch(cmds...)

	case eventsClosedMsg:
		return m, tea.Quit

	case hideControlsMsg:
		if msg.seq == m.hideSeq {
			m.controlsVisible = false
		}
		return m, nil

	case NextPromptMsg:
		m.playNext = msg.PlayNext
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Countdown ticks and anything else belong to the prompt
	if m.nextPrompt != nil {
		_, cmd := m.nextPrompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// enterEndedState hands the screen to the next-episode prompt, or quits
// when there is nothing to continue to
func (m *PlaybackView) enterEndedState() tea.Cmd {
	if !m.session.State().NextPromptVisible {
		return tea.Quit
	}
	m.settingsOpen = false
	m.nextPrompt = NewNextPrompt(m.session.Title(), m.opts.NextCountdown)
	return m.nextPrompt.Init()
}

func (m *PlaybackView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.nextPrompt != nil {
		_, cmd := m.nextPrompt.Update(msg)
		return m, cmd
	}

	// Any key counts as interaction and revives the controls bar
	m.controlsVisible = true
	hideCmd := m.scheduleHide()

	if m.settingsOpen {
		if m.settings.Update(msg) {
			m.settingsOpen = false
		}
		return m, hideCmd
	}

	switch {
	case key.Matches(msg, m.universalKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, hideCmd

	case key.Matches(msg, m.universalKeys.Quit):
		return m, tea.Quit
	}

	if m.opts.External {
		// No transport channel; only quit and help work
		return m, hideCmd
	}

	switch {
	case key.Matches(msg, m.keys.TogglePlay):
		m.session.TogglePlay()

	case key.Matches(msg, m.keys.SeekBack):
		m.session.SeekBy(-m.opts.SeekStep)

	case key.Matches(msg, m.keys.SeekForward):
		m.session.SeekBy(m.opts.SeekStep)

	case key.Matches(msg, m.keys.VolumeUp):
		m.session.AdjustVolume(0.05)

	case key.Matches(msg, m.keys.VolumeDown):
		m.session.AdjustVolume(-0.05)

	case key.Matches(msg, m.keys.Mute):
		m.session.ToggleMute()

	case key.Matches(msg, m.keys.Fullscreen):
		m.session.ToggleFullscreen()

	case key.Matches(msg, m.keys.Pin):
		m.session.TogglePinned()

	case key.Matches(msg, m.keys.Captions):
		m.session.CycleCaption()

	case key.Matches(msg, m.keys.Variant):
		m.cycleVariant()

	case key.Matches(msg, m.keys.Settings):
		m.settingsOpen = true

	case key.Matches(msg, m.keys.NextEpisode):
		if m.session.State().NextPromptVisible {
			m.playNext = true
			return m, tea.Quit
		}
	}

	return m, hideCmd
}

// cycleVariant steps to the next quality rendition
func (m *PlaybackView) cycleVariant() {
	variants := m.session.Variants()
	if len(variants) == 0 {
		return
	}
	active := m.session.State().ActiveVariant
	next := 0
	for i, v := range variants {
		if v.Label == active {
			next = (i + 1) % len(variants)
			break
		}
	}
	m.session.SelectVariant(variants[next].Label)
}

func (m *PlaybackView) View() string {
	st := m.session.State()

	if m.nextPrompt != nil {
		return m.nextPrompt.View()
	}

	var s string
	s += m.styles.MediaTitle.Render(m.session.Title()) + "\n\n"

	switch st.Phase {
	case player.PhaseLoading, player.PhaseIdle:
		s += m.styles.Info.Render("Loading...") + "\n"

	case player.PhaseFailed:
		s += m.styles.Error.Render("Playback failed") + "\n"
		if st.LoadError != nil {
			s += m.styles.Help.Render(st.LoadError.Error()) + "\n"
		}
		s += "\n" + m.styles.Help.Render("q quit")
		return s

	default:
		if m.opts.External {
			s += m.styles.Info.Render("Playing in an external player") + "\n"
			s += m.styles.Help.Render("transport controls are not available for this source") + "\n"
		} else {
			status := "Paused"
			if st.Playing {
				status = "Playing"
			}
			if st.Phase == player.PhaseEnded {
				status = "Ended"
			}
			s += m.styles.Subtitle.Render(status) + "\n"
		}
	}

	if m.settingsOpen {
		s += "\n" + m.settings.View()
		return s
	}

	if !m.opts.External && m.controlsVisible {
		s += "\n" + m.controls.View(st, st.NextPromptVisible)
	}

	extendedKeys := ExtendedKeyMap{
		Universal: m.universalKeys,
		ViewKeys:  m.keys.ShortHelp(),
		ViewFull:  m.keys.FullHelp(),
	}
	s += "\n\n" + m.help.View(extendedKeys)

	if m.height > 0 {
		return lipgloss.NewStyle().MaxHeight(m.height).Render(s)
	}
	return s
}
