package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// UniversalKeys defines keybindings available in all views
type UniversalKeys struct {
	Help key.Binding
	Quit key.Binding
}

// DefaultUniversalKeys returns the default universal keybindings
func DefaultUniversalKeys() UniversalKeys {
	return UniversalKeys{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// PlaybackKeys defines the transport keybindings of the playback view
type PlaybackKeys struct {
	TogglePlay  key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Mute        key.Binding
	Fullscreen  key.Binding
	Pin         key.Binding
	Captions    key.Binding
	Variant     key.Binding
	Settings    key.Binding
	NextEpisode key.Binding
}

// DefaultPlaybackKeys returns the transport keybindings. seekStep is
// the configured arrow-key step in seconds; the help labels reflect it.
func DefaultPlaybackKeys(seekStep float64) PlaybackKeys {
	return PlaybackKeys{
		TogglePlay: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", fmt.Sprintf("seek -%gs", seekStep)),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", fmt.Sprintf("seek +%gs", seekStep)),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "volume up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "volume down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin window"),
		),
		Captions: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "captions"),
		),
		Variant: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "quality"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		NextEpisode: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next episode"),
		),
	}
}

func (k PlaybackKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePlay, k.SeekBack, k.SeekForward, k.Settings}
}

func (k PlaybackKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.TogglePlay, k.SeekBack, k.SeekForward},
		{k.VolumeUp, k.VolumeDown, k.Mute},
		{k.Fullscreen, k.Pin, k.Captions},
		{k.Variant, k.Settings, k.NextEpisode},
	}
}

// ExtendedKeyMap wraps a view-specific keymap with universal keys
type ExtendedKeyMap struct {
	Universal UniversalKeys
	ViewKeys  []key.Binding
	ViewFull  [][]key.Binding
}

func (k ExtendedKeyMap) ShortHelp() []key.Binding {
	return append(k.ViewKeys, k.Universal.Help, k.Universal.Quit)
}

func (k ExtendedKeyMap) FullHelp() [][]key.Binding {
	full := make([][]key.Binding, len(k.ViewFull))
	copy(full, k.ViewFull)
	full = append(full, []key.Binding{k.Universal.Help, k.Universal.Quit})
	return full
}
