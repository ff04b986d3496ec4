// Package player contains the playback core: the Controller abstraction
// over an external player process and the Session state machine that
// coordinates transport intents, media events and persistence.
package player

import "context"

// SourceVariant is an alternate-quality rendition of the same content
type SourceVariant struct {
	Label string
	URL   string
}

// CaptionTrack references an external subtitle file
type CaptionTrack struct {
	Label   string
	URL     string
	Lang    string
	Default bool
}

// SubtitleStyle is the subtitle rendering configuration. It is always
// replaced as a whole; callers merge before applying.
type SubtitleStyle struct {
	FontSize   int
	Color      string
	Background bool
}

// EventKind discriminates Controller events
type EventKind int

const (
	// EventFileLoaded fires once the player has opened a source and its
	// metadata (duration, tracks) is available
	EventFileLoaded EventKind = iota
	// EventPosition reports playback position in seconds
	EventPosition
	// EventDuration reports total duration in seconds
	EventDuration
	// EventPause reports the paused flag
	EventPause
	// EventRate reports the playback rate
	EventRate
	// EventVolume reports volume in [0,1]
	EventVolume
	// EventMute reports the muted flag
	EventMute
	// EventEnded fires when playback reaches end of file
	EventEnded
	// EventLoadFailed fires when the player could not open the source
	EventLoadFailed
	// EventClosed fires when the player process exits
	EventClosed
)

// Event is a playback runtime notification mirrored into Session state
type Event struct {
	Kind     EventKind
	Position float64
	Duration float64
	Paused   bool
	Rate     float64
	Volume   float64
	Muted    bool
	Err      error
}

// Controller is the transport surface of an external player process.
// All methods are safe to call from the UI loop; command failures are
// returned so the Session can log and swallow them.
type Controller interface {
	// Load opens a source URL, replacing whatever is playing
	Load(ctx context.Context, url string) error

	// SetPaused pauses or resumes playback
	SetPaused(paused bool) error

	// Seek jumps to an absolute position in seconds
	Seek(seconds float64) error

	// SetVolume sets volume in [0,1]
	SetVolume(v float64) error

	// SetMuted sets the muted flag
	SetMuted(muted bool) error

	// SetRate sets the playback rate
	SetRate(rate float64) error

	// AddSubtitle registers an external subtitle file and returns its
	// track id for later selection
	AddSubtitle(url, label, lang string) (int, error)

	// SelectSubtitle shows exactly the given track; every other track is
	// disabled by the player
	SelectSubtitle(id int) error

	// DisableSubtitles hides all subtitle tracks
	DisableSubtitles() error

	// SetSubtitleStyle applies subtitle rendering configuration
	SetSubtitleStyle(style SubtitleStyle) error

	// ToggleFullscreen toggles the player window fullscreen state
	ToggleFullscreen() error

	// SetPinned toggles the small always-on-top window used as a
	// picture-in-picture stand-in
	SetPinned(pinned bool) error

	// Events returns the stream of playback notifications. The channel
	// is closed when the player process exits.
	Events() <-chan Event

	// Close shuts the player process down and releases the IPC socket
	Close() error
}
