package player

import (
	"context"

	"github.com/harunobu/miru/logger"
	"github.com/harunobu/miru/persist"
)

// Phase is the coarse lifecycle state of a playback session
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseEnded
	PhaseFailed
)

// String returns a human-readable label for the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseEnded:
		return "ended"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Rates is the fixed set of selectable playback rates
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// validRate reports whether r is one of the selectable rates
func validRate(r float64) bool {
	for _, v := range Rates {
		if v == r {
			return true
		}
	}
	return false
}

// State is a snapshot of session state for rendering. Invariants:
// Position stays within [0, Duration] once Duration is known, Volume
// within [0,1], Rate within the Rates set.
type State struct {
	Phase             Phase
	Playing           bool
	Position          float64
	Duration          float64
	Volume            float64
	Muted             bool
	Rate              float64
	ActiveCaption     string // lang, "" when captions are off
	ActiveVariant     string // variant label, "" for the original source
	Pinned            bool
	SubtitleStyle     SubtitleStyle
	NextPromptVisible bool
	LoadError         error
}

// Config describes one playback session
type Config struct {
	Source            string
	Title             string
	MediaKey          string
	Variants          []SourceVariant
	Captions          []CaptionTrack
	AutoPlay          bool
	Resume            bool
	DefaultRate       float64
	AutoNextThreshold float64
	NextAvailable     bool
	SubtitleStyle     SubtitleStyle
	PreferredCaption  string
}

// Session coordinates a Controller, UI intents and the persistence store.
// It is single-threaded by design: the UI loop calls intent methods and
// feeds controller events through HandleEvent, so no locking is needed.
type Session struct {
	ctrl  Controller
	store *persist.Store
	cfg   Config

	state     State
	subIDs    map[string]int
	loadedURL string

	// applied when the next file-loaded event arrives
	pendingSeek float64
	pendingRate float64
	resumePlay  bool
	firstLoad   bool
}

// NewSession creates a session over ctrl. store may be nil to disable
// persistence entirely.
func NewSession(ctrl Controller, store *persist.Store, cfg Config) *Session {
	if cfg.AutoNextThreshold <= 0 {
		cfg.AutoNextThreshold = 25
	}
	pendingRate := 0.0
	if cfg.DefaultRate != 0 && cfg.DefaultRate != 1 && validRate(cfg.DefaultRate) {
		pendingRate = cfg.DefaultRate
	}
	return &Session{
		ctrl:  ctrl,
		store: store,
		cfg:   cfg,
		state: State{
			Phase:         PhaseIdle,
			Volume:        1,
			Rate:          1,
			SubtitleStyle: cfg.SubtitleStyle,
		},
		subIDs:      make(map[string]int),
		pendingSeek: -1,
		pendingRate: pendingRate,
		firstLoad:   true,
	}
}

// State returns a snapshot for rendering
func (s *Session) State() State {
	return s.state
}

// Title returns the session display title
func (s *Session) Title() string {
	return s.cfg.Title
}

// Variants returns the selectable quality variants
func (s *Session) Variants() []SourceVariant {
	return s.cfg.Variants
}

// Captions returns the available caption tracks
func (s *Session) Captions() []CaptionTrack {
	return s.cfg.Captions
}

// Start loads the session source. Calling it again for the same URL is a
// no-op so remounts do not restart playback.
func (s *Session) Start(ctx context.Context) {
	if s.loadedURL == s.cfg.Source {
		return
	}

	if s.cfg.Resume && s.store != nil {
		if rec, ok := s.store.Restore(s.cfg.MediaKey); ok {
			s.pendingSeek = rec.Position
			if validRate(rec.Rate) {
				s.pendingRate = rec.Rate
			}
			logger.Info("Restored playback position", logger.Fields{
				"mediaKey": s.cfg.MediaKey,
				"position": rec.Position,
				"rate":     rec.Rate,
			})
		}
	}

	s.state.Phase = PhaseLoading
	s.loadedURL = s.cfg.Source
	if err := s.ctrl.Load(ctx, s.cfg.Source); err != nil {
		// Load failures never propagate; the session parks in a failed
		// state the UI can surface
		logger.Error("Failed to load source", err, logger.Fields{
			"source": s.cfg.Source,
		})
		s.state.Phase = PhaseFailed
		s.state.LoadError = err
	}
}

// HandleEvent mirrors a controller event into session state. Safe to call
// with events that arrive after Close; they only mutate the snapshot.
func (s *Session) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventFileLoaded:
		s.onFileLoaded()
	case EventPosition:
		s.state.Position = clamp(ev.Position, 0, s.maxPosition())
		s.recomputeNextPrompt()
		s.persistNow()
	case EventDuration:
		s.state.Duration = ev.Duration
		s.state.Position = clamp(s.state.Position, 0, s.maxPosition())
		s.recomputeNextPrompt()
	case EventPause:
		s.state.Playing = !ev.Paused
	case EventRate:
		if ev.Rate > 0 {
			s.state.Rate = ev.Rate
			s.persistNow()
		}
	case EventVolume:
		s.state.Volume = clamp(ev.Volume, 0, 1)
	case EventMute:
		s.state.Muted = ev.Muted
	case EventEnded:
		s.state.Phase = PhaseEnded
		s.state.Playing = false
		if s.state.Duration > 0 {
			s.state.Position = s.state.Duration
		}
		s.recomputeNextPrompt()
	case EventLoadFailed:
		logger.Error("Source failed to load", ev.Err, logger.Fields{
			"source": s.cfg.Source,
		})
		s.state.Phase = PhaseFailed
		s.state.Playing = false
		s.state.LoadError = ev.Err
	case EventClosed:
		s.state.Playing = false
	}
}

// onFileLoaded finishes a load: captions are registered fresh (a source
// swap drops previously added tracks), then the deferred seek, rate and
// play state are applied.
func (s *Session) onFileLoaded() {
	s.state.Phase = PhaseReady
	s.state.LoadError = nil

	s.subIDs = make(map[string]int)
	for _, track := range s.cfg.Captions {
		id, err := s.ctrl.AddSubtitle(track.URL, track.Label, track.Lang)
		if err != nil {
			logger.Warn("Failed to add caption track", logger.Fields{
				"lang":  track.Lang,
				"error": err.Error(),
			})
			continue
		}
		s.subIDs[track.Lang] = id
	}

	if err := s.ctrl.SetSubtitleStyle(s.state.SubtitleStyle); err != nil {
		logger.Warn("Failed to apply subtitle style", logger.Fields{"error": err.Error()})
	}

	if s.firstLoad {
		s.firstLoad = false
		s.SelectCaption(s.initialCaption())
	} else if s.state.ActiveCaption != "" {
		// Re-select across a variant swap
		lang := s.state.ActiveCaption
		s.state.ActiveCaption = ""
		s.SelectCaption(lang)
	}

	if s.pendingRate > 0 {
		if err := s.ctrl.SetRate(s.pendingRate); err == nil {
			s.state.Rate = s.pendingRate
		}
		s.pendingRate = 0
	}

	if s.pendingSeek >= 0 {
		s.Seek(s.pendingSeek)
		s.pendingSeek = -1
	}

	if s.resumePlay {
		s.resumePlay = false
		if err := s.ctrl.SetPaused(false); err == nil {
			s.state.Playing = true
		}
	} else if s.cfg.AutoPlay {
		if err := s.ctrl.SetPaused(false); err == nil {
			s.state.Playing = true
		}
	}
}

// initialCaption picks the default track: an explicit default wins, then
// the preferred language, else captions start off
func (s *Session) initialCaption() string {
	for _, track := range s.cfg.Captions {
		if track.Default {
			return track.Lang
		}
	}
	if s.cfg.PreferredCaption != "" {
		if _, ok := s.subIDs[s.cfg.PreferredCaption]; ok {
			return s.cfg.PreferredCaption
		}
	}
	return ""
}

// TogglePlay flips between playing and paused. Toggling twice in
// immediate succession lands back on the original state.
func (s *Session) TogglePlay() {
	if s.state.Phase == PhaseFailed || s.state.Phase == PhaseIdle {
		return
	}

	playing := !s.state.Playing
	if err := s.ctrl.SetPaused(!playing); err != nil {
		logger.Warn("Play/pause command failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.Playing = playing
	if playing && s.state.Phase == PhaseEnded {
		s.state.Phase = PhaseReady
	}
}

// Seek jumps to an absolute position, clamped to [0, duration]. Seeking
// is legal while paused.
func (s *Session) Seek(t float64) {
	t = clamp(t, 0, s.maxPosition())
	if err := s.ctrl.Seek(t); err != nil {
		logger.Warn("Seek command failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.Position = t
	s.recomputeNextPrompt()
	s.persistNow()
}

// SeekBy seeks relative to the current position
func (s *Session) SeekBy(delta float64) {
	s.Seek(s.state.Position + delta)
}

// SetVolume sets volume clamped to [0,1]. Raising volume above zero while
// muted un-mutes; muting and zero volume are otherwise independent.
func (s *Session) SetVolume(v float64) {
	v = clamp(v, 0, 1)
	if err := s.ctrl.SetVolume(v); err != nil {
		logger.Warn("Volume command failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.Volume = v

	if v > 0 && s.state.Muted {
		if err := s.ctrl.SetMuted(false); err == nil {
			s.state.Muted = false
		}
	}
}

// AdjustVolume changes volume by delta
func (s *Session) AdjustVolume(delta float64) {
	s.SetVolume(s.state.Volume + delta)
}

// ToggleMute flips the muted flag without touching volume
func (s *Session) ToggleMute() {
	muted := !s.state.Muted
	if err := s.ctrl.SetMuted(muted); err != nil {
		logger.Warn("Mute command failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.Muted = muted
}

// SetRate applies one of the fixed playback rates; anything else is
// ignored
func (s *Session) SetRate(r float64) {
	if !validRate(r) {
		return
	}
	if err := s.ctrl.SetRate(r); err != nil {
		logger.Warn("Rate command failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.Rate = r
	s.persistNow()
}

// SelectCaption shows the track for lang, or hides captions for "".
// Exactly one track is showing afterwards, or none. An unknown lang is a
// no-op, not an error.
func (s *Session) SelectCaption(lang string) {
	if lang == "" {
		if err := s.ctrl.DisableSubtitles(); err != nil {
			logger.Warn("Caption disable failed", logger.Fields{"error": err.Error()})
			return
		}
		s.state.ActiveCaption = ""
		return
	}

	id, ok := s.subIDs[lang]
	if !ok {
		return
	}
	if err := s.ctrl.SelectSubtitle(id); err != nil {
		logger.Warn("Caption select failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.ActiveCaption = lang
}

// CycleCaption steps through the caption tracks and then off
func (s *Session) CycleCaption() {
	if len(s.cfg.Captions) == 0 {
		return
	}

	if s.state.ActiveCaption == "" {
		s.SelectCaption(s.cfg.Captions[0].Lang)
		return
	}
	for i, track := range s.cfg.Captions {
		if track.Lang == s.state.ActiveCaption {
			if i+1 < len(s.cfg.Captions) {
				s.SelectCaption(s.cfg.Captions[i+1].Lang)
			} else {
				s.SelectCaption("")
			}
			return
		}
	}
	s.SelectCaption("")
}

// SelectVariant re-points playback at another quality rendition. The
// current position is captured before the swap and restored once the new
// source loads; a playing session resumes playing.
func (s *Session) SelectVariant(label string) {
	if label == s.state.ActiveVariant {
		return
	}

	var url string
	for _, v := range s.cfg.Variants {
		if v.Label == label {
			url = v.URL
			break
		}
	}
	if url == "" {
		return
	}

	s.pendingSeek = s.state.Position
	s.resumePlay = s.state.Playing

	if err := s.ctrl.Load(context.Background(), url); err != nil {
		logger.Error("Variant swap failed", err, logger.Fields{
			"variant": label,
		})
		s.pendingSeek = -1
		s.resumePlay = false
		return
	}

	s.state.ActiveVariant = label
	s.state.Phase = PhaseLoading
	s.loadedURL = url

	logger.Info("Variant selected", logger.Fields{
		"variant":  label,
		"position": s.pendingSeek,
	})
}

// SetSubtitleStyle replaces the subtitle style as a whole
func (s *Session) SetSubtitleStyle(style SubtitleStyle) {
	if err := s.ctrl.SetSubtitleStyle(style); err != nil {
		logger.Warn("Subtitle style failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.SubtitleStyle = style
}

// ToggleFullscreen toggles the player window fullscreen state
func (s *Session) ToggleFullscreen() {
	if err := s.ctrl.ToggleFullscreen(); err != nil {
		logger.Warn("Fullscreen toggle failed", logger.Fields{"error": err.Error()})
	}
}

// TogglePinned toggles the picture-in-picture stand-in window
func (s *Session) TogglePinned() {
	pinned := !s.state.Pinned
	if err := s.ctrl.SetPinned(pinned); err != nil {
		logger.Warn("Pin toggle failed", logger.Fields{"error": err.Error()})
		return
	}
	s.state.Pinned = pinned
}

// Close persists the final position and shuts the controller down
func (s *Session) Close() {
	s.persistNow()
	if s.store != nil {
		s.store.Flush()
	}
	if err := s.ctrl.Close(); err != nil {
		logger.Warn("Player close failed", logger.Fields{"error": err.Error()})
	}
}

// recomputeNextPrompt re-derives the auto-next affordance from current
// state. The prompt is a pure function of remaining time: it appears when
// remaining drops to the threshold and disappears again if a backward
// seek grows the remaining time.
func (s *Session) recomputeNextPrompt() {
	s.state.NextPromptVisible = s.cfg.NextAvailable &&
		s.state.Duration > 0 &&
		s.state.Duration-s.state.Position <= s.cfg.AutoNextThreshold
}

func (s *Session) persistNow() {
	if s.store == nil || s.cfg.MediaKey == "" {
		return
	}
	s.store.Save(s.cfg.MediaKey, s.state.Position, s.state.Rate)
}

// maxPosition is the seek upper bound; unknown duration only bounds below
func (s *Session) maxPosition() float64 {
	if s.state.Duration > 0 {
		return s.state.Duration
	}
	return maxSeekUnknown
}

// Effectively unbounded; used while duration is still unknown
const maxSeekUnknown = 1 << 30

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
