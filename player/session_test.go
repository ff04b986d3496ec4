package player

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harunobu/miru/persist"
)

// fakeController records transport calls so session behavior can be
// asserted without a player process.
type fakeController struct {
	loads       []string
	pauseCalls  []bool
	seeks       []float64
	volume      float64
	muted       bool
	rate        float64
	subs        []string // lang per added track, index = id-1
	selectedSub int      // 0 means no track showing
	style       SubtitleStyle
	fullscreen  int
	pinned      bool
	events      chan Event
	loadErr     error
}

func newFakeController() *fakeController {
	return &fakeController{events: make(chan Event, 16), volume: 1, rate: 1}
}

func (f *fakeController) Load(ctx context.Context, url string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads = append(f.loads, url)
	return nil
}

func (f *fakeController) SetPaused(paused bool) error {
	f.pauseCalls = append(f.pauseCalls, paused)
	return nil
}

func (f *fakeController) Seek(seconds float64) error {
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeController) SetVolume(v float64) error { f.volume = v; return nil }
func (f *fakeController) SetMuted(m bool) error     { f.muted = m; return nil }
func (f *fakeController) SetRate(r float64) error   { f.rate = r; return nil }

func (f *fakeController) AddSubtitle(url, label, lang string) (int, error) {
	f.subs = append(f.subs, lang)
	return len(f.subs), nil
}

func (f *fakeController) SelectSubtitle(id int) error { f.selectedSub = id; return nil }
func (f *fakeController) DisableSubtitles() error     { f.selectedSub = 0; return nil }

func (f *fakeController) SetSubtitleStyle(s SubtitleStyle) error { f.style = s; return nil }
func (f *fakeController) ToggleFullscreen() error                { f.fullscreen++; return nil }
func (f *fakeController) SetPinned(p bool) error                 { f.pinned = p; return nil }
func (f *fakeController) Events() <-chan Event                   { return f.events }
func (f *fakeController) Close() error                           { close(f.events); return nil }

func newTestSession(t *testing.T, ctrl Controller, cfg Config) *Session {
	t.Helper()
	if cfg.Source == "" {
		cfg.Source = "https://cdn.example.com/video.mp4"
	}
	return NewSession(ctrl, nil, cfg)
}

func loadSession(t *testing.T, s *Session) {
	t.Helper()
	s.Start(context.Background())
	s.HandleEvent(Event{Kind: EventFileLoaded})
}

func TestSeekClampsToDuration(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 120})

	s.Seek(500)
	if got := s.State().Position; got != 120 {
		t.Errorf("Seek(500) position = %v, want clamped 120", got)
	}
	if last := ctrl.seeks[len(ctrl.seeks)-1]; last != 120 {
		t.Errorf("controller received seek %v, want 120", last)
	}

	s.Seek(-5)
	if got := s.State().Position; got != 0 {
		t.Errorf("Seek(-5) position = %v, want clamped 0", got)
	}
}

func TestSeekLegalWhilePaused(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 100})
	s.HandleEvent(Event{Kind: EventPause, Paused: true})

	s.Seek(30)
	if got := s.State().Position; got != 30 {
		t.Errorf("paused seek position = %v, want 30", got)
	}
}

func TestVolumeAboveZeroUnmutes(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)

	s.ToggleMute()
	if !s.State().Muted {
		t.Fatal("ToggleMute() did not mute")
	}

	s.SetVolume(0.5)
	if s.State().Muted {
		t.Error("SetVolume(0.5) while muted must un-mute")
	}
	if ctrl.muted {
		t.Error("controller still muted after SetVolume(0.5)")
	}
}

func TestZeroVolumeKeepsMuteIndependent(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)

	s.SetVolume(0)
	if s.State().Muted {
		t.Error("SetVolume(0) must not mute")
	}

	s.ToggleMute()
	s.SetVolume(0)
	if !s.State().Muted {
		t.Error("SetVolume(0) while muted must not un-mute")
	}
}

func TestVolumeClamped(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)

	s.SetVolume(1.5)
	if got := s.State().Volume; got != 1 {
		t.Errorf("SetVolume(1.5) volume = %v, want 1", got)
	}
	s.SetVolume(-0.2)
	if got := s.State().Volume; got != 0 {
		t.Errorf("SetVolume(-0.2) volume = %v, want 0", got)
	}
}

func TestTogglePlayTwiceReturnsToOriginal(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)

	before := s.State().Playing
	s.TogglePlay()
	s.TogglePlay()
	if got := s.State().Playing; got != before {
		t.Errorf("two toggles ended on %v, want original %v", got, before)
	}
}

func TestCaptionExclusivity(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{
		Captions: []CaptionTrack{
			{Label: "English", Lang: "en", URL: "https://subs/en.vtt"},
			{Label: "French", Lang: "fr", URL: "https://subs/fr.vtt"},
		},
	})
	loadSession(t, s)

	s.SelectCaption("fr")
	if got := s.State().ActiveCaption; got != "fr" {
		t.Errorf("ActiveCaption = %q, want fr", got)
	}
	if ctrl.selectedSub != 2 {
		t.Errorf("showing track id = %d, want 2 (fr)", ctrl.selectedSub)
	}

	s.SelectCaption("en")
	if ctrl.selectedSub != 1 {
		t.Errorf("showing track id = %d, want 1 (en); only one track may show", ctrl.selectedSub)
	}

	s.SelectCaption("")
	if ctrl.selectedSub != 0 {
		t.Errorf("showing track id = %d after off, want 0", ctrl.selectedSub)
	}
	if got := s.State().ActiveCaption; got != "" {
		t.Errorf("ActiveCaption = %q after off, want empty", got)
	}
}

func TestUnknownCaptionIsNoop(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{
		Captions: []CaptionTrack{{Label: "English", Lang: "en", URL: "https://subs/en.vtt"}},
	})
	loadSession(t, s)
	s.SelectCaption("en")

	s.SelectCaption("zz")
	if got := s.State().ActiveCaption; got != "en" {
		t.Errorf("unknown lang changed ActiveCaption to %q, want en kept", got)
	}
	if ctrl.selectedSub != 1 {
		t.Errorf("unknown lang changed showing track to %d", ctrl.selectedSub)
	}
}

func TestDefaultCaptionSelectedOnLoad(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{
		Captions: []CaptionTrack{
			{Label: "English", Lang: "en", URL: "https://subs/en.vtt"},
			{Label: "German", Lang: "de", URL: "https://subs/de.vtt", Default: true},
		},
	})
	loadSession(t, s)

	if got := s.State().ActiveCaption; got != "de" {
		t.Errorf("ActiveCaption = %q after load, want default de", got)
	}
}

func TestAutoNextPromptScenario(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{
		AutoNextThreshold: 25,
		NextAvailable:     true,
	})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 120})

	s.HandleEvent(Event{Kind: EventPosition, Position: 94})
	if s.State().NextPromptVisible {
		t.Error("prompt visible at remaining=26, want hidden")
	}

	s.HandleEvent(Event{Kind: EventPosition, Position: 96.01})
	if !s.State().NextPromptVisible {
		t.Error("prompt hidden at remaining=23.99, want visible")
	}

	// Seeking backward grows remaining time past the threshold again
	s.HandleEvent(Event{Kind: EventPosition, Position: 90})
	if s.State().NextPromptVisible {
		t.Error("prompt still visible at remaining=30, want hidden")
	}
}

func TestAutoNextRequiresNextAvailable(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{AutoNextThreshold: 25})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 120})
	s.HandleEvent(Event{Kind: EventPosition, Position: 119})

	if s.State().NextPromptVisible {
		t.Error("prompt visible without a next episode")
	}
}

func TestVariantSwapRestoresPositionAndResumes(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{
		Variants: []SourceVariant{
			{Label: "1080p", URL: "https://cdn.example.com/v-1080.mp4"},
			{Label: "720p", URL: "https://cdn.example.com/v-720.mp4"},
		},
	})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 120})
	s.HandleEvent(Event{Kind: EventPosition, Position: 40})
	s.HandleEvent(Event{Kind: EventPause, Paused: false})

	s.SelectVariant("720p")
	if got := s.State().Phase; got != PhaseLoading {
		t.Errorf("phase = %v after swap, want loading", got)
	}
	if last := ctrl.loads[len(ctrl.loads)-1]; last != "https://cdn.example.com/v-720.mp4" {
		t.Errorf("loaded %q, want the 720p URL", last)
	}

	ctrl.seeks = nil
	ctrl.pauseCalls = nil
	s.HandleEvent(Event{Kind: EventFileLoaded})

	if len(ctrl.seeks) == 0 || ctrl.seeks[0] != 40 {
		t.Errorf("seeks after swap = %v, want restore to 40", ctrl.seeks)
	}
	if len(ctrl.pauseCalls) == 0 || ctrl.pauseCalls[0] != false {
		t.Errorf("pause calls after swap = %v, want resume (false)", ctrl.pauseCalls)
	}
	if got := s.State().ActiveVariant; got != "720p" {
		t.Errorf("ActiveVariant = %q, want 720p", got)
	}
}

func TestVariantUnknownLabelIsNoop(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{
		Variants: []SourceVariant{{Label: "720p", URL: "https://cdn.example.com/v-720.mp4"}},
	})
	loadSession(t, s)

	loads := len(ctrl.loads)
	s.SelectVariant("4K")
	if len(ctrl.loads) != loads {
		t.Error("unknown variant label triggered a load")
	}
}

func TestLoadFailureIsExposedNotThrown(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)

	s.HandleEvent(Event{Kind: EventLoadFailed, Err: context.DeadlineExceeded})
	st := s.State()
	if st.Phase != PhaseFailed {
		t.Errorf("phase = %v after load failure, want failed", st.Phase)
	}
	if st.LoadError == nil {
		t.Error("LoadError not exposed to the caller")
	}
}

func TestStartIsIdempotentForSameSource(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})

	s.Start(context.Background())
	s.Start(context.Background())
	if len(ctrl.loads) != 1 {
		t.Errorf("Start called twice loaded %d times, want 1", len(ctrl.loads))
	}
}

func TestInvalidRateIgnored(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{})
	loadSession(t, s)

	s.SetRate(1.25)
	s.SetRate(3.0)
	if got := s.State().Rate; got != 1.25 {
		t.Errorf("rate = %v after invalid SetRate, want 1.25 kept", got)
	}
}

func TestEndedPhaseAndPrompt(t *testing.T) {
	ctrl := newFakeController()
	s := newTestSession(t, ctrl, Config{AutoNextThreshold: 25, NextAvailable: true})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 120})
	s.HandleEvent(Event{Kind: EventEnded})

	st := s.State()
	if st.Phase != PhaseEnded {
		t.Errorf("phase = %v, want ended", st.Phase)
	}
	if st.Position != 120 {
		t.Errorf("position = %v at end, want duration", st.Position)
	}
	if !st.NextPromptVisible {
		t.Error("prompt hidden at end of file with a next episode available")
	}
}

func TestRestoreSeedsPositionAndRate(t *testing.T) {
	store := persist.Open(filepath.Join(t.TempDir(), "positions.json"), 10)
	store.Save("movie:603", 42.5, 1.25)

	ctrl := newFakeController()
	s := NewSession(ctrl, store, Config{
		Source:   "https://cdn.example.com/video.mp4",
		MediaKey: "movie:603",
		Resume:   true,
	})

	s.Start(context.Background())
	s.HandleEvent(Event{Kind: EventDuration, Duration: 120})
	s.HandleEvent(Event{Kind: EventFileLoaded})

	if len(ctrl.seeks) == 0 || ctrl.seeks[0] != 42.5 {
		t.Errorf("seeks = %v, want restore to 42.5", ctrl.seeks)
	}
	if ctrl.rate != 1.25 {
		t.Errorf("rate = %v, want restored 1.25", ctrl.rate)
	}
}

func TestPositionUpdatesPersist(t *testing.T) {
	store := persist.Open(filepath.Join(t.TempDir(), "positions.json"), 10)

	ctrl := newFakeController()
	s := NewSession(ctrl, store, Config{
		Source:   "https://cdn.example.com/video.mp4",
		MediaKey: "tv:42:s1e3",
	})
	loadSession(t, s)
	s.HandleEvent(Event{Kind: EventDuration, Duration: 1200})
	s.HandleEvent(Event{Kind: EventPosition, Position: 333})

	rec, ok := store.Restore("tv:42:s1e3")
	if !ok {
		t.Fatal("position update did not reach the store")
	}
	if rec.Position != 333 {
		t.Errorf("stored position = %v, want 333", rec.Position)
	}
}
