package ui

import (
	"math"
	"strings"
	"testing"

	"github.com/harunobu/miru/player"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want string
	}{
		{"zero", 0, "0:00"},
		{"seconds only", 45, "0:45"},
		{"minutes", 125, "2:05"},
		{"exact minute", 60, "1:00"},
		{"hours", 3725, "1:02:05"},
		{"hour boundary", 3600, "1:00:00"},
		{"long film", 7322, "2:02:02"},
		{"fractional truncates", 59.9, "0:59"},
		{"negative", -5, "0:00"},
		{"nan", math.NaN(), "0:00"},
		{"positive inf", math.Inf(1), "0:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatTime(tc.in); got != tc.want {
				t.Errorf("formatTime(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestControlsBarView(t *testing.T) {
	bar := NewControlsBar(DefaultStyles())
	bar.SetWidth(80)

	st := player.State{
		Phase:    player.PhaseReady,
		Playing:  true,
		Position: 125,
		Duration: 3725,
		Volume:   0.8,
		Rate:     1.5,
	}

	out := bar.View(st, false)
	for _, want := range []string{"2:05", "1:02:05", "1.5x", "vol 80%"} {
		if !strings.Contains(out, want) {
			t.Errorf("controls view missing %q:\n%s", want, out)
		}
	}

	st.Muted = true
	out = bar.View(st, false)
	if !strings.Contains(out, "muted") {
		t.Errorf("muted indicator missing:\n%s", out)
	}
	if strings.Contains(out, "vol 80%") {
		t.Errorf("volume shown while muted:\n%s", out)
	}
}

func TestControlsBarNextPrompt(t *testing.T) {
	bar := NewControlsBar(DefaultStyles())
	bar.SetWidth(80)

	st := player.State{
		Phase:             player.PhaseReady,
		Position:          100,
		Duration:          120,
		Volume:            1,
		Rate:              1,
		NextPromptVisible: true,
	}

	if out := bar.View(st, true); !strings.Contains(out, "next episode") {
		t.Errorf("next prompt missing:\n%s", out)
	}
	if out := bar.View(st, false); strings.Contains(out, "next episode") {
		t.Errorf("next prompt shown without next target:\n%s", out)
	}
}
