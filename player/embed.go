package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/harunobu/miru/logger"
)

// EmbedController hands an embedded source to the system browser. The
// embedded page owns its own player, so every transport control
// returns ErrUnsupported.
type EmbedController struct {
	mu     sync.Mutex
	closed bool

	events    chan Event
	closeOnce sync.Once
}

// NewEmbedController creates a browser handoff controller
func NewEmbedController() *EmbedController {
	return &EmbedController{events: make(chan Event, 4)}
}

// Load opens url in the default browser
func (c *EmbedController) Load(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("player: controller closed")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	logger.Info("Embedded source opened in browser", logger.Fields{"url": url})

	select {
	case c.events <- Event{Kind: EventFileLoaded}:
	default:
	}
	return nil
}

func (c *EmbedController) SetPaused(bool) error    { return ErrUnsupported }
func (c *EmbedController) Seek(float64) error      { return ErrUnsupported }
func (c *EmbedController) SetVolume(float64) error { return ErrUnsupported }
func (c *EmbedController) SetMuted(bool) error     { return ErrUnsupported }
func (c *EmbedController) SetRate(float64) error   { return ErrUnsupported }
func (c *EmbedController) AddSubtitle(_, _, _ string) (int, error) {
	return 0, ErrUnsupported
}
func (c *EmbedController) SelectSubtitle(int) error             { return ErrUnsupported }
func (c *EmbedController) DisableSubtitles() error              { return ErrUnsupported }
func (c *EmbedController) SetSubtitleStyle(SubtitleStyle) error { return ErrUnsupported }
func (c *EmbedController) ToggleFullscreen() error              { return ErrUnsupported }
func (c *EmbedController) SetPinned(bool) error                 { return ErrUnsupported }

// Events returns the playback event stream
func (c *EmbedController) Events() <-chan Event {
	return c.events
}

// Close ends the session; the browser tab is left to the user
func (c *EmbedController) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		select {
		case c.events <- Event{Kind: EventClosed}:
		default:
		}
		close(c.events)
	})
	return nil
}
