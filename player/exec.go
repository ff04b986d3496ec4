package player

import (
	"context"
	"errors"
	"os/exec"
	"sync"

	"github.com/harunobu/miru/logger"
)

// ErrUnsupported is returned for controls a player without an IPC
// channel cannot take.
var ErrUnsupported = errors.New("player: control not supported by this player")

// ExecController drives a fallback player that offers no control
// socket. It can open a source and report when the process exits;
// every other control returns ErrUnsupported.
type ExecController struct {
	binary    string
	extraArgs []string

	mu     sync.Mutex
	cmd    *exec.Cmd
	gen    int
	closed bool
	wg     sync.WaitGroup

	events    chan Event
	closeOnce sync.Once
}

// NewExecController prepares a controller for binary. The process is
// spawned on Load.
func NewExecController(binary string, extraArgs []string) *ExecController {
	return &ExecController{
		binary:    binary,
		extraArgs: extraArgs,
		events:    make(chan Event, 16),
	}
}

// Load starts the player on url. A running instance is replaced, which
// is as close to a source swap as a socketless player gets.
func (c *ExecController) Load(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("player: controller closed")
	}

	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	c.gen++
	gen := c.gen

	args := append(append([]string{}, c.extraArgs...), url)
	cmd := exec.CommandContext(ctx, c.binary, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	c.cmd = cmd

	logger.Info("Fallback player started", logger.Fields{
		"binary": c.binary,
		"pid":    cmd.Process.Pid,
	})

	c.emit(Event{Kind: EventFileLoaded})

	// The goroutine is the process's only waiter. Close never touches
	// the events channel until every waiter has returned, so emitting
	// here cannot race the close.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := cmd.Wait()

		c.mu.Lock()
		stale := gen != c.gen || c.closed
		c.mu.Unlock()
		if stale {
			return
		}

		if err != nil {
			logger.Warn("Fallback player exited", logger.Fields{"error": err.Error()})
		}
		c.emit(Event{Kind: EventEnded})
	}()

	return nil
}

func (c *ExecController) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

func (c *ExecController) SetPaused(bool) error    { return ErrUnsupported }
func (c *ExecController) Seek(float64) error      { return ErrUnsupported }
func (c *ExecController) SetVolume(float64) error { return ErrUnsupported }
func (c *ExecController) SetMuted(bool) error     { return ErrUnsupported }
func (c *ExecController) SetRate(float64) error   { return ErrUnsupported }
func (c *ExecController) AddSubtitle(_, _, _ string) (int, error) {
	return 0, ErrUnsupported
}
func (c *ExecController) SelectSubtitle(int) error             { return ErrUnsupported }
func (c *ExecController) DisableSubtitles() error              { return ErrUnsupported }
func (c *ExecController) SetSubtitleStyle(SubtitleStyle) error { return ErrUnsupported }
func (c *ExecController) ToggleFullscreen() error              { return ErrUnsupported }
func (c *ExecController) SetPinned(bool) error                 { return ErrUnsupported }

// Events returns the playback event stream
func (c *ExecController) Events() <-chan Event {
	return c.events
}

// Close kills the player process and closes the event stream. Reaping
// is left to the Load goroutine; Close only waits for it.
func (c *ExecController) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		cmd := c.cmd
		c.mu.Unlock()

		if cmd != nil && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		c.wg.Wait()

		c.emit(Event{Kind: EventClosed})
		close(c.events)
	})
	return nil
}
