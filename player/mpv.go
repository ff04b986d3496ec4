package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/harunobu/miru/logger"
)

// Property observation ids registered with mpv. The reader goroutine maps
// property-change notifications back to event kinds through these.
const (
	obsTimePos = iota + 1
	obsDuration
	obsPause
	obsSpeed
	obsVolume
	obsMute
)

const commandTimeout = 2 * time.Second

// MPVController drives an mpv process over its JSON IPC socket
type MPVController struct {
	cmd      *exec.Cmd
	conn     net.Conn
	endpoint string

	mu       sync.Mutex
	reqID    int64
	pending  map[int64]chan mpvResponse
	subCount int
	closed   bool

	events    chan Event
	closeOnce sync.Once
}

type mpvMessage struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	ID        int             `json:"id"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Reason    string          `json:"reason"`
}

type mpvResponse struct {
	errText string
	data    json.RawMessage
}

// NewMPVController spawns binary with an IPC server and connects to it.
// The process starts idle; call Load to open a source.
func NewMPVController(ctx context.Context, binary, title string, extraArgs []string, startPaused bool) (*MPVController, error) {
	endpoint := ipcEndpoint()

	args := []string{
		"--idle=yes",
		"--input-ipc-server=" + endpoint,
		"--force-window=yes",
		"--keep-open=no",
		"--no-terminal",
		"--msg-level=all=warn",
	}
	if title != "" {
		args = append(args, "--force-media-title="+title)
	}
	if startPaused {
		args = append(args, "--pause")
	}
	args = append(args, extraArgs...)

	cmd := exec.CommandContext(ctx, binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player process: %w", err)
	}

	logger.Debug("Player process started", logger.Fields{
		"binary": binary,
		"pid":    cmd.Process.Pid,
	})

	conn, err := dialIPC(endpoint, 5*time.Second)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	c := &MPVController{
		cmd:      cmd,
		conn:     conn,
		endpoint: endpoint,
		pending:  make(map[int64]chan mpvResponse),
		events:   make(chan Event, 64),
	}

	go c.readLoop()

	for name, id := range map[string]int{
		"time-pos": obsTimePos,
		"duration": obsDuration,
		"pause":    obsPause,
		"speed":    obsSpeed,
		"volume":   obsVolume,
		"mute":     obsMute,
	} {
		if _, err := c.command("observe_property", id, name); err != nil {
			logger.Warn("Failed to observe player property", logger.Fields{
				"property": name,
				"error":    err.Error(),
			})
		}
	}

	return c, nil
}

// readLoop parses IPC lines and turns them into command responses and
// playback events. It owns the events channel and closes it on exit, which
// is the unmount guard: consumers stop receiving instead of being invoked
// on a disposed player.
func (c *MPVController) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			logger.Debug("Unparseable IPC line skipped", logger.Fields{
				"line": scanner.Text(),
			})
			continue
		}

		if msg.Event == "" {
			c.mu.Lock()
			ch, ok := c.pending[msg.RequestID]
			if ok {
				delete(c.pending, msg.RequestID)
			}
			c.mu.Unlock()
			if ok {
				ch <- mpvResponse{errText: msg.Error, data: msg.Data}
			}
			continue
		}

		c.dispatchEvent(msg)
	}

	c.emit(Event{Kind: EventClosed})
	close(c.events)
}

func (c *MPVController) dispatchEvent(msg mpvMessage) {
	switch msg.Event {
	case "property-change":
		c.dispatchProperty(msg)
	case "file-loaded":
		c.emit(Event{Kind: EventFileLoaded})
	case "end-file":
		switch msg.Reason {
		case "eof":
			c.emit(Event{Kind: EventEnded})
		case "error":
			c.emit(Event{Kind: EventLoadFailed, Err: fmt.Errorf("player failed to open source")})
		}
		// "stop" and "redirect" happen during variant swaps; not terminal
	}
}

func (c *MPVController) dispatchProperty(msg mpvMessage) {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return
	}

	switch msg.ID {
	case obsTimePos:
		var v float64
		if json.Unmarshal(msg.Data, &v) == nil {
			c.emit(Event{Kind: EventPosition, Position: v})
		}
	case obsDuration:
		var v float64
		if json.Unmarshal(msg.Data, &v) == nil {
			c.emit(Event{Kind: EventDuration, Duration: v})
		}
	case obsPause:
		var v bool
		if json.Unmarshal(msg.Data, &v) == nil {
			c.emit(Event{Kind: EventPause, Paused: v})
		}
	case obsSpeed:
		var v float64
		if json.Unmarshal(msg.Data, &v) == nil {
			c.emit(Event{Kind: EventRate, Rate: v})
		}
	case obsVolume:
		var v float64
		if json.Unmarshal(msg.Data, &v) == nil {
			c.emit(Event{Kind: EventVolume, Volume: v / 100})
		}
	case obsMute:
		var v bool
		if json.Unmarshal(msg.Data, &v) == nil {
			c.emit(Event{Kind: EventMute, Muted: v})
		}
	}
}

// emit never blocks the read loop; a slow consumer loses intermediate
// position updates, which is harmless
func (c *MPVController) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

// command sends a request and waits for its response
func (c *MPVController) command(parts ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("player connection closed")
	}
	c.reqID++
	id := c.reqID
	ch := make(chan mpvResponse, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := json.Marshal(map[string]interface{}{
		"command":    parts,
		"request_id": id,
	})
	if err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(append(payload, '\n')); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to write player command: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.errText != "" && resp.errText != "success" {
			return nil, fmt.Errorf("player rejected command: %s", resp.errText)
		}
		return resp.data, nil
	case <-time.After(commandTimeout):
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("player command timed out")
	}
}

func (c *MPVController) setProperty(name string, value interface{}) error {
	_, err := c.command("set_property", name, value)
	return err
}

// Load opens a source URL, replacing the current one. mpv numbers
// subtitle tracks per loaded file, so the id counter starts over.
func (c *MPVController) Load(ctx context.Context, url string) error {
	_, err := c.command("loadfile", url, "replace")
	if err == nil {
		c.mu.Lock()
		c.subCount = 0
		c.mu.Unlock()
	}
	return err
}

// SetPaused pauses or resumes playback
func (c *MPVController) SetPaused(paused bool) error {
	return c.setProperty("pause", paused)
}

// Seek jumps to an absolute position in seconds
func (c *MPVController) Seek(seconds float64) error {
	_, err := c.command("seek", seconds, "absolute")
	return err
}

// SetVolume sets volume in [0,1]; mpv speaks percent
func (c *MPVController) SetVolume(v float64) error {
	return c.setProperty("volume", v*100)
}

// SetMuted sets the muted flag
func (c *MPVController) SetMuted(muted bool) error {
	return c.setProperty("mute", muted)
}

// SetRate sets the playback rate
func (c *MPVController) SetRate(rate float64) error {
	return c.setProperty("speed", rate)
}

// AddSubtitle registers an external subtitle file. mpv numbers subtitle
// tracks in add order starting at 1; only externally added tracks exist
// here since sources carry captions out of band.
func (c *MPVController) AddSubtitle(url, label, lang string) (int, error) {
	if _, err := c.command("sub-add", url, "auto", label, lang); err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.subCount++
	id := c.subCount
	c.mu.Unlock()
	return id, nil
}

// SelectSubtitle shows exactly the given track
func (c *MPVController) SelectSubtitle(id int) error {
	return c.setProperty("sid", id)
}

// DisableSubtitles hides all subtitle tracks
func (c *MPVController) DisableSubtitles() error {
	return c.setProperty("sid", "no")
}

// SetSubtitleStyle applies subtitle rendering configuration
func (c *MPVController) SetSubtitleStyle(style SubtitleStyle) error {
	if err := c.setProperty("sub-font-size", style.FontSize); err != nil {
		return err
	}
	if err := c.setProperty("sub-color", style.Color); err != nil {
		return err
	}
	backColor := "#00000000"
	if style.Background {
		backColor = "#C8000000"
	}
	return c.setProperty("sub-back-color", backColor)
}

// ToggleFullscreen toggles the player window fullscreen state
func (c *MPVController) ToggleFullscreen() error {
	_, err := c.command("cycle", "fullscreen")
	return err
}

// SetPinned shrinks the window and keeps it on top, approximating
// picture-in-picture
func (c *MPVController) SetPinned(pinned bool) error {
	if err := c.setProperty("ontop", pinned); err != nil {
		return err
	}
	scale := 1.0
	if pinned {
		scale = 0.35
	}
	return c.setProperty("window-scale", scale)
}

// Events returns the stream of playback notifications
func (c *MPVController) Events() <-chan Event {
	return c.events
}

// Close asks the player to quit and reaps the process
func (c *MPVController) Close() error {
	var err error
	c.closeOnce.Do(func() {
		_, _ = c.command("quit")

		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		_ = c.conn.Close()

		done := make(chan error, 1)
		go func() { done <- c.cmd.Wait() }()
		select {
		case werr := <-done:
			// mpv exits nonzero on quit sometimes; not an error for us
			if werr != nil && !strings.Contains(werr.Error(), "exit status") {
				err = werr
			}
		case <-time.After(3 * time.Second):
			_ = c.cmd.Process.Kill()
			<-done
		}

		cleanupIPC(c.endpoint)
		logger.Debug("Player process closed", nil)
	})
	return err
}
