//go:build windows

package player

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/natefinch/npipe.v2"
)

// ipcEndpoint returns the per-process mpv IPC named pipe
func ipcEndpoint() string {
	return fmt.Sprintf(`\\.\pipe\miru-mpv-%d`, os.Getpid())
}

// dialIPC connects to the mpv IPC named pipe, retrying until the player
// has created it or the timeout expires
func dialIPC(endpoint string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := npipe.Dial(endpoint)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("failed to connect to player IPC pipe %s: %w", endpoint, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func cleanupIPC(endpoint string) {
	// Named pipes disappear with the owning process
}
