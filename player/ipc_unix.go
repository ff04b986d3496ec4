//go:build !windows

package player

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// ipcEndpoint returns the per-process mpv IPC socket path
func ipcEndpoint() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("miru-mpv-%d.sock", os.Getpid()))
}

// dialIPC connects to the mpv IPC socket, retrying until the player has
// created it or the timeout expires
func dialIPC(endpoint string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", endpoint)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("failed to connect to player IPC socket %s: %w", endpoint, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func cleanupIPC(endpoint string) {
	_ = os.Remove(endpoint)
}
