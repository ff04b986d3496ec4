package source

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/harunobu/miru/logger"
)

// ErrNoPlayback means no installed player binary can handle the source.
// Callers degrade to a failed-load state rather than aborting: the manifest
// URL is never handed to anything that cannot demux it.
var ErrNoPlayback = errors.New("no capable player binary found")

// Resolution is the outcome of binary resolution for a classified target
type Resolution struct {
	Binary string
	Target Target
}

// Resolve walks the configured binary chain (primary, then fallbacks in
// order) and returns the first binary present on PATH. All chain members
// are expected to demux HLS natively, so the same chain serves both native
// and adaptive targets. Failure is reported, not thrown: the caller surfaces
// a load error and playback simply does not start.
func Resolve(target Target, primary string, fallbacks string) (Resolution, error) {
	chain := []string{primary}
	for _, fb := range strings.Split(fallbacks, ",") {
		if fb = strings.TrimSpace(fb); fb != "" {
			chain = append(chain, fb)
		}
	}

	for _, bin := range chain {
		path, err := exec.LookPath(bin)
		if err != nil {
			logger.Debug("Player binary not found, trying next", logger.Fields{
				"binary": bin,
			})
			continue
		}
		if bin != primary {
			logger.Warn("Primary player unavailable, using fallback", logger.Fields{
				"primary":  primary,
				"fallback": bin,
			})
		}
		logger.Info("Resolved player binary", logger.Fields{
			"binary": path,
			"kind":   target.Kind.String(),
		})
		return Resolution{Binary: path, Target: target}, nil
	}

	logger.Error("No player binary available", ErrNoPlayback, logger.Fields{
		"chain": strings.Join(chain, ","),
		"kind":  target.Kind.String(),
	})
	return Resolution{}, ErrNoPlayback
}
