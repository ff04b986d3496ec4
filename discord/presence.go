package discord

import (
	"fmt"
	"time"

	"github.com/hugolgst/rich-go/client"

	"github.com/harunobu/miru/logger"
)

const applicationID = "1436820992306450532"

// PresenceManager manages Discord Rich Presence. Every failure is
// swallowed: presence is cosmetic and Discord may simply not be running.
type PresenceManager struct {
	enabled   bool
	connected bool
}

// NewPresenceManager creates a presence manager
func NewPresenceManager(enabled bool) *PresenceManager {
	return &PresenceManager{enabled: enabled}
}

// IsEnabled reports whether presence updates are active
func (pm *PresenceManager) IsEnabled() bool {
	return pm.enabled
}

// Connect connects to a local Discord client if one is running
func (pm *PresenceManager) Connect() error {
	if !pm.enabled || pm.connected {
		return nil
	}

	if err := client.Login(applicationID); err != nil {
		logger.Warn("Failed to connect to Discord", logger.Fields{
			"error": err.Error(),
		})
		return nil
	}

	pm.connected = true
	logger.Info("Discord connected", nil)
	return nil
}

// SetWatching publishes what is currently playing
func (pm *PresenceManager) SetWatching(title, detail, posterURL string) {
	if !pm.enabled {
		return
	}
	if !pm.connected {
		if pm.Connect(); !pm.connected {
			return
		}
	}

	now := time.Now()
	activity := client.Activity{
		Details:    fmt.Sprintf("Watching %s", title),
		State:      detail,
		LargeImage: posterURL,
		LargeText:  title,
		Timestamps: &client.Timestamps{Start: &now},
	}

	if err := client.SetActivity(activity); err != nil {
		logger.Warn("Failed to set Discord presence", logger.Fields{
			"error": err.Error(),
			"title": title,
		})
		pm.connected = false
	}
}

// Clear removes the presence
func (pm *PresenceManager) Clear() {
	if !pm.enabled || !pm.connected {
		return
	}
	client.Logout()
	pm.connected = false
	logger.Debug("Discord presence cleared", nil)
}
