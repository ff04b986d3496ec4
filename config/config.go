package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.ini"), nil
}

// GetDataDir returns the path to the data directory, creating it if needed
func GetDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dataDir := filepath.Join(homeDir, ".miru")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// Default returns the built-in configuration defaults
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			Binary:           "mpv",
			FallbackBinaries: "vlc,iina",
			ExtraArguments:   "",
		},
		Playback: PlaybackConfig{
			AutoPlay:                 true,
			ResumePlayback:           true,
			DefaultRate:              1.0,
			SeekStepSeconds:          10,
			AutoNextThresholdSeconds: 25,
			MaxRememberedPositions:   500,
		},
		Subtitles: SubtitleConfig{
			FontSize:          22,
			Color:             "#FFFFFF",
			Background:        true,
			PreferredLanguage: "",
		},
		Catalog: CatalogConfig{
			APIKey: "",
		},
		Discord: DiscordConfig{
			Presence: false,
		},
	}
}

// Load reads the configuration from the INI file, creating defaults on first run
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := iniFile.MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the INI file
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	iniFile := ini.Empty()
	if err := iniFile.ReflectFrom(cfg); err != nil {
		return fmt.Errorf("failed to reflect config: %w", err)
	}

	if err := iniFile.SaveTo(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}
