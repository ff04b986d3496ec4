package config

// Config represents the complete application configuration
type Config struct {
	Player    PlayerConfig   `ini:"player"`
	Playback  PlaybackConfig `ini:"playback"`
	Subtitles SubtitleConfig `ini:"subtitles"`
	Catalog   CatalogConfig  `ini:"catalog"`
	Discord   DiscordConfig  `ini:"discord"`
}

// PlayerConfig selects the external player process and how to launch it
type PlayerConfig struct {
	Binary           string `ini:"binary"`
	FallbackBinaries string `ini:"fallback_binaries"` // comma-separated, tried in order
	ExtraArguments   string `ini:"extra_arguments"`
}

// PlaybackConfig contains transport and resume behavior
type PlaybackConfig struct {
	AutoPlay                 bool    `ini:"autoplay"`
	ResumePlayback           bool    `ini:"resume_playback"`
	DefaultRate              float64 `ini:"default_rate"`
	SeekStepSeconds          float64 `ini:"seek_step_seconds"`
	AutoNextThresholdSeconds float64 `ini:"auto_next_threshold_seconds"`
	MaxRememberedPositions   int     `ini:"max_remembered_positions"`
}

// SubtitleConfig contains default subtitle rendering style
type SubtitleConfig struct {
	FontSize          int    `ini:"font_size"`
	Color             string `ini:"color"`
	Background        bool   `ini:"background"`
	PreferredLanguage string `ini:"preferred_language"`
}

// CatalogConfig contains TMDB metadata lookup settings
type CatalogConfig struct {
	APIKey string `ini:"api_key"`
}

// DiscordConfig contains Discord presence settings
type DiscordConfig struct {
	Presence bool `ini:"presence"`
}
