package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harunobu/miru/catalog"
	"github.com/harunobu/miru/config"
	"github.com/harunobu/miru/discord"
	"github.com/harunobu/miru/logger"
	"github.com/harunobu/miru/persist"
	"github.com/harunobu/miru/player"
	"github.com/harunobu/miru/source"
	"github.com/harunobu/miru/ui"
)

const version = "1.0.0"

// listFlag collects a repeatable string flag
type listFlag []string

func (f *listFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *listFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	var (
		showVersion     = flag.Bool("v", false, "Show version")
		showHelp        = flag.Bool("h", false, "Show help")
		title           = flag.String("title", "", "Display title")
		mediaKey        = flag.String("key", "", "Catalog reference (movie:603 or tv:1399:s2e5)")
		nextURL         = flag.String("next", "", "URL of the next episode")
		discordPresence = flag.Bool("d", false, "Enable Discord presence")
		noResume        = flag.Bool("no-resume", false, "Start from the beginning")
		variants        listFlag
		subs            listFlag
	)
	flag.Var(&variants, "variant", "Quality variant as label=url (repeatable)")
	flag.Var(&subs, "sub", "Caption track as lang=label=url (repeatable)")

	flag.Parse()

	if err := logger.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Application started", logger.Fields{"version": version})

	if *showVersion {
		fmt.Printf("miru version %s\n", version)
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		showUsage()
		if flag.NArg() == 0 && !*showHelp {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", err, nil)
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *discordPresence {
		cfg.Discord.Presence = true
	}
	resume := cfg.Playback.ResumePlayback && !*noResume

	sourceURL := flag.Arg(0)
	variantList, err := parseVariants(variants)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -variant: %v\n", err)
		os.Exit(1)
	}
	captionList, err := parseCaptions(subs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -sub: %v\n", err)
		os.Exit(1)
	}

	// Catalog lookup is best effort; a missing key or API failure never
	// blocks playback
	displayTitle := *title
	posterURL := ""
	var mediaRef *catalog.Ref
	if *mediaKey != "" {
		ref, err := catalog.ParseRef(*mediaKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -key: %v\n", err)
			os.Exit(1)
		}
		mediaRef = &ref

		if cfg.Catalog.APIKey != "" {
			if client, err := catalog.NewClient(cfg.Catalog.APIKey); err == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				info, err := client.Lookup(ctx, ref)
				cancel()
				if err != nil {
					logger.Warn("Catalog lookup failed", logger.Fields{
						"key":   *mediaKey,
						"error": err.Error(),
					})
				} else {
					if displayTitle == "" {
						displayTitle = info.Title
					}
					posterURL = info.PosterURL
				}
			}
		}
	}
	if displayTitle == "" {
		displayTitle = sourceURL
	}

	persistKey := *mediaKey
	if persistKey == "" {
		persistKey = sourceURL
	}

	dataDir, err := config.GetDataDir()
	if err != nil {
		logger.Error("Failed to locate data directory", err, nil)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store := persist.Open(persist.DefaultPath(dataDir), cfg.Playback.MaxRememberedPositions)

	discordMgr := discord.NewPresenceManager(cfg.Discord.Presence)
	if cfg.Discord.Presence {
		if err := discordMgr.Connect(); err != nil {
			logger.Warn("Failed to connect to Discord", logger.Fields{"error": err.Error()})
		}
	}

	next := *nextURL
	for {
		sessionCfg := player.Config{
			Source:            sourceURL,
			Title:             displayTitle,
			MediaKey:          persistKey,
			Variants:          variantList,
			Captions:          captionList,
			AutoPlay:          cfg.Playback.AutoPlay,
			Resume:            resume,
			DefaultRate:       cfg.Playback.DefaultRate,
			AutoNextThreshold: cfg.Playback.AutoNextThresholdSeconds,
			NextAvailable:     next != "",
			SubtitleStyle: player.SubtitleStyle{
				FontSize:   cfg.Subtitles.FontSize,
				Color:      cfg.Subtitles.Color,
				Background: cfg.Subtitles.Background,
			},
			PreferredCaption: cfg.Subtitles.PreferredLanguage,
		}

		playNext, err := playOne(cfg, sessionCfg, store, discordMgr, posterURL)
		if err != nil {
			logger.Error("Playback error", err, nil)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if !playNext || next == "" {
			break
		}

		// Advance to the next episode and loop. Variant and caption
		// flags described the first episode only.
		sourceURL = next
		next = ""
		variantList = nil
		captionList = nil
		if mediaRef != nil && mediaRef.Episode > 0 {
			mediaRef.Episode++
			persistKey = mediaRef.Key()
			displayTitle = nextEpisodeTitle(displayTitle, mediaRef.Season, mediaRef.Episode)
		} else {
			persistKey = sourceURL
		}
		logger.Info("Continuing with next episode", logger.Fields{"source": sourceURL})
	}

	store.Flush()
	if cfg.Discord.Presence {
		discordMgr.Clear()
	}
	logger.Info("Application shutdown complete", nil)
}

// playOne runs a single playback session to completion and reports
// whether the user chose to continue with the next episode
func playOne(cfg *config.Config, sessionCfg player.Config, store *persist.Store, discordMgr *discord.PresenceManager, posterURL string) (bool, error) {
	target := source.Classify(sessionCfg.Source)
	logger.Info("Source classified", logger.Fields{
		"url":  sessionCfg.Source,
		"kind": target.Kind.String(),
	})

	ctrl, external, err := buildController(cfg, target, sessionCfg.Title)
	if err != nil {
		return false, err
	}

	session := player.NewSession(ctrl, store, sessionCfg)
	session.Start(context.Background())

	if discordMgr.IsEnabled() {
		discordMgr.SetWatching(sessionCfg.Title, "Watching", posterURL)
	}

	view := ui.NewPlaybackView(session, ctrl.Events(), ui.PlaybackOptions{
		SeekStep:      cfg.Playback.SeekStepSeconds,
		External:      external,
		NextCountdown: autoNextCountdown(cfg),
	})

	p := tea.NewProgram(view, tea.WithAltScreen())
	_, runErr := p.Run()
	session.Close()
	if runErr != nil {
		return false, runErr
	}

	return view.PlayNext(), nil
}

// buildController picks the playback backend for the target. Embeds go
// to the browser and a resolved mpv gets the IPC controller; any other
// resolved binary runs without a transport channel, which the second
// return value reports.
func buildController(cfg *config.Config, target source.Target, title string) (player.Controller, bool, error) {
	extraArgs := strings.Fields(cfg.Player.ExtraArguments)

	if target.Kind == source.KindEmbed {
		return player.NewEmbedController(), true, nil
	}

	res, err := source.Resolve(target, cfg.Player.Binary, cfg.Player.FallbackBinaries)
	if err != nil {
		return nil, false, err
	}

	if strings.Contains(res.Binary, "mpv") {
		ctrl, err := player.NewMPVController(context.Background(), res.Binary, title, extraArgs, true)
		if err != nil {
			return nil, false, err
		}
		return ctrl, false, nil
	}

	return player.NewExecController(res.Binary, extraArgs), true, nil
}

// autoNextCountdown is the prompt countdown; disabled when autoplay is
// off
func autoNextCountdown(cfg *config.Config) int {
	if !cfg.Playback.AutoPlay {
		return 0
	}
	return 10
}

// parseVariants parses repeated label=url flags
func parseVariants(raw []string) ([]player.SourceVariant, error) {
	var out []player.SourceVariant
	for _, item := range raw {
		label, url, ok := strings.Cut(item, "=")
		if !ok || label == "" || url == "" {
			return nil, fmt.Errorf("expected label=url, got %q", item)
		}
		out = append(out, player.SourceVariant{Label: label, URL: url})
	}
	return out, nil
}

// parseCaptions parses repeated lang=label=url flags
func parseCaptions(raw []string) ([]player.CaptionTrack, error) {
	var out []player.CaptionTrack
	for _, item := range raw {
		parts := strings.SplitN(item, "=", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return nil, fmt.Errorf("expected lang=label=url, got %q", item)
		}
		label := parts[1]
		if label == "" {
			label = parts[0]
		}
		out = append(out, player.CaptionTrack{
			Lang:  parts[0],
			Label: label,
			URL:   parts[2],
		})
	}
	return out, nil
}

// nextEpisodeTitle rewrites a trailing SxEy marker when one is present
func nextEpisodeTitle(title string, season, episode int) string {
	marker := fmt.Sprintf("S%dE%d", season, episode-1)
	if strings.HasSuffix(title, marker) {
		return strings.TrimSuffix(title, marker) + fmt.Sprintf("S%dE%d", season, episode)
	}
	return title
}

func showUsage() {
	fmt.Printf(`MIRU - Movie & TV Watch Client

Usage: miru [options] <url>

Options:
  -d             Enable Discord presence
  -h             Show this help
  -key <ref>     Catalog reference (movie:603 or tv:1399:s2e5)
  -next <url>    URL of the next episode
  -no-resume     Start from the beginning
  -sub <spec>    Caption track as lang=label=url (repeatable)
  -title <name>  Display title
  -v             Show version
  -variant <spec> Quality variant as label=url (repeatable)

Examples:
  miru https://cdn.example.com/film.mp4
  miru -key movie:603 -title "The Matrix" https://cdn.example.com/matrix.m3u8
  miru -key tv:1399:s1e1 -next https://cdn.example.com/e2.mp4 https://cdn.example.com/e1.mp4

`)
}
