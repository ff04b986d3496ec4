// Package source classifies playback source URLs and resolves a player
// binary capable of handling them.
package source

import (
	"net/url"
	"path"
	"strings"
)

// Kind is the playback capability class of a source URL
type Kind int

const (
	// KindNative is a direct media file the player can decode as-is
	KindNative Kind = iota
	// KindAdaptive is an HLS manifest that needs a streaming-capable demuxer
	KindAdaptive
	// KindEmbed is an opaque page we have no transport authority over
	KindEmbed
)

// String returns a human-readable label for the source kind
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindAdaptive:
		return "adaptive"
	case KindEmbed:
		return "embed"
	default:
		return "unknown"
	}
}

// Target is a classified playback source
type Target struct {
	Kind Kind
	URL  string
}

var directExtensions = map[string]Kind{
	".mp4":  KindNative,
	".webm": KindNative,
	".mkv":  KindNative,
	".m3u8": KindAdaptive,
}

// Classify determines what kind of playback a source URL requires.
// Unknown URLs (embed pages, shortened links) are treated as opaque embeds.
// Classification is a pure function of the URL: calling it again with the
// same input yields the same Target.
func Classify(raw string) Target {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{Kind: KindEmbed, URL: raw}
	}

	switch u.Scheme {
	case "file", "":
		// Local files are always handed to the player directly
		if kind, ok := directExtensions[strings.ToLower(path.Ext(u.Path))]; ok {
			return Target{Kind: kind, URL: raw}
		}
		return Target{Kind: KindNative, URL: raw}
	case "http", "https":
		if kind, ok := directExtensions[strings.ToLower(path.Ext(u.Path))]; ok {
			return Target{Kind: kind, URL: raw}
		}
		return Target{Kind: KindEmbed, URL: raw}
	default:
		return Target{Kind: KindEmbed, URL: raw}
	}
}
