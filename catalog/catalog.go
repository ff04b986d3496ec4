// Package catalog looks up title metadata from TMDB and parses media
// keys. The catalog is strictly decorative here: playback never depends
// on it, so every lookup failure degrades to playing without metadata.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	baseURL   = "https://api.themoviedb.org/3"
	imageBase = "https://image.tmdb.org/t/p/w500"
)

// MediaType discriminates movie and TV references
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeTV    MediaType = "tv"
)

// Ref identifies one playable item. Episode fields are zero for movies.
type Ref struct {
	Type    MediaType
	ID      int
	Season  int
	Episode int
}

// Key returns the canonical media key for persistence:
// "movie:603" or "tv:1399:s2e5".
func (r Ref) Key() string {
	if r.Type == TypeTV && r.Season > 0 {
		return fmt.Sprintf("tv:%d:s%de%d", r.ID, r.Season, r.Episode)
	}
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// ParseRef parses a media key of the form "movie:603", "tv:1399" or
// "tv:1399:s2e5"
func ParseRef(key string) (Ref, error) {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return Ref{}, fmt.Errorf("invalid media key %q", key)
	}

	var ref Ref
	switch parts[0] {
	case "movie":
		ref.Type = TypeMovie
	case "tv":
		ref.Type = TypeTV
	default:
		return Ref{}, fmt.Errorf("invalid media type %q in key %q", parts[0], key)
	}

	id, err := strconv.Atoi(parts[1])
	if err != nil || id <= 0 {
		return Ref{}, fmt.Errorf("invalid media id in key %q", key)
	}
	ref.ID = id

	if len(parts) == 3 {
		if ref.Type != TypeTV {
			return Ref{}, fmt.Errorf("episode part on non-tv key %q", key)
		}
		if _, err := fmt.Sscanf(parts[2], "s%de%d", &ref.Season, &ref.Episode); err != nil {
			return Ref{}, fmt.Errorf("invalid episode part in key %q", key)
		}
		if ref.Season <= 0 || ref.Episode <= 0 {
			return Ref{}, fmt.Errorf("invalid episode numbers in key %q", key)
		}
	} else if len(parts) > 3 {
		return Ref{}, fmt.Errorf("invalid media key %q", key)
	}

	return ref, nil
}

// Info is the subset of catalog metadata the player surfaces
type Info struct {
	Title     string
	Overview  string
	PosterURL string
	Year      string
}

// Client is a minimal TMDB API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client with the given TMDB API key
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("catalog: missing TMDB API key")
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type movieResponse struct {
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
}

type showResponse struct {
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	FirstAirDate string `json:"first_air_date"`
}

// Lookup fetches display metadata for a media reference
func (c *Client) Lookup(ctx context.Context, ref Ref) (*Info, error) {
	switch ref.Type {
	case TypeMovie:
		var m movieResponse
		if err := c.get(ctx, fmt.Sprintf("/movie/%d", ref.ID), &m); err != nil {
			return nil, err
		}
		return &Info{
			Title:     m.Title,
			Overview:  m.Overview,
			PosterURL: posterURL(m.PosterPath),
			Year:      yearOf(m.ReleaseDate),
		}, nil
	case TypeTV:
		var s showResponse
		if err := c.get(ctx, fmt.Sprintf("/tv/%d", ref.ID), &s); err != nil {
			return nil, err
		}
		title := s.Name
		if ref.Season > 0 {
			title = fmt.Sprintf("%s S%dE%d", s.Name, ref.Season, ref.Episode)
		}
		return &Info{
			Title:     title,
			Overview:  s.Overview,
			PosterURL: posterURL(s.PosterPath),
			Year:      yearOf(s.FirstAirDate),
		}, nil
	default:
		return nil, fmt.Errorf("catalog: unknown media type %q", ref.Type)
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	q := url.Values{}
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: failed to decode response: %w", err)
	}
	return nil
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return imageBase + path
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
