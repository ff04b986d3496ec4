package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		key     string
		want    Ref
		wantErr bool
	}{
		{"movie:603", Ref{Type: TypeMovie, ID: 603}, false},
		{"tv:1399", Ref{Type: TypeTV, ID: 1399}, false},
		{"tv:1399:s2e5", Ref{Type: TypeTV, ID: 1399, Season: 2, Episode: 5}, false},
		{"movie:603:s1e1", Ref{}, true},
		{"book:1", Ref{}, true},
		{"movie:abc", Ref{}, true},
		{"movie:-4", Ref{}, true},
		{"tv:1399:sxey", Ref{}, true},
		{"tv:1399:s0e0", Ref{}, true},
		{"", Ref{}, true},
		{"movie", Ref{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseRef(tt.key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRef(%q) succeeded, want error", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%q) error = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRefKeyRoundTrip(t *testing.T) {
	keys := []string{"movie:603", "tv:1399", "tv:1399:s2e5"}
	for _, key := range keys {
		ref, err := ParseRef(key)
		if err != nil {
			t.Fatalf("ParseRef(%q) error = %v", key, err)
		}
		if got := ref.Key(); got != key {
			t.Errorf("Key() = %q, want %q", got, key)
		}
	}
}

func TestLookupMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("api_key missing from request")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"title": "The Matrix",
			"overview": "A computer hacker learns the truth.",
			"poster_path": "/matrix.jpg",
			"release_date": "1999-03-30"
		}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.baseURL = server.URL

	info, err := client.Lookup(context.Background(), Ref{Type: TypeMovie, ID: 603})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if info.Title != "The Matrix" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Year != "1999" {
		t.Errorf("Year = %q, want 1999", info.Year)
	}
	if info.PosterURL != imageBase+"/matrix.jpg" {
		t.Errorf("PosterURL = %q", info.PosterURL)
	}
}

func TestLookupEpisodeTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "Breaking Bad", "first_air_date": "2008-01-20"}`))
	}))
	defer server.Close()

	client, _ := NewClient("test-key")
	client.baseURL = server.URL

	info, err := client.Lookup(context.Background(), Ref{Type: TypeTV, ID: 1396, Season: 2, Episode: 5})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if info.Title != "Breaking Bad S2E5" {
		t.Errorf("Title = %q, want episode-qualified title", info.Title)
	}
}

func TestLookupErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, _ := NewClient("test-key")
	client.baseURL = server.URL

	if _, err := client.Lookup(context.Background(), Ref{Type: TypeMovie, ID: 999}); err == nil {
		t.Error("Lookup() succeeded on 404, want error")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("NewClient(\"\") succeeded, want error")
	}
}
