// Package track defines the track record served by the catalog and the
// closed set of fields it can be ordered and searched by.
package track

import (
	"path"
	"strings"
)

// audioDir is the public directory that holds preview audio files.
const audioDir = "/audio"

// Track is one row of the collections table.
type Track struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Year       int64  `json:"year"`
	Popularity int64  `json:"popularity"`
	DurationMs int64  `json:"duration_ms"`
	Cover      string `json:"cover,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	FilePath   string `json:"filePath,omitempty"`
}

// AudioPath returns the public audio path derived from the track name.
func AudioPath(name string) string {
	return path.Join(audioDir, strings.ToLower(name)+".mp3")
}

// WithAudioPaths returns a copy of tracks with FilePath filled from names.
// Tracks that already carry a path keep it.
func WithAudioPaths(tracks []Track) []Track {
	out := make([]Track, len(tracks))

	for i, t := range tracks {
		if t.FilePath == "" {
			t.FilePath = AudioPath(t.Name)
		}

		out[i] = t
	}

	return out
}

// IDs returns the ids of tracks in order.
func IDs(tracks []Track) []int64 {
	ids := make([]int64, len(tracks))

	for i, t := range tracks {
		ids[i] = t.ID
	}

	return ids
}
