package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

//go:embed dataset_schema.json
var datasetSchema []byte

// releaseYearLen is the length of the year prefix of an album release date.
const releaseYearLen = 4

// SchemaError reports dataset entries that do not match the dataset schema.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %d schema violation(s): %s",
		ErrInvalidDataset, len(e.Violations), strings.Join(e.Violations, "; "))
}

// Unwrap lets errors.Is match ErrInvalidDataset.
func (e *SchemaError) Unwrap() error {
	return ErrInvalidDataset
}

type datasetItem struct {
	Name       string  `json:"name"`
	PreviewURL *string `json:"preview_url"`
	Popularity int64   `json:"popularity"`
	DurationMs int64   `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

// ParseDataset reads a Spotify-style JSON array of tracks, validates it and
// extracts catalog rows. Ids are left zero for the table to assign.
func ParseDataset(r io.Reader) ([]track.Track, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(datasetSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))

		for _, verr := range result.Errors() {
			violations = append(violations, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
		}

		return nil, &SchemaError{Violations: violations}
	}

	var items []datasetItem

	err = json.Unmarshal(raw, &items)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	tracks := make([]track.Track, 0, len(items))

	for _, item := range items {
		tracks = append(tracks, extractTrack(item))
	}

	return tracks, nil
}

func extractTrack(item datasetItem) track.Track {
	t := track.Track{
		Name:       item.Name,
		Album:      item.Album.Name,
		Popularity: item.Popularity,
		DurationMs: item.DurationMs,
	}

	if item.PreviewURL != nil {
		t.PreviewURL = *item.PreviewURL
	}

	if len(item.Artists) > 0 {
		t.Artist = item.Artists[0].Name
	}

	if len(item.Album.Images) > 0 {
		t.Cover = item.Album.Images[0].URL
	}

	if len(item.Album.ReleaseDate) >= releaseYearLen {
		year, err := strconv.ParseInt(item.Album.ReleaseDate[:releaseYearLen], 10, 64)
		if err == nil {
			t.Year = year
		}
	}

	return t
}

// InsertStatement renders one row as a MySQL-compatible INSERT that SQLite
// also accepts. A missing preview URL becomes NULL.
func InsertStatement(t track.Track) string {
	preview := "NULL"
	if t.PreviewURL != "" {
		preview = quoteSQL(t.PreviewURL)
	}

	return fmt.Sprintf("INSERT INTO `collections` (`preview_url`, `album_cover`, `name`, `year`, `artist`, "+
		"`popularity`, `album`, `duration`) VALUES (%s, %s, %s, %d, %s, %d, %s, %d);",
		preview, quoteSQL(t.Cover), quoteSQL(t.Name), t.Year, quoteSQL(t.Artist),
		t.Popularity, quoteSQL(t.Album), t.DurationMs)
}

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// WriteSQL writes one INSERT statement per line.
func WriteSQL(w io.Writer, tracks []track.Track) error {
	for _, t := range tracks {
		_, err := io.WriteString(w, InsertStatement(t)+"\n")
		if err != nil {
			return fmt.Errorf("write seed statement: %w", err)
		}
	}

	return nil
}
