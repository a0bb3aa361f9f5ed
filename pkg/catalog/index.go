package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	// DefaultFindLimit caps lookup results when no limit is given.
	DefaultFindLimit = 20

	lookupFuzziness = 1
	indexBatchSize  = 500
)

var lookupFields = []string{"name", "artist", "album"}

// Index is an in-memory full-text index over track name, artist and album.
type Index struct {
	index  bleve.Index
	tracks map[string]track.Track
}

// Hit is one lookup result.
type Hit struct {
	Track track.Track `json:"track"`
	Score float64     `json:"score"`
}

// NewIndex builds an index over tracks. Tracks without an id are keyed by
// their position.
func NewIndex(tracks []track.Track) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	out := &Index{index: idx, tracks: make(map[string]track.Track, len(tracks))}

	batch := idx.NewBatch()

	for i, t := range tracks {
		key := strconv.FormatInt(t.ID, 10)
		if t.ID == 0 {
			key = "pos-" + strconv.Itoa(i)
		}

		out.tracks[key] = t

		err = batch.Index(key, map[string]any{
			"name":   t.Name,
			"artist": t.Artist,
			"album":  t.Album,
			"year":   float64(t.Year),
		})
		if err != nil {
			idx.Close()

			return nil, fmt.Errorf("index %q: %w", t.Name, err)
		}

		if batch.Size() >= indexBatchSize {
			err = idx.Batch(batch)
			if err != nil {
				idx.Close()

				return nil, fmt.Errorf("index batch: %w", err)
			}

			batch.Reset()
		}
	}

	err = idx.Batch(batch)
	if err != nil {
		idx.Close()

		return nil, fmt.Errorf("index batch: %w", err)
	}

	return out, nil
}

// Len returns the number of indexed tracks.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}

	return len(x.tracks)
}

// Find looks q up. A query containing ':' is parsed as a bleve query string
// (e.g. "artist:aespa"); anything else is a fuzzy match on name, artist and
// album. Results are ordered by score.
func (x *Index) Find(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	if x == nil {
		return nil, ErrNotInitialized
	}

	if limit <= 0 {
		limit = DefaultFindLimit
	}

	req := bleve.NewSearchRequestOptions(lookupQuery(q), limit, 0, false)

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", q, err)
	}

	hits := make([]Hit, 0, len(res.Hits))

	for _, h := range res.Hits {
		t, ok := x.tracks[h.ID]
		if !ok {
			continue
		}

		hits = append(hits, Hit{Track: t, Score: h.Score})
	}

	return hits, nil
}

func lookupQuery(q string) bleveQuery.Query {
	if strings.Contains(q, ":") {
		return bleve.NewQueryStringQuery(q)
	}

	disjuncts := make([]bleveQuery.Query, 0, len(lookupFields))

	for _, field := range lookupFields {
		mq := bleve.NewMatchQuery(q)
		mq.SetField(field)
		mq.SetFuzziness(lookupFuzziness)
		disjuncts = append(disjuncts, mq)
	}

	return bleve.NewDisjunctionQuery(disjuncts...)
}

// Close releases the index.
func (x *Index) Close() error {
	if x == nil || x.index == nil {
		return nil
	}

	return x.index.Close()
}
