// Package catalog stores the track collection and feeds it to the query
// engine. It provides the SQLite-backed collections table, the dataset seed
// generator, the audio tag scanner, a full-text index and an HTTP client
// for a running catalog server.
package catalog

import (
	"context"
	"errors"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

// Sentinel errors.
var (
	ErrNotInitialized = errors.New("catalog store not initialized")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrEmptyQuery     = errors.New("empty lookup query")
	ErrBadStatus      = errors.New("unexpected catalog response status")
)

// Pool status values.
const (
	PoolActive         = "Active"
	PoolNotInitialized = "Not initialized"
)

// Store is the persistent track collection.
type Store interface {
	// All returns every track in id order.
	All(ctx context.Context) ([]track.Track, error)

	// InsertBatch adds tracks in one transaction and returns how many were written.
	InsertBatch(ctx context.Context, tracks []track.Track) (int, error)

	// Count returns the number of stored tracks.
	Count(ctx context.Context) (int, error)

	// Ping checks that the backing database answers.
	Ping(ctx context.Context) error

	// PoolStatus reports connection pool usage.
	PoolStatus() PoolStatus

	// Close releases the connection pool.
	Close() error
}

// PoolStatus describes the connection pool.
type PoolStatus struct {
	Status               string `json:"status"`
	MaxConnections       int    `json:"maxConnections,omitempty"`
	AllConnections       int    `json:"allConnections"`
	InUseConnections     int    `json:"inUseConnections"`
	FreeConnections      int    `json:"freeConnections"`
	AcquiringConnections int64  `json:"acquiringConnections"`
}
