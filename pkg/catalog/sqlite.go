package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	// Registers the sqlite3 database/sql driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	driverName = "sqlite3"

	// DefaultConnectionLimit bounds the pool when no limit is given.
	DefaultConnectionLimit = 10

	createTableSQL = `CREATE TABLE IF NOT EXISTS collections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	preview_url TEXT,
	album_cover TEXT,
	name TEXT NOT NULL,
	year INTEGER,
	artist TEXT,
	popularity INTEGER,
	album TEXT,
	duration INTEGER,
	file_path TEXT
)`

	selectAllSQL = `SELECT id, name, artist, album, year, popularity, duration, album_cover, preview_url, file_path
FROM collections ORDER BY id`

	insertSQL = `INSERT INTO collections
(preview_url, album_cover, name, year, artist, popularity, album, duration, file_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	countSQL = `SELECT COUNT(*) FROM collections`
)

// Options configures the SQLite store.
type Options struct {
	// Path is the database file. With ":memory:" each pooled connection
	// sees its own empty database.
	Path string

	// ConnectionLimit bounds open connections. Zero means DefaultConnectionLimit.
	ConnectionLimit int

	// BusyTimeout makes writers wait on a locked database.
	BusyTimeout time.Duration

	Logger *slog.Logger
}

// SQLiteStore is the Store backed by the collections table.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	limit  int
	logger *slog.Logger
}

// Open opens the database, sizes the pool, creates the table and verifies
// the connection.
func Open(ctx context.Context, opts Options) (*SQLiteStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := opts.ConnectionLimit
	if limit <= 0 {
		limit = DefaultConnectionLimit
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", opts.Path, opts.BusyTimeout.Milliseconds())

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", opts.Path, err)
	}

	db.SetMaxOpenConns(limit)
	db.SetMaxIdleConns(limit)

	_, err = db.ExecContext(ctx, createTableSQL)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("create collections table: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	logger.InfoContext(ctx, "catalog pool initialized",
		"catalog.path", opts.Path, "catalog.connection_limit", limit)

	return &SQLiteStore{db: db, limit: limit, logger: logger}, nil
}

func (s *SQLiteStore) handle() (*sql.DB, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}

	return s.db, nil
}

// All returns every track in id order.
func (s *SQLiteStore) All(ctx context.Context) ([]track.Track, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	tracks := make([]track.Track, 0)

	for rows.Next() {
		t, scanErr := scanTrack(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		tracks = append(tracks, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	s.logger.DebugContext(ctx, "retrieved collections", "records", len(tracks))

	return tracks, nil
}

func scanTrack(rows *sql.Rows) (track.Track, error) {
	var (
		t                                       track.Track
		artist, album, cover, preview, filePath sql.NullString
		year, popularity, duration              sql.NullInt64
	)

	err := rows.Scan(&t.ID, &t.Name, &artist, &album, &year, &popularity, &duration, &cover, &preview, &filePath)
	if err != nil {
		return track.Track{}, fmt.Errorf("scan collection row: %w", err)
	}

	t.Artist = artist.String
	t.Album = album.String
	t.Year = year.Int64
	t.Popularity = popularity.Int64
	t.DurationMs = duration.Int64
	t.Cover = cover.String
	t.PreviewURL = preview.String
	t.FilePath = filePath.String

	return t, nil
}

// InsertBatch writes tracks in one transaction. Ids are assigned by the table.
func (s *SQLiteStore) InsertBatch(ctx context.Context, tracks []track.Track) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	if len(tracks) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()

		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		_, err = stmt.ExecContext(ctx,
			nullString(t.PreviewURL), t.Cover, t.Name, t.Year, t.Artist,
			t.Popularity, t.Album, t.DurationMs, nullString(t.FilePath))
		if err != nil {
			_ = tx.Rollback()

			return 0, fmt.Errorf("insert %q: %w", t.Name, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	return len(tracks), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Count returns the number of stored tracks.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	var n int

	err = db.QueryRowContext(ctx, countSQL).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count collections: %w", err)
	}

	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	return db.PingContext(ctx)
}

// PoolStatus reports connection pool usage.
func (s *SQLiteStore) PoolStatus() PoolStatus {
	db, err := s.handle()
	if err != nil {
		return PoolStatus{Status: PoolNotInitialized}
	}

	stats := db.Stats()

	return PoolStatus{
		Status:               PoolActive,
		MaxConnections:       stats.MaxOpenConnections,
		AllConnections:       stats.OpenConnections,
		InUseConnections:     stats.InUse,
		FreeConnections:      stats.Idle,
		AcquiringConnections: stats.WaitCount,
	}
}

// Close releases the pool. Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	if err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}

	s.logger.Info("catalog pool closed")

	return nil
}
