package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dhowden/tag"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

const (
	// DefaultScanBatch is the number of tracks written per transaction.
	DefaultScanBatch = 500

	scanQueueSize = 100
	unknownArtist = "unknown artist"
	unknownAlbum  = "unknown album"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// ReadTrack reads tags from one audio file. The title falls back to the file
// name and the album artist takes precedence over the track artist.
func ReadTrack(path string) (track.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return track.Track{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return track.Track{}, fmt.Errorf("read tags %s: %w", path, err)
	}

	artist := m.Artist()
	if albumArtist := m.AlbumArtist(); albumArtist != "" {
		artist = albumArtist
	}

	if artist == "" {
		artist = unknownArtist
	}

	title := m.Title()
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	album := m.Album()
	if album == "" {
		album = unknownAlbum
	}

	return track.Track{
		Name:     title,
		Artist:   artist,
		Album:    album,
		Year:     int64(m.Year()),
		FilePath: path,
	}, nil
}

// Scanner indexes a music directory into a Store.
type Scanner struct {
	// Workers is the number of tag readers. Zero means one per CPU.
	Workers int

	// BatchSize is the number of tracks per insert. Zero means DefaultScanBatch.
	BatchSize int

	Logger *slog.Logger
}

// ScanResult summarizes a scan.
type ScanResult struct {
	Files    int64         `json:"files"`
	Indexed  int64         `json:"indexed"`
	Skipped  int64         `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Scan walks root, reads tags in parallel and batch-inserts the tracks.
// Unreadable files are skipped; walk, store and context errors abort.
func (s Scanner) Scan(ctx context.Context, root string, store Store) (ScanResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultScanBatch
	}

	start := time.Now()

	var files, indexed, skipped atomic.Int64

	paths := make(chan string, scanQueueSize)
	tracks := make(chan track.Track, scanQueueSize)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(paths)

		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}

				logger.WarnContext(gctx, "skipping unreadable entry", "path", path, "error", err)

				return nil
			}

			if d.IsDir() || !IsAudioFile(path) {
				return nil
			}

			files.Add(1)

			select {
			case paths <- path:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	readers, rctx := errgroup.WithContext(gctx)

	for range workers {
		readers.Go(func() error {
			for path := range paths {
				t, err := ReadTrack(path)
				if err != nil {
					skipped.Add(1)
					logger.DebugContext(rctx, "skipping file", "path", path, "error", err)

					continue
				}

				select {
				case tracks <- t:
				case <-rctx.Done():
					return rctx.Err()
				}
			}

			return nil
		})
	}

	group.Go(func() error {
		defer close(tracks)

		return readers.Wait()
	})

	group.Go(func() error {
		batch := make([]track.Track, 0, batchSize)

		flush := func() error {
			if len(batch) == 0 {
				return nil
			}

			n, err := store.InsertBatch(gctx, batch)
			if err != nil {
				return err
			}

			indexed.Add(int64(n))
			batch = batch[:0]

			return nil
		}

		for t := range tracks {
			batch = append(batch, t)

			if len(batch) >= batchSize {
				err := flush()
				if err != nil {
					return err
				}
			}
		}

		return flush()
	})

	err := group.Wait()

	res := ScanResult{
		Files:    files.Load(),
		Indexed:  indexed.Load(),
		Skipped:  skipped.Load(),
		Duration: time.Since(start),
	}

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			err = ctx.Err()
		}

		return res, fmt.Errorf("scan %s: %w", root, err)
	}

	logger.InfoContext(ctx, "scan finished",
		"catalog.files", res.Files, "catalog.indexed", res.Indexed,
		"catalog.skipped", res.Skipped, "catalog.duration", res.Duration)

	return res, nil
}
