package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
)

const (
	id3v1Size      = 128
	id3v1FieldSize = 30
	audioPadding   = 256
)

// writeID3v1 writes a file whose only tag block is a trailing ID3v1 tag.
func writeID3v1(t *testing.T, path, title, artist, album, year string) {
	t.Helper()

	tagBlock := make([]byte, 0, id3v1Size)
	tagBlock = append(tagBlock, "TAG"...)
	tagBlock = append(tagBlock, pad(title, id3v1FieldSize)...)
	tagBlock = append(tagBlock, pad(artist, id3v1FieldSize)...)
	tagBlock = append(tagBlock, pad(album, id3v1FieldSize)...)
	tagBlock = append(tagBlock, pad(year, 4)...)
	tagBlock = append(tagBlock, pad("", id3v1FieldSize)...)
	tagBlock = append(tagBlock, 0xFF)

	body := append(make([]byte, audioPadding), tagBlock...)
	require.NoError(t, os.WriteFile(path, body, 0o600))
}

func pad(s string, n int) []byte {
	out := make([]byte, n)
	copy(out, s)

	return out
}

func TestReadTrack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "whiplash.mp3")
	writeID3v1(t, path, "Whiplash", "aespa", "Whiplash", "2024")

	tr, err := catalog.ReadTrack(path)
	require.NoError(t, err)

	assert.Equal(t, "Whiplash", tr.Name)
	assert.Equal(t, "aespa", tr.Artist)
	assert.Equal(t, "Whiplash", tr.Album)
	assert.Equal(t, int64(2024), tr.Year)
	assert.Equal(t, path, tr.FilePath)
}

func TestReadTrack_NoTags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "silence.mp3")
	require.NoError(t, os.WriteFile(path, make([]byte, audioPadding), 0o600))

	_, err := catalog.ReadTrack(path)
	require.Error(t, err)
}

func TestIsAudioFile(t *testing.T) {
	t.Parallel()

	assert.True(t, catalog.IsAudioFile("a/b/song.MP3"))
	assert.True(t, catalog.IsAudioFile("song.flac"))
	assert.False(t, catalog.IsAudioFile("cover.jpg"))
	assert.False(t, catalog.IsAudioFile("README"))
}

func TestScanner_Scan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sub := filepath.Join(root, "aespa")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	writeID3v1(t, filepath.Join(sub, "drama.mp3"), "Drama", "aespa", "Drama", "2023")
	writeID3v1(t, filepath.Join(sub, "spicy.mp3"), "Spicy", "aespa", "MY WORLD", "2023")
	writeID3v1(t, filepath.Join(root, "savage.mp3"), "Savage", "aespa", "Savage", "2021")
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.mp3"), []byte("xx"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip"), 0o600))

	store := openStore(t)

	res, err := catalog.Scanner{Workers: 2, BatchSize: 2}.Scan(context.Background(), root, store)
	require.NoError(t, err)

	assert.Equal(t, int64(4), res.Files)
	assert.Equal(t, int64(3), res.Indexed)
	assert.Equal(t, int64(1), res.Skipped)

	all, err := store.All(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(all))
	for _, tr := range all {
		names = append(names, tr.Name)
	}

	assert.ElementsMatch(t, []string{"Drama", "Spicy", "Savage"}, names)
}

func TestScanner_MissingRoot(t *testing.T) {
	t.Parallel()

	store := openStore(t)

	_, err := catalog.Scanner{}.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"), store)
	require.Error(t, err)
}

func TestScanner_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeID3v1(t, filepath.Join(root, "drama.mp3"), "Drama", "aespa", "Drama", "2023")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := catalog.Scanner{Workers: 1}.Scan(ctx, root, openStore(t))
	require.ErrorIs(t, err, context.Canceled)
}
