package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/query"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

var (
	_ catalog.Store = (*catalog.SQLiteStore)(nil)
	_ query.Source  = (*catalog.SQLiteStore)(nil)
	_ query.Source  = (*catalog.Client)(nil)
)

const testConnectionLimit = 3

func sampleTracks() []track.Track {
	return []track.Track{
		{Name: "Next Level", Artist: "aespa", Album: "Next Level", Year: 2021, Popularity: 70, DurationMs: 221000,
			Cover: "https://img/next-level.jpg", PreviewURL: "https://p/next-level.mp3"},
		{Name: "Supernova", Artist: "aespa", Album: "Armageddon", Year: 2024, Popularity: 80, DurationMs: 178000},
		{Name: "Drama", Artist: "aespa", Album: "Drama", Year: 2023, Popularity: 75, DurationMs: 214000},
	}
}

func openStore(t *testing.T) *catalog.SQLiteStore {
	t.Helper()

	store, err := catalog.Open(context.Background(), catalog.Options{
		Path:            filepath.Join(t.TempDir(), "catalog.db"),
		ConnectionLimit: testConnectionLimit,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSQLiteStore_InsertAndAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	n, err := store.InsertBatch(ctx, sampleTracks())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, []int64{1, 2, 3}, track.IDs(all))
	assert.Equal(t, "Next Level", all[0].Name)
	assert.Equal(t, "https://img/next-level.jpg", all[0].Cover)
	assert.Equal(t, "https://p/next-level.mp3", all[0].PreviewURL)
	assert.Equal(t, int64(221000), all[0].DurationMs)
	assert.Empty(t, all[1].PreviewURL)
	assert.Equal(t, int64(2024), all[1].Year)
}

func TestSQLiteStore_EmptyTable(t *testing.T) {
	t.Parallel()

	store := openStore(t)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	n, err := store.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_PoolStatus(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	require.NoError(t, store.Ping(context.Background()))

	status := store.PoolStatus()
	assert.Equal(t, catalog.PoolActive, status.Status)
	assert.Equal(t, testConnectionLimit, status.MaxConnections)
	assert.LessOrEqual(t, status.AllConnections, testConnectionLimit)
	assert.Equal(t, status.AllConnections, status.InUseConnections+status.FreeConnections)
}

func TestSQLiteStore_Closed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.Equal(t, catalog.PoolNotInitialized, store.PoolStatus().Status)

	_, err := store.All(ctx)
	require.ErrorIs(t, err, catalog.ErrNotInitialized)

	_, err = store.Count(ctx)
	require.ErrorIs(t, err, catalog.ErrNotInitialized)

	require.ErrorIs(t, store.Ping(ctx), catalog.ErrNotInitialized)

	var nilStore *catalog.SQLiteStore
	assert.Equal(t, catalog.PoolNotInitialized, nilStore.PoolStatus().Status)
}

func TestSQLiteStore_FeedsQueryLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	_, err := store.InsertBatch(ctx, sampleTracks())
	require.NoError(t, err)

	ds := query.Load(ctx, store, nil)
	require.NoError(t, ds.Err)
	assert.False(t, ds.NoData)
	assert.Len(t, ds.Tracks, 3)
}
