package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tracksort/pkg/catalog"
	"github.com/Sumatoshi-tech/tracksort/pkg/track"
)

func TestClient_All(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]track.Track{{ID: 1, Name: "Next Level"}, {ID: 2, Name: "Drama"}})
	}))
	defer srv.Close()

	tracks, err := catalog.NewClient(srv.URL+"/", nil).All(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "/audio/next level.mp3", tracks[0].FilePath)
	assert.Equal(t, "/audio/drama.mp3", tracks[1].FilePath)
}

func TestClient_BadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Internal Server Error"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := catalog.NewClient(srv.URL, srv.Client()).All(context.Background())
	require.ErrorIs(t, err, catalog.ErrBadStatus)
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := catalog.NewClient(url, nil).All(context.Background())
	require.Error(t, err)
}
