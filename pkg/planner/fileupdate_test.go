package planner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kestrelcache/metacache/pkg/fetch"
	"github.com/kestrelcache/metacache/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestFetchFileUpdates_GroupsByLoaderAndGameVersion(t *testing.T) {
	var requestCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hash1":{"id":"v2","project_id":"p1"}}`))
	}))
	defer srv.Close()

	gw := fetch.New(4, time.Second)
	p := New(gw, Config{RegistryBaseURL: srv.URL, ShortTTL: time.Minute, LongTTL: time.Hour})

	keys := []string{
		types.FileUpdateKey("hash1", "fabric", "1.20.1"),
		types.FileUpdateKey("hash2", "fabric", "1.20.1"),
		types.FileUpdateKey("hash3", "forge", "1.20.1"),
	}
	entries, err := p.FetchFileUpdates(context.Background(), keys)
	require.NoError(t, err)
	require.Equal(t, 2, requestCount) // one group per (loader, game_version)
	require.NotEmpty(t, entries)
}

func TestFetchFileUpdates_UnparseableKeyTombstoned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not call upstream for an unparseable key")
	}))
	defer srv.Close()

	gw := fetch.New(4, time.Second)
	p := New(gw, Config{RegistryBaseURL: srv.URL, ShortTTL: time.Minute, LongTTL: time.Hour})

	entries, err := p.FetchFileUpdates(context.Background(), []string{"bad-key"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].IsTombstone())
}
