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

func newTestPlanner(t *testing.T, srv *httptest.Server) *Planner {
	t.Helper()
	gw := fetch.New(8, 2*time.Second)
	return New(gw, Config{
		RegistryBaseURL:         srv.URL,
		RegistryV3BaseURL:       srv.URL,
		MetaBaseURL:             srv.URL,
		ProfilesDir:             t.TempDir(),
		MaxConcurrentFileHashes: 4,
		ShortTTL:                30 * time.Minute,
		LongTTL:                30 * 24 * time.Hour,
	})
}

func TestFetchProjects_MatchesAndTombstones(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"p1","title":"One"}]`))
	}))
	defer srv.Close()

	p := newTestPlanner(t, srv)
	entries, err := p.FetchProjects(context.Background(), []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]*types.CachedEntry{}
	for _, e := range entries {
		byID[e.ID] = e
	}

	require.False(t, byID["p1"].IsTombstone())
	require.True(t, byID["p2"].IsTombstone())
}

func TestFetchProjects_AliasMatchIsCaseInsensitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"p1","slug":"example-mod","title":"One"}]`))
	}))
	defer srv.Close()

	p := newTestPlanner(t, srv)
	// Requested by a differently-cased alias than the one the response
	// carries; this must resolve to the real entry, not a spurious
	// tombstone alongside it.
	entries, err := p.FetchProjects(context.Background(), []string{"Example-Mod"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].IsTombstone())
	require.Equal(t, "p1", entries[0].ID)
}

func TestFetchProjects_AliasFromSlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"p1","slug":"Example-Mod","title":"One"}]`))
	}))
	defer srv.Close()

	p := newTestPlanner(t, srv)
	entries, err := p.FetchProjects(context.Background(), []string{"p1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Alias)
	require.Equal(t, "example-mod", *entries[0].Alias)
}
