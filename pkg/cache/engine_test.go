package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kestrelcache/metacache/pkg/fetch"
	"github.com/kestrelcache/metacache/pkg/store"
	"github.com/kestrelcache/metacache/pkg/types"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// countingFetcher returns a deterministic Project for each key and
// counts how many times it was invoked, so tests can assert a
// background refresh actually ran.
func countingFetcher(calls *int32, title string) FetchFunc {
	return func(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
		atomic.AddInt32(calls, 1)
		now := time.Now()
		entries := make([]*types.CachedEntry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, &types.CachedEntry{
				ID:       k,
				DataType: types.KindProject,
				Data:     types.Project{ID: k, Title: title},
				Expires:  now.Add(30 * time.Minute).Unix(),
			})
		}
		return entries, nil
	}
}

func TestEngine_MissFetchesAndCaches(t *testing.T) {
	var calls int32
	e := New(openTestStore(t), map[types.Kind]FetchFunc{
		types.KindProject: countingFetcher(&calls, "v1"),
	})

	projects, err := e.GetProjects(context.Background(), []string{"p1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "v1", projects[0].Title)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEngine_FreshHitDoesNotRefetch(t *testing.T) {
	var calls int32
	e := New(openTestStore(t), map[types.Kind]FetchFunc{
		types.KindProject: countingFetcher(&calls, "v1"),
	})
	ctx := context.Background()

	_, err := e.GetProjects(ctx, []string{"p1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)

	_, err = e.GetProjects(ctx, []string{"p1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)

	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEngine_AliasLookupIsCaseInsensitive(t *testing.T) {
	var calls int32
	slug := "example-mod" // stored lowercased, per types.Project.CacheAlias
	fetcher := func(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
		atomic.AddInt32(&calls, 1)
		now := time.Now()
		return []*types.CachedEntry{{
			ID:       "p1",
			DataType: types.KindProject,
			Alias:    &slug,
			Data:     types.Project{ID: "p1", Slug: &slug, Title: "Example Mod"},
			Expires:  now.Add(30 * time.Minute).Unix(),
		}}, nil
	}
	e := New(openTestStore(t), map[types.Kind]FetchFunc{types.KindProject: fetcher})
	ctx := context.Background()

	_, err := e.GetProjects(ctx, []string{"example-mod"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	// A differently-cased follow-up lookup must hit the cached alias and
	// never reach the gateway fetcher again.
	projects, err := e.GetProjects(ctx, []string{"Example-Mod"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Example Mod", projects[0].Title)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEngine_StaleEntryServedImmediatelyAndRefreshedInBackground(t *testing.T) {
	var calls int32
	s := openTestStore(t)
	ctx := context.Background()

	// Seed an already-expired entry directly.
	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{{
		ID:       "p1",
		DataType: types.KindProject,
		Data:     types.Project{ID: "p1", Title: "stale"},
		Expires:  time.Now().Add(-time.Minute).Unix(),
	}}))

	e := New(s, map[types.Kind]FetchFunc{
		types.KindProject: countingFetcher(&calls, "fresh"),
	})

	projects, err := e.GetProjects(ctx, []string{"p1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "stale", projects[0].Title) // stale value served immediately

	require.NoError(t, e.Wait(ctx))
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	refreshed, err := e.GetProjects(ctx, []string{"p1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Equal(t, "fresh", refreshed[0].Title)
}

func TestEngine_MustRevalidateFetchesSynchronously(t *testing.T) {
	var calls int32
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{{
		ID:       "p1",
		DataType: types.KindProject,
		Data:     types.Project{ID: "p1", Title: "stale"},
		Expires:  time.Now().Add(-time.Minute).Unix(),
	}}))

	e := New(s, map[types.Kind]FetchFunc{
		types.KindProject: countingFetcher(&calls, "fresh"),
	})

	projects, err := e.GetProjects(ctx, []string{"p1"}, types.MustRevalidate)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "fresh", projects[0].Title)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEngine_BypassAlwaysFetches(t *testing.T) {
	var calls int32
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{{
		ID:       "p1",
		DataType: types.KindProject,
		Data:     types.Project{ID: "p1", Title: "cached"},
		Expires:  time.Now().Add(time.Hour).Unix(),
	}}))

	e := New(s, map[types.Kind]FetchFunc{
		types.KindProject: countingFetcher(&calls, "forced"),
	})

	projects, err := e.GetProjects(ctx, []string{"p1"}, types.Bypass)
	require.NoError(t, err)
	require.Equal(t, "forced", projects[0].Title)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEngine_TombstoneCachedAsMiss(t *testing.T) {
	var calls int32
	e := New(openTestStore(t), map[types.Kind]FetchFunc{
		types.KindProject: func(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
			atomic.AddInt32(&calls, 1)
			now := time.Now()
			var entries []*types.CachedEntry
			for _, k := range keys {
				entries = append(entries, &types.CachedEntry{
					ID:       k,
					DataType: types.KindProject,
					Data:     nil,
					Expires:  now.Add(30 * time.Minute).Unix(),
				})
			}
			return entries, nil
		},
	})
	ctx := context.Background()

	projects, err := e.GetProjects(ctx, []string{"missing"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Empty(t, projects) // tombstones never surface as values

	_, err = e.GetProjects(ctx, []string{"missing"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls)) // second call was a tombstone hit, no refetch
}

func TestEngine_SkipOfflineSwallowsFetchError(t *testing.T) {
	offlineErr := &fetch.OfflineError{URL: "http://example.invalid", Err: fmt.Errorf("connection refused")}
	e := New(openTestStore(t), map[types.Kind]FetchFunc{
		types.KindProject: func(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
			return nil, offlineErr
		},
	})

	projects, err := e.GetProjects(context.Background(), []string{"p1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestEngine_StaleWhileRevalidatePropagatesFetchError(t *testing.T) {
	offlineErr := &fetch.OfflineError{URL: "http://example.invalid", Err: fmt.Errorf("connection refused")}
	e := New(openTestStore(t), map[types.Kind]FetchFunc{
		types.KindProject: func(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
			return nil, offlineErr
		},
	})

	_, err := e.GetProjects(context.Background(), []string{"p1"}, types.StaleWhileRevalidate)
	require.Error(t, err)
}

func TestEngine_DerivedEntriesNotReturnedAsPrimary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := New(s, map[types.Kind]FetchFunc{
		types.KindOrganization: func(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
			now := time.Now()
			return []*types.CachedEntry{
				{ID: "org1", DataType: types.KindOrganization, Data: types.Organization{ID: "org1", TeamID: "team1"}, Expires: now.Add(time.Hour).Unix()},
				{ID: "team1", DataType: types.KindTeam, Data: types.TeamMembers{}, Expires: now.Add(time.Hour).Unix()},
				{ID: "user1", DataType: types.KindUser, Data: types.User{ID: "user1"}, Expires: now.Add(time.Hour).Unix()},
			}, nil
		},
	})

	orgs, err := e.GetOrganizations(ctx, []string{"org1"}, types.StaleWhileRevalidateSkipOffline)
	require.NoError(t, err)
	require.Len(t, orgs, 1)

	// The derived Team row should have been upserted as a side effect.
	team, err := s.Lookup(ctx, types.KindTeam, []string{"team1"})
	require.NoError(t, err)
	require.Len(t, team, 1)
}
