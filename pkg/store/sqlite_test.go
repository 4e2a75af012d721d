package store

import (
	"context"
	"testing"

	"github.com/kestrelcache/metacache/pkg/types"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_UpsertAndLookupByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := &types.CachedEntry{
		ID:       "p1",
		DataType: types.KindProject,
		Data:     types.Project{ID: "p1", Title: "Example Mod"},
		Expires:  1000,
	}

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{entry}))

	got, err := s.Lookup(ctx, types.KindProject, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "p1", got[0].ID)
	require.Equal(t, int64(1000), got[0].Expires)

	project, ok := got[0].Data.(types.Project)
	require.True(t, ok)
	require.Equal(t, "Example Mod", project.Title)
}

func TestSQLiteStore_LookupByAlias(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	slug := "example-mod"
	entry := &types.CachedEntry{
		ID:       "p1",
		DataType: types.KindProject,
		Alias:    &slug,
		Data:     types.Project{ID: "p1", Slug: &slug, Title: "Example Mod"},
		Expires:  1000,
	}
	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{entry}))

	got, err := s.Lookup(ctx, types.KindProject, []string{"example-mod"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "p1", got[0].ID)
}

func TestSQLiteStore_LookupByAliasIsCaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	slug := "example-mod" // stored lowercased, per CacheAlias()
	entry := &types.CachedEntry{
		ID:       "p1",
		DataType: types.KindProject,
		Alias:    &slug,
		Data:     types.Project{ID: "p1", Slug: &slug, Title: "Example Mod"},
		Expires:  1000,
	}
	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{entry}))

	got, err := s.Lookup(ctx, types.KindProject, []string{"Example-Mod"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "p1", got[0].ID)
}

func TestSQLiteStore_UpsertTombstone(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := &types.CachedEntry{
		ID:       "missing-1",
		DataType: types.KindProject,
		Data:     nil,
		Expires:  500,
	}
	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{entry}))

	got, err := s.Lookup(ctx, types.KindProject, []string{"missing-1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].IsTombstone())
}

func TestSQLiteStore_UpsertReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{{
		ID:       "p1",
		DataType: types.KindProject,
		Data:     types.Project{ID: "p1", Title: "Old Title"},
		Expires:  100,
	}}))
	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{{
		ID:       "p1",
		DataType: types.KindProject,
		Data:     types.Project{ID: "p1", Title: "New Title"},
		Expires:  200,
	}}))

	got, err := s.Lookup(ctx, types.KindProject, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(200), got[0].Expires)
	project := got[0].Data.(types.Project)
	require.Equal(t, "New Title", project.Title)
}

func TestSQLiteStore_LookupMissingReturnsEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Lookup(context.Background(), types.KindProject, []string{"nope"})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSQLiteStore_Prune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{
		{ID: "old", DataType: types.KindProject, Data: types.Project{ID: "old"}, Expires: 10},
		{ID: "new", DataType: types.KindProject, Data: types.Project{ID: "new"}, Expires: 9999999999},
	}))

	n, err := s.Prune(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	got, err := s.Lookup(ctx, types.KindProject, []string{"old", "new"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].ID)
}

func TestSQLiteStore_Stats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{
		{ID: "p1", DataType: types.KindProject, Data: types.Project{ID: "p1"}, Expires: 100},
		{ID: "p2", DataType: types.KindProject, Data: types.Project{ID: "p2"}, Expires: 100},
		{ID: "u1", DataType: types.KindUser, Data: types.User{ID: "u1"}, Expires: 100},
	}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats[types.KindProject])
	require.Equal(t, int64(1), stats[types.KindUser])
}

func TestSQLiteStore_BulkLookupMultipleKeys(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []*types.CachedEntry{
		{ID: "v1", DataType: types.KindVersion, Data: types.Version{ID: "v1"}, Expires: 100},
		{ID: "v2", DataType: types.KindVersion, Data: types.Version{ID: "v2"}, Expires: 100},
		{ID: "v3", DataType: types.KindVersion, Data: types.Version{ID: "v3"}, Expires: 100},
	}))

	got, err := s.Lookup(ctx, types.KindVersion, []string{"v1", "v3", "nonexistent"})
	require.NoError(t, err)
	require.Len(t, got, 2)
}
