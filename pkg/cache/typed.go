package cache

import (
	"context"

	"github.com/kestrelcache/metacache/pkg/types"
)

// typed extracts the Data payload of kind T from a GetMany result,
// skipping tombstones — callers that want to know about a miss should
// inspect the CachedEntry slice themselves.
func typed[T any](entries []*types.CachedEntry) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if e.IsTombstone() {
			continue
		}
		if v, ok := e.Data.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// GetProjects resolves Project keys (ids or slugs).
func (e *Engine) GetProjects(ctx context.Context, keys []string, behavior types.Behavior) ([]types.Project, error) {
	entries, err := e.GetMany(ctx, types.KindProject, keys, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.Project](entries), nil
}

// GetProject resolves a single Project key.
func (e *Engine) GetProject(ctx context.Context, key string, behavior types.Behavior) (*types.Project, error) {
	results, err := e.GetProjects(ctx, []string{key}, behavior)
	return first(results, err)
}

// GetVersions resolves Version keys.
func (e *Engine) GetVersions(ctx context.Context, keys []string, behavior types.Behavior) ([]types.Version, error) {
	entries, err := e.GetMany(ctx, types.KindVersion, keys, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.Version](entries), nil
}

// GetVersion resolves a single Version key.
func (e *Engine) GetVersion(ctx context.Context, key string, behavior types.Behavior) (*types.Version, error) {
	results, err := e.GetVersions(ctx, []string{key}, behavior)
	return first(results, err)
}

// GetUsers resolves User keys (ids or usernames).
func (e *Engine) GetUsers(ctx context.Context, keys []string, behavior types.Behavior) ([]types.User, error) {
	entries, err := e.GetMany(ctx, types.KindUser, keys, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.User](entries), nil
}

// GetUser resolves a single User key.
func (e *Engine) GetUser(ctx context.Context, key string, behavior types.Behavior) (*types.User, error) {
	results, err := e.GetUsers(ctx, []string{key}, behavior)
	return first(results, err)
}

// GetTeam resolves a single Team's member list.
func (e *Engine) GetTeam(ctx context.Context, teamID string, behavior types.Behavior) (types.TeamMembers, error) {
	entries, err := e.GetMany(ctx, types.KindTeam, []string{teamID}, behavior)
	if err != nil {
		return nil, err
	}
	members := typed[types.TeamMembers](entries)
	if len(members) == 0 {
		return nil, nil
	}
	return members[0], nil
}

// GetOrganizations resolves Organization keys (ids or slugs).
func (e *Engine) GetOrganizations(ctx context.Context, keys []string, behavior types.Behavior) ([]types.Organization, error) {
	entries, err := e.GetMany(ctx, types.KindOrganization, keys, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.Organization](entries), nil
}

// GetOrganization resolves a single Organization key.
func (e *Engine) GetOrganization(ctx context.Context, key string, behavior types.Behavior) (*types.Organization, error) {
	results, err := e.GetOrganizations(ctx, []string{key}, behavior)
	return first(results, err)
}

// GetFiles resolves File keys (sha1 content hashes) to match results.
func (e *Engine) GetFiles(ctx context.Context, hashes []string, behavior types.Behavior) ([]types.CachedFile, error) {
	entries, err := e.GetMany(ctx, types.KindFile, hashes, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.CachedFile](entries), nil
}

// GetLoaderManifests resolves LoaderManifest keys (loader names).
func (e *Engine) GetLoaderManifests(ctx context.Context, loaders []string, behavior types.Behavior) ([]types.CachedLoaderManifest, error) {
	entries, err := e.GetMany(ctx, types.KindLoaderManifest, loaders, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.CachedLoaderManifest](entries), nil
}

// GetMinecraftManifest resolves the singleton Minecraft version manifest.
func (e *Engine) GetMinecraftManifest(ctx context.Context, behavior types.Behavior) (*types.MinecraftManifest, error) {
	entries, err := e.GetMany(ctx, types.KindMinecraftManifest, []string{types.SingletonKey}, behavior)
	if err != nil {
		return nil, err
	}
	return first(typed[types.MinecraftManifest](entries), nil)
}

// GetCategories resolves the singleton category list.
func (e *Engine) GetCategories(ctx context.Context, behavior types.Behavior) (types.Categories, error) {
	entries, err := e.GetMany(ctx, types.KindCategories, []string{types.SingletonKey}, behavior)
	if err != nil {
		return nil, err
	}
	values := typed[types.Categories](entries)
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// GetReportTypes resolves the singleton report type list.
func (e *Engine) GetReportTypes(ctx context.Context, behavior types.Behavior) (types.ReportTypes, error) {
	entries, err := e.GetMany(ctx, types.KindReportTypes, []string{types.SingletonKey}, behavior)
	if err != nil {
		return nil, err
	}
	values := typed[types.ReportTypes](entries)
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// GetLoaders resolves the singleton loader list.
func (e *Engine) GetLoaders(ctx context.Context, behavior types.Behavior) (types.Loaders, error) {
	entries, err := e.GetMany(ctx, types.KindLoaders, []string{types.SingletonKey}, behavior)
	if err != nil {
		return nil, err
	}
	values := typed[types.Loaders](entries)
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// GetGameVersions resolves the singleton game version list.
func (e *Engine) GetGameVersions(ctx context.Context, behavior types.Behavior) (types.GameVersions, error) {
	entries, err := e.GetMany(ctx, types.KindGameVersions, []string{types.SingletonKey}, behavior)
	if err != nil {
		return nil, err
	}
	values := typed[types.GameVersions](entries)
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// GetDonationPlatforms resolves the singleton donation platform list.
func (e *Engine) GetDonationPlatforms(ctx context.Context, behavior types.Behavior) (types.DonationPlatforms, error) {
	entries, err := e.GetMany(ctx, types.KindDonationPlatforms, []string{types.SingletonKey}, behavior)
	if err != nil {
		return nil, err
	}
	values := typed[types.DonationPlatforms](entries)
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// GetFileHashes hashes local files (keys are FileHash keys, see
// types.FileHashKey) under the configured profiles directory.
func (e *Engine) GetFileHashes(ctx context.Context, keys []string, behavior types.Behavior) ([]types.CachedFileHash, error) {
	entries, err := e.GetMany(ctx, types.KindFileHash, keys, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.CachedFileHash](entries), nil
}

// GetFileUpdates resolves FileUpdate keys (see types.FileUpdateKey).
func (e *Engine) GetFileUpdates(ctx context.Context, keys []string, behavior types.Behavior) ([]types.CachedFileUpdate, error) {
	entries, err := e.GetMany(ctx, types.KindFileUpdate, keys, behavior)
	if err != nil {
		return nil, err
	}
	return typed[types.CachedFileUpdate](entries), nil
}

func first[T any](values []T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &values[0], nil
}
