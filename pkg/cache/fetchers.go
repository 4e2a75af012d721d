package cache

import (
	"context"

	"github.com/kestrelcache/metacache/pkg/planner"
	"github.com/kestrelcache/metacache/pkg/types"
)

// FetchersFromPlanner builds the kind->FetchFunc table New expects,
// wiring every kind this repository supports to the matching
// planner.Planner method. Singleton kinds ignore the keys argument since
// a planner singleton fetch always resolves the one row under
// types.SingletonKey.
func FetchersFromPlanner(p *planner.Planner) map[types.Kind]FetchFunc {
	return map[types.Kind]FetchFunc{
		types.KindProject:           p.FetchProjects,
		types.KindVersion:           p.FetchVersions,
		types.KindUser:              p.FetchUsers,
		types.KindTeam:              p.FetchTeams,
		types.KindOrganization:      p.FetchOrganizations,
		types.KindFile:              p.FetchFiles,
		types.KindLoaderManifest:    p.FetchLoaderManifests,
		types.KindFileHash:          p.FetchFileHashes,
		types.KindFileUpdate:        p.FetchFileUpdates,
		types.KindMinecraftManifest: ignoreKeys(p.FetchMinecraftManifest),
		types.KindCategories:        ignoreKeys(p.FetchCategories),
		types.KindReportTypes:       ignoreKeys(p.FetchReportTypes),
		types.KindLoaders:           ignoreKeys(p.FetchLoaders),
		types.KindGameVersions:      ignoreKeys(p.FetchGameVersions),
		types.KindDonationPlatforms: ignoreKeys(p.FetchDonationPlatforms),
	}
}

// ignoreKeys adapts a no-argument singleton fetch to the FetchFunc shape.
func ignoreKeys(fn func(ctx context.Context) ([]*types.CachedEntry, error)) FetchFunc {
	return func(ctx context.Context, _ []string) ([]*types.CachedEntry, error) {
		return fn(ctx)
	}
}
