package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
)

// singletonFetch runs a single GET against a fixed URL and wraps the
// decoded value as the kind's one row, keyed by SingletonKey. It backs
// every kind that has exactly one cacheable value process-wide.
func singletonFetch[T types.Keyed](ctx context.Context, p *Planner, url string) ([]*types.CachedEntry, error) {
	var value T
	if err := p.gw.GetJSON(ctx, url, &value); err != nil {
		return nil, err
	}
	return []*types.CachedEntry{p.entry(value, time.Now())}, nil
}

// FetchMinecraftManifest resolves the singleton MinecraftManifest entry.
func (p *Planner) FetchMinecraftManifest(ctx context.Context) ([]*types.CachedEntry, error) {
	return singletonFetch[types.MinecraftManifest](ctx, p, fmt.Sprintf("%s/minecraft/v0/manifest.json", p.metaBaseURL))
}

// FetchCategories resolves the singleton Categories entry.
func (p *Planner) FetchCategories(ctx context.Context) ([]*types.CachedEntry, error) {
	return singletonFetch[types.Categories](ctx, p, fmt.Sprintf("%s/tag/category", p.registryBaseURL))
}

// FetchReportTypes resolves the singleton ReportTypes entry.
func (p *Planner) FetchReportTypes(ctx context.Context) ([]*types.CachedEntry, error) {
	return singletonFetch[types.ReportTypes](ctx, p, fmt.Sprintf("%s/tag/report_type", p.registryBaseURL))
}

// FetchLoaders resolves the singleton Loaders entry.
func (p *Planner) FetchLoaders(ctx context.Context) ([]*types.CachedEntry, error) {
	return singletonFetch[types.Loaders](ctx, p, fmt.Sprintf("%s/tag/loader", p.registryBaseURL))
}

// FetchGameVersions resolves the singleton GameVersions entry.
func (p *Planner) FetchGameVersions(ctx context.Context) ([]*types.CachedEntry, error) {
	return singletonFetch[types.GameVersions](ctx, p, fmt.Sprintf("%s/tag/game_version", p.registryBaseURL))
}

// FetchDonationPlatforms resolves the singleton DonationPlatforms entry.
func (p *Planner) FetchDonationPlatforms(ctx context.Context) ([]*types.CachedEntry, error) {
	return singletonFetch[types.DonationPlatforms](ctx, p, fmt.Sprintf("%s/tag/donation_platform", p.registryBaseURL))
}
