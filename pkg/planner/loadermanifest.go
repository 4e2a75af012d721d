package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
	"golang.org/x/sync/errgroup"
)

// FetchLoaderManifests resolves LoaderManifest keys (loader names) by
// fetching each loader's manifest from the meta service in parallel.
// Unlike the registry's bulk endpoints, the meta service has no
// multi-loader lookup, so concurrency here comes from fanning out one
// request per key rather than from a single batched call.
func (p *Planner) FetchLoaderManifests(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	now := time.Now()
	entries := make([]*types.CachedEntry, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, loader := range keys {
		i, loader := i, loader
		g.Go(func() error {
			url := fmt.Sprintf("%s/%s/v0/manifest.json", p.metaBaseURL, loader)
			var manifest types.Manifest
			if err := p.gw.GetJSON(gctx, url, &manifest); err != nil {
				return fmt.Errorf("planner: loader manifest for %s: %w", loader, err)
			}
			value := types.CachedLoaderManifest{Loader: loader, Manifest: manifest}

			mu.Lock()
			entries[i] = p.entry(value, now)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
