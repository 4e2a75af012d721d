package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
)

// FetchFileUpdates resolves FileUpdate keys ("{hash}-{loader}-{game_version}")
// by grouping them per (loader, game_version) pair and issuing one
// version-files-update request per group, since the registry's update
// check only accepts a single loader/game_version pair per call. A key
// that doesn't parse into the three-part shape is tombstoned rather than
// sent upstream.
func (p *Planner) FetchFileUpdates(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	now := time.Now()
	var entries []*types.CachedEntry

	groups := make(map[fileUpdateGroupKey][]string)
	for _, key := range keys {
		hash, loader, gameVersion, ok := splitFileUpdateKey(key)
		if !ok {
			entries = append(entries, p.tombstone(types.KindFileUpdate, key, now))
			continue
		}
		g := fileUpdateGroupKey{loader: loader, gameVersion: gameVersion}
		groups[g] = append(groups[g], hash)
	}

	for g, hashes := range groups {
		reqBody := versionFilesUpdateRequest{
			Algorithm:    "sha1",
			Hashes:       hashes,
			Loaders:      []string{g.loader},
			GameVersions: []string{g.gameVersion},
		}

		var matches map[string]types.Version
		url := fmt.Sprintf("%s/version_files/update", p.registryBaseURL)
		if err := p.gw.PostJSON(ctx, url, reqBody, &matches); err != nil {
			return nil, err
		}

		for _, hash := range hashes {
			update := types.CachedFileUpdate{Hash: hash, Loader: g.loader, GameVersion: g.gameVersion}
			if version, ok := matches[hash]; ok {
				update.UpdateVersionID = &version.ID
				entries = append(entries, p.entry(version, now))
			}
			entries = append(entries, p.entry(update, now))
		}
	}

	return entries, nil
}

type fileUpdateGroupKey struct {
	loader      string
	gameVersion string
}

type versionFilesUpdateRequest struct {
	Algorithm    string   `json:"algorithm"`
	Hashes       []string `json:"hashes"`
	Loaders      []string `json:"loaders"`
	GameVersions []string `json:"game_versions"`
}

// splitFileUpdateKey splits a "{hash}-{loader}-{game_version}" key into
// its three parts. Game versions themselves never contain '-', so a
// plain three-way split (at most) is sufficient; keys with fewer than
// three parts fail to parse.
func splitFileUpdateKey(key string) (hash, loader, gameVersion string, ok bool) {
	parts := strings.SplitN(key, "-", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
