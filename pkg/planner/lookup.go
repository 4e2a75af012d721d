package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
)

// fetchByIDs GETs {baseURL}/{endpoint}?ids=[...] and decodes a JSON array
// of T. This is the shape shared by the registry's projects, versions,
// and users endpoints — the only difference between them is the
// endpoint name and the Keyed type being decoded.
func fetchByIDs[T any](ctx context.Context, p *Planner, baseURL, endpoint string, keys []string) ([]T, error) {
	idsJSON, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("planner: encode ids for %s: %w", endpoint, err)
	}
	url := fmt.Sprintf("%s/%s?ids=%s", baseURL, endpoint, idsJSON)

	var out []T
	if err := p.gw.GetJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchProjects resolves Project keys (ids or slugs) against the
// registry's bulk projects endpoint, tombstoning any key the response
// didn't include.
func (p *Planner) FetchProjects(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	projects, err := fetchByIDs[types.Project](ctx, p, p.registryBaseURL, "projects", keys)
	if err != nil {
		return nil, err
	}
	return p.resolveKeyed(types.KindProject, keys, projectsToKeyed(projects))
}

// FetchVersions resolves Version keys against the registry's bulk
// versions endpoint.
func (p *Planner) FetchVersions(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	versions, err := fetchByIDs[types.Version](ctx, p, p.registryBaseURL, "versions", keys)
	if err != nil {
		return nil, err
	}
	return p.resolveKeyed(types.KindVersion, keys, versionsToKeyed(versions))
}

// FetchUsers resolves User keys (ids or usernames) against the
// registry's bulk users endpoint.
func (p *Planner) FetchUsers(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	users, err := fetchByIDs[types.User](ctx, p, p.registryBaseURL, "users", keys)
	if err != nil {
		return nil, err
	}
	return p.resolveKeyed(types.KindUser, keys, usersToKeyed(users))
}

func projectsToKeyed(ps []types.Project) []types.Keyed {
	out := make([]types.Keyed, len(ps))
	for i, v := range ps {
		out[i] = v
	}
	return out
}

func versionsToKeyed(vs []types.Version) []types.Keyed {
	out := make([]types.Keyed, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func usersToKeyed(us []types.User) []types.Keyed {
	out := make([]types.Keyed, len(us))
	for i, v := range us {
		out[i] = v
	}
	return out
}

// resolveKeyed matches fetched values back against the requested keys
// (by id, exact, or by alias, case-insensitively — aliases are stored
// lowercased), emits one primary entry per match, and tombstones every
// requested key nothing matched.
func (p *Planner) resolveKeyed(kind types.Kind, requested []string, values []types.Keyed) ([]*types.CachedEntry, error) {
	now := time.Now()
	matchedIDs := make(map[string]bool, len(requested))
	matchedAliases := make(map[string]bool, len(requested))

	entries := make([]*types.CachedEntry, 0, len(values))
	for _, v := range values {
		e := p.entry(v, now)
		entries = append(entries, e)
		matchedIDs[e.ID] = true
		if e.Alias != nil {
			matchedAliases[strings.ToLower(*e.Alias)] = true
		}
	}

	for _, key := range requested {
		if matchedIDs[key] || matchedAliases[strings.ToLower(key)] {
			continue
		}
		entries = append(entries, p.tombstone(kind, key, now))
	}

	return entries, nil
}
