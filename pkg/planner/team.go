package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
)

// FetchTeams resolves Team keys (team ids) against the registry v3 bulk
// teams endpoint, which returns one member list per requested id. Each
// member's User is cached as a derived (non-primary) entry alongside the
// primary Team entry.
func (p *Planner) FetchTeams(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	idsJSON, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("planner: encode team ids: %w", err)
	}
	url := fmt.Sprintf("%s/teams?ids=%s", p.registryV3BaseURL, idsJSON)

	var teams [][]types.TeamMember
	if err := p.gw.GetJSON(ctx, url, &teams); err != nil {
		return nil, err
	}

	now := time.Now()
	matched := make(map[string]bool, len(keys))
	var entries []*types.CachedEntry

	for _, members := range teams {
		primary := p.entry(types.TeamMembers(members), now)
		entries = append(entries, primary)
		matched[primary.ID] = true

		for _, m := range members {
			entries = append(entries, p.entry(m.User, now))
		}
	}

	for _, key := range keys {
		if !matched[key] {
			entries = append(entries, p.tombstone(types.KindTeam, key, now))
		}
	}

	return entries, nil
}
