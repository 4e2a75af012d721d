package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
)

// FetchOrganizations resolves Organization keys (ids or slugs) against
// the registry v3 bulk organizations endpoint. Each organization's
// member list seeds a derived Team entry (keyed by the org's team_id)
// and a derived User entry per member, since an organization response
// already carries the data those fetches would otherwise need.
func (p *Planner) FetchOrganizations(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	idsJSON, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("planner: encode organization ids: %w", err)
	}
	url := fmt.Sprintf("%s/organizations?ids=%s", p.registryV3BaseURL, idsJSON)

	var orgs []types.Organization
	if err := p.gw.GetJSON(ctx, url, &orgs); err != nil {
		return nil, err
	}

	now := time.Now()
	matchedIDs := make(map[string]bool, len(keys))
	matchedAliases := make(map[string]bool, len(keys))
	var entries []*types.CachedEntry

	for _, org := range orgs {
		primary := p.entry(org, now)
		entries = append(entries, primary)
		matchedIDs[org.ID] = true
		matchedAliases[strings.ToLower(org.Slug)] = true

		entries = append(entries, &types.CachedEntry{
			ID:       org.TeamID,
			DataType: types.KindTeam,
			Data:     types.TeamMembers(org.Members),
			Expires:  p.expiry(types.KindTeam, now),
		})
		for _, m := range org.Members {
			entries = append(entries, p.entry(m.User, now))
		}
	}

	for _, key := range keys {
		if !matchedIDs[key] && !matchedAliases[strings.ToLower(key)] {
			entries = append(entries, p.tombstone(types.KindOrganization, key, now))
		}
	}

	return entries, nil
}
