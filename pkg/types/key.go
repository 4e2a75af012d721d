package types

import (
	"fmt"
	"strings"
)

// Keyed is implemented by every Value whose store key is derived from its
// own fields rather than being a fixed singleton. Planner code calls
// CacheKey/CacheAlias after a fetch to build the CachedEntry it upserts.
type Keyed interface {
	Value
	CacheKey() string
	CacheAlias() *string
}

func (p Project) CacheKey() string { return p.ID }

func (p Project) CacheAlias() *string {
	if p.Slug == nil {
		return nil
	}
	alias := strings.ToLower(*p.Slug)
	return &alias
}

func (v Version) CacheKey() string        { return v.ID }
func (v Version) CacheAlias() *string     { return nil }

func (u User) CacheKey() string { return u.ID }

func (u User) CacheAlias() *string {
	alias := strings.ToLower(u.Username)
	return &alias
}

// CacheKey for a team's member list is the team_id shared by every
// member, or the singleton key if the team has none.
func (t TeamMembers) CacheKey() string {
	if len(t) == 0 {
		return SingletonKey
	}
	return t[0].TeamID
}

func (t TeamMembers) CacheAlias() *string { return nil }

func (o Organization) CacheKey() string { return o.ID }

func (o Organization) CacheAlias() *string {
	alias := strings.ToLower(o.Slug)
	return &alias
}

func (f CachedFile) CacheKey() string    { return f.Hash }
func (f CachedFile) CacheAlias() *string { return nil }

func (m CachedLoaderManifest) CacheKey() string    { return m.Loader }
func (m CachedLoaderManifest) CacheAlias() *string { return nil }

func (MinecraftManifest) CacheKey() string    { return SingletonKey }
func (MinecraftManifest) CacheAlias() *string { return nil }

func (Categories) CacheKey() string    { return SingletonKey }
func (Categories) CacheAlias() *string { return nil }

func (ReportTypes) CacheKey() string    { return SingletonKey }
func (ReportTypes) CacheAlias() *string { return nil }

func (Loaders) CacheKey() string    { return SingletonKey }
func (Loaders) CacheAlias() *string { return nil }

func (GameVersions) CacheKey() string    { return SingletonKey }
func (GameVersions) CacheAlias() *string { return nil }

func (DonationPlatforms) CacheKey() string    { return SingletonKey }
func (DonationPlatforms) CacheAlias() *string { return nil }

// FileHashKey derives the FileHash kind's key from the fields the
// planner has before a CachedFileHash exists: a local path is addressed
// by its size and relative path, so two files with the same name in
// different profiles never collide.
func FileHashKey(size uint64, path string) string {
	return fmt.Sprintf("%d-%s", size, path)
}

func (h CachedFileHash) CacheKey() string    { return FileHashKey(h.Size, h.Path) }
func (h CachedFileHash) CacheAlias() *string { return nil }

// FileUpdateKey derives the FileUpdate kind's key from the triple that
// identifies one update check.
func FileUpdateKey(hash, loader, gameVersion string) string {
	return fmt.Sprintf("%s-%s-%s", hash, loader, gameVersion)
}

func (u CachedFileUpdate) CacheKey() string {
	return FileUpdateKey(u.Hash, u.Loader, u.GameVersion)
}
func (u CachedFileUpdate) CacheAlias() *string { return nil }
