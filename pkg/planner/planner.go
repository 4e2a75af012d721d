package planner

import (
	"time"

	"github.com/kestrelcache/metacache/pkg/fetch"
	"github.com/kestrelcache/metacache/pkg/types"
	"golang.org/x/sync/semaphore"
)

// Planner builds live CachedEntry batches for a kind's missing keys. One
// Planner is shared process-wide; its Gateway already bounds outbound
// HTTP concurrency, so planner methods issue requests freely.
type Planner struct {
	gw *fetch.Gateway

	registryBaseURL   string
	registryV3BaseURL string
	metaBaseURL       string
	profilesDir       string

	hashSem *semaphore.Weighted

	shortTTL time.Duration
	longTTL  time.Duration
}

// Config holds everything a Planner needs that isn't the gateway itself.
type Config struct {
	RegistryBaseURL         string
	RegistryV3BaseURL       string
	MetaBaseURL             string
	ProfilesDir             string
	MaxConcurrentFileHashes int64
	ShortTTL                time.Duration
	LongTTL                 time.Duration
}

// New creates a Planner bound to gw and cfg.
func New(gw *fetch.Gateway, cfg Config) *Planner {
	return &Planner{
		gw:                gw,
		registryBaseURL:   cfg.RegistryBaseURL,
		registryV3BaseURL: cfg.RegistryV3BaseURL,
		metaBaseURL:       cfg.MetaBaseURL,
		profilesDir:       cfg.ProfilesDir,
		hashSem:           semaphore.NewWeighted(cfg.MaxConcurrentFileHashes),
		shortTTL:          cfg.ShortTTL,
		longTTL:           cfg.LongTTL,
	}
}

// expiry computes the unix-seconds expiry for a kind, anchored at now.
func (p *Planner) expiry(kind types.Kind, now time.Time) int64 {
	return now.Add(kind.DefaultTTL(p.shortTTL, p.longTTL)).Unix()
}

// tombstone builds a negative-result entry for a key that fetch
// resolved to "does not exist".
func (p *Planner) tombstone(kind types.Kind, key string, now time.Time) *types.CachedEntry {
	return &types.CachedEntry{
		ID:       key,
		DataType: kind,
		Data:     nil,
		Expires:  p.expiry(kind, now),
	}
}

// entry builds a present (non-tombstone) entry from a Keyed value; it is
// used for primary and derived entries alike.
func (p *Planner) entry(v types.Keyed, now time.Time) *types.CachedEntry {
	return &types.CachedEntry{
		ID:       v.CacheKey(),
		DataType: v.Kind(),
		Alias:    v.CacheAlias(),
		Data:     v,
		Expires:  p.expiry(v.Kind(), now),
	}
}
