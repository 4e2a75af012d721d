// Package config holds the small set of values the cache needs from its
// host application: remote base URLs, TTLs, and concurrency limits. It is a
// plain struct with sane defaults rather than a flag/env parser — the
// embedding application (see cmd/metacachectl) owns how those values are
// sourced.
package config

import "time"

// Config configures a cache state handle.
type Config struct {
	// RegistryBaseURL is the base URL for the mod registry's v2 API
	// (projects, versions, users, file lookups).
	RegistryBaseURL string

	// RegistryV3BaseURL is the base URL for the registry's v3 API (teams,
	// organizations).
	RegistryV3BaseURL string

	// MetaBaseURL is the base URL for the meta/manifest service (Minecraft
	// manifest, per-loader manifests).
	MetaBaseURL string

	// ProfilesDir is the root directory that FileHash kind keys are
	// resolved against.
	ProfilesDir string

	// StorePath is the filesystem path to the SQLite database file. Use
	// ":memory:" for an ephemeral, test-only store.
	StorePath string

	// MaxConcurrentDownloads bounds the fetch gateway's in-flight HTTP
	// request count.
	MaxConcurrentDownloads int64

	// MaxConcurrentFileHashes bounds how many files the FileHash planner
	// hashes at once.
	MaxConcurrentFileHashes int64

	// DefaultTTL is the expiry window for every kind except File and
	// FileHash — see DESIGN.md's Open Question entry for why this is 30
	// minutes rather than the 30 hours an earlier implementation's code
	// actually computed.
	DefaultTTL time.Duration

	// LongTTL is the expiry window for File and FileHash entries.
	LongTTL time.Duration

	// HTTPTimeout bounds a single gateway HTTP request.
	HTTPTimeout time.Duration
}

// Default values for the knobs above.
const (
	DefaultMaxConcurrentDownloads = 10
	DefaultMaxConcurrentFileHashes = 16
	DefaultTTL                     = 30 * time.Minute
	DefaultLongTTL                 = 30 * 24 * time.Hour
	DefaultHTTPTimeout             = 15 * time.Second
)

// Defaults returns a Config with every non-URL field set to its default.
// Callers must still set RegistryBaseURL, RegistryV3BaseURL, MetaBaseURL,
// ProfilesDir, and StorePath.
func Defaults() Config {
	return Config{
		MaxConcurrentDownloads:  DefaultMaxConcurrentDownloads,
		MaxConcurrentFileHashes: DefaultMaxConcurrentFileHashes,
		DefaultTTL:              DefaultTTL,
		LongTTL:                 DefaultLongTTL,
		HTTPTimeout:             DefaultHTTPTimeout,
	}
}
