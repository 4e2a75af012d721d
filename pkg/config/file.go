package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML config file, falling back to Defaults for any
// field the file omits or leaves blank.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := Defaults()
	cfg.RegistryBaseURL = fc.RegistryBaseURL
	cfg.RegistryV3BaseURL = fc.RegistryV3BaseURL
	cfg.MetaBaseURL = fc.MetaBaseURL
	cfg.ProfilesDir = fc.ProfilesDir
	cfg.StorePath = fc.StorePath

	if fc.MaxConcurrentDownloads > 0 {
		cfg.MaxConcurrentDownloads = fc.MaxConcurrentDownloads
	}
	if fc.MaxConcurrentFileHashes > 0 {
		cfg.MaxConcurrentFileHashes = fc.MaxConcurrentFileHashes
	}

	for _, d := range []struct {
		raw    string
		target *time.Duration
	}{
		{fc.DefaultTTL, &cfg.DefaultTTL},
		{fc.LongTTL, &cfg.LongTTL},
		{fc.HTTPTimeout, &cfg.HTTPTimeout},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse duration %q: %w", d.raw, err)
		}
		*d.target = parsed
	}

	return cfg, nil
}

// fileConfig mirrors Config but with durations spelled as strings
// ("30m", "720h") the way a human-edited YAML file writes them; durations
// parse through time.ParseDuration rather than yaml.v3's numeric-only
// default so "720h" reads naturally instead of as a nanosecond count.
type fileConfig struct {
	RegistryBaseURL         string `yaml:"registry_base_url"`
	RegistryV3BaseURL       string `yaml:"registry_v3_base_url"`
	MetaBaseURL             string `yaml:"meta_base_url"`
	ProfilesDir             string `yaml:"profiles_dir"`
	StorePath               string `yaml:"store_path"`
	MaxConcurrentDownloads  int64  `yaml:"max_concurrent_downloads"`
	MaxConcurrentFileHashes int64  `yaml:"max_concurrent_file_hashes"`
	DefaultTTL              string `yaml:"default_ttl"`
	LongTTL                 string `yaml:"long_ttl"`
	HTTPTimeout             string `yaml:"http_timeout"`
}
