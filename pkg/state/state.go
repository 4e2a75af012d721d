package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelcache/metacache/pkg/cache"
	"github.com/kestrelcache/metacache/pkg/config"
	"github.com/kestrelcache/metacache/pkg/fetch"
	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/planner"
	"github.com/kestrelcache/metacache/pkg/store"
)

// State is the process-wide handle to everything the cache needs. There
// is exactly one live State per process; obtain it with Get after Init
// has been called once (typically from main).
type State struct {
	Store   store.Store
	Gateway *fetch.Gateway
	Planner *planner.Planner
	Cache   *cache.Engine

	Config config.Config
}

var (
	once     sync.Once
	ready    = make(chan struct{})
	instance *State
	initErr  error
)

// Init builds the process-wide State exactly once; subsequent calls are
// no-ops. Safe to call from multiple goroutines racing at startup — only
// the first call's cfg takes effect.
func Init(ctx context.Context, cfg config.Config) error {
	once.Do(func() {
		instance, initErr = build(ctx, cfg)
		close(ready)
	})
	return initErr
}

// Get blocks until Init has completed (or ctx is canceled) and returns
// the process-wide State. Unlike a busy-wait on an "initialized" flag,
// callers parked here consume no CPU until Init finishes.
func Get(ctx context.Context) (*State, error) {
	select {
	case <-ready:
		return instance, initErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func build(ctx context.Context, cfg config.Config) (*State, error) {
	logger := log.WithComponent("state")
	logger.Info().Msg("initializing cache state")

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("state: open store: %w", err)
	}

	gw := fetch.New(cfg.MaxConcurrentDownloads, cfg.HTTPTimeout)

	p := planner.New(gw, planner.Config{
		RegistryBaseURL:         cfg.RegistryBaseURL,
		RegistryV3BaseURL:       cfg.RegistryV3BaseURL,
		MetaBaseURL:             cfg.MetaBaseURL,
		ProfilesDir:             cfg.ProfilesDir,
		MaxConcurrentFileHashes: cfg.MaxConcurrentFileHashes,
		ShortTTL:                cfg.DefaultTTL,
		LongTTL:                 cfg.LongTTL,
	})

	engine := cache.New(s, cache.FetchersFromPlanner(p))

	logger.Info().Str("store_path", cfg.StorePath).Msg("cache state ready")

	return &State{
		Store:   s,
		Gateway: gw,
		Planner: p,
		Cache:   engine,
		Config:  cfg,
	}, nil
}

// Reset clears process-wide state. It exists only for tests that need a
// fresh Init per test case; production code never calls it.
func Reset() {
	once = sync.Once{}
	ready = make(chan struct{})
	instance = nil
	initErr = nil
}
