package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kestrelcache/metacache/pkg/fetch"
	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/metrics"
	"github.com/kestrelcache/metacache/pkg/store"
	"github.com/kestrelcache/metacache/pkg/types"
)

// FetchFunc resolves a batch of keys for one kind into live CachedEntry
// rows — both the primary entries matching kind and any derived entries
// for related kinds the fetch happened to resolve as a side effect.
type FetchFunc func(ctx context.Context, keys []string) ([]*types.CachedEntry, error)

// Engine is the cache's entry point: one Engine per process, shared by
// every caller regardless of kind.
type Engine struct {
	store store.Store
	fetch map[types.Kind]FetchFunc

	backgroundWG sync.WaitGroup

	// backgroundCtx is used for detached refreshes so they aren't
	// canceled when the request that triggered them returns.
	backgroundCtx context.Context
}

// New creates an Engine backed by s, dispatching fetches for each kind
// to the corresponding FetchFunc in fetchers. A kind with no entry in
// fetchers can still be looked up (cache hits work) but GetMany returns
// an error if it ever needs to fetch that kind live.
func New(s store.Store, fetchers map[types.Kind]FetchFunc) *Engine {
	return &Engine{
		store:         s,
		fetch:         fetchers,
		backgroundCtx: context.Background(),
	}
}

// Wait blocks until every background refresh started so far has
// finished, or ctx is canceled. It exists for tests; production callers
// never need to wait on background work.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.backgroundWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetMany resolves every key of kind according to behavior and returns
// the entries of kind it found or fetched, tombstones included; derived
// entries of other kinds are stored but not returned. A key can be
// missing from the result: under StaleWhileRevalidateSkipOffline a key
// whose fetch failed offline is left to the background refresh, and a
// fetcher may drop keys it cannot resolve (FileHash does).
func (e *Engine) GetMany(ctx context.Context, kind types.Kind, keys []string, behavior types.Behavior) ([]*types.CachedEntry, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	logger := log.WithKind(string(kind))
	now := time.Now()

	remaining := newKeySet(keys)
	var expiredKeys []string
	var returnVals []*types.CachedEntry

	if behavior != types.Bypass {
		rows, err := e.store.Lookup(ctx, kind, keys)
		if err != nil {
			return nil, fmt.Errorf("cache: lookup %s: %w", kind, err)
		}

		for _, row := range rows {
			hit := remaining.consume(row.ID, row.Alias)
			if !hit {
				continue
			}

			if !row.IsExpired(now) {
				metrics.CacheHitsTotal.WithLabelValues(string(kind), "fresh").Inc()
				returnVals = append(returnVals, row)
				continue
			}

			if behavior == types.MustRevalidate {
				// Expired rows under MustRevalidate are discarded and
				// re-fetched synchronously below; put the key back so it
				// is included in the live fetch.
				remaining.add(row.ID)
				continue
			}

			metrics.CacheHitsTotal.WithLabelValues(string(kind), "stale").Inc()
			returnVals = append(returnVals, row)
			expiredKeys = append(expiredKeys, row.ID)
		}
	}

	missing := remaining.values()
	if len(missing) > 0 {
		metrics.CacheMissesTotal.WithLabelValues(string(kind)).Add(float64(len(missing)))

		fetched, err := e.fetchAndStore(ctx, kind, missing)
		if err != nil {
			if behavior == types.StaleWhileRevalidateSkipOffline && fetch.IsOffline(err) {
				logger.Warn().Err(err).Int("keys", len(missing)).Msg("offline while fetching missing keys, deferring to background")
				expiredKeys = append(expiredKeys, missing...)
			} else {
				metrics.FetchErrorsTotal.WithLabelValues(classifyErrorLabel(err)).Inc()
				return nil, err
			}
		} else {
			returnVals = append(returnVals, fetched...)
		}
	}

	if len(expiredKeys) > 0 && (behavior == types.StaleWhileRevalidate || behavior == types.StaleWhileRevalidateSkipOffline) {
		e.scheduleBackgroundRefresh(kind, expiredKeys, behavior)
	}

	return returnVals, nil
}

// fetchAndStore fetches keys live, upserts every resulting entry
// (primary and derived alike), and returns only the entries matching
// kind — the ones the caller actually asked for.
func (e *Engine) fetchAndStore(ctx context.Context, kind types.Kind, keys []string) ([]*types.CachedEntry, error) {
	fn, ok := e.fetch[kind]
	if !ok {
		return nil, fmt.Errorf("cache: no fetcher registered for kind %s", kind)
	}

	timer := metrics.NewTimer()
	entries, err := fn(ctx, keys)
	timer.ObserveDurationVec(metrics.FetchDuration, string(kind))
	if err != nil {
		return nil, err
	}

	if err := e.store.Upsert(ctx, entries); err != nil {
		return nil, fmt.Errorf("cache: upsert %s fetch result: %w", kind, err)
	}

	var primary []*types.CachedEntry
	for _, e := range entries {
		if e.DataType == kind {
			primary = append(primary, e)
		}
	}
	return primary, nil
}

// scheduleBackgroundRefresh launches a detached goroutine that re-fetches
// keys and upserts the result, swallowing any error beyond a log line:
// Debug under StaleWhileRevalidateSkipOffline, Warn otherwise.
// It tracks the goroutine in backgroundWG purely so tests can use Wait.
func (e *Engine) scheduleBackgroundRefresh(kind types.Kind, keys []string, behavior types.Behavior) {
	logger := log.WithKind(string(kind))
	e.backgroundWG.Add(1)
	go func() {
		defer e.backgroundWG.Done()

		_, err := e.fetchAndStore(e.backgroundCtx, kind, keys)
		outcome := "refreshed"
		if err != nil {
			outcome = "failed"
			if behavior == types.StaleWhileRevalidateSkipOffline {
				logger.Debug().Err(err).Int("keys", len(keys)).Msg("background revalidation failed")
			} else {
				logger.Warn().Err(err).Int("keys", len(keys)).Msg("background revalidation failed")
			}
		}
		metrics.BackgroundRefreshesTotal.WithLabelValues(string(kind), outcome).Inc()
	}()
}

func classifyErrorLabel(err error) string {
	if fetch.IsOffline(err) {
		return "offline"
	}
	return "other"
}
