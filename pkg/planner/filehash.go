package planner

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/types"
)

// hashChunkSize is the read buffer size used while hashing a local file.
// 64KiB balances syscall overhead against peak memory for the bounded
// number of concurrent hashes the semaphore allows.
const hashChunkSize = 64 * 1024

// FetchFileHashes hashes local files under the profiles directory. Keys
// are FileHash keys ("{size}-{path}"); a key whose file can't be opened
// or read is silently dropped rather than tombstoned, since a transient
// read failure (file mid-write, permissions) shouldn't be remembered as
// a permanent miss the way a registry 404 is.
func (p *Planner) FetchFileHashes(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	now := time.Now()
	logger := log.WithComponent("planner")

	entries := make([]*types.CachedEntry, 0, len(keys))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, key := range keys {
		path, ok := splitFileHashKey(key)
		if !ok {
			continue
		}

		if err := p.hashSem.Acquire(ctx, 1); err != nil {
			return entries, err
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer p.hashSem.Release(1)

			hash, size, err := hashFile(filepath.Join(p.profilesDir, path))
			if err != nil {
				logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable file")
				return
			}

			value := types.CachedFileHash{
				Path:     path,
				FileName: filepath.Base(path),
				Size:     size,
				Hash:     hash,
			}

			mu.Lock()
			entries = append(entries, p.entry(value, now))
			mu.Unlock()
		}(path)
	}

	wg.Wait()
	return entries, nil
}

// splitFileHashKey recovers the path component of a FileHash key. The
// size prefix is informational only (it disambiguates identically named
// files in the key space); the path alone is enough to re-hash.
func splitFileHashKey(key string) (path string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '-' {
			return key[i+1:], true
		}
	}
	return "", false
}

func hashFile(path string) (hash string, size uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha1.New()
	buf := make([]byte, hashChunkSize)
	var total uint64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += uint64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", 0, readErr
		}
	}

	return hex.EncodeToString(h.Sum(nil)), total, nil
}
