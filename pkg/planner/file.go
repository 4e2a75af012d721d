package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/kestrelcache/metacache/pkg/types"
)

// FetchFiles resolves File keys (sha1 content hashes) against the
// registry's version-files lookup, which matches hashes to the Version
// that published them. Matched hashes get a derived Version entry plus
// a primary File entry recording the match; unmatched hashes get a
// primary File entry recording the miss (not a tombstone — a "this hash
// is unknown" result is itself useful, cacheable data).
func (p *Planner) FetchFiles(ctx context.Context, keys []string) ([]*types.CachedEntry, error) {
	reqBody := versionFilesRequest{Algorithm: "sha1", Hashes: keys}

	var matches map[string]types.Version
	url := fmt.Sprintf("%s/version_files", p.registryBaseURL)
	if err := p.gw.PostJSON(ctx, url, reqBody, &matches); err != nil {
		return nil, err
	}

	now := time.Now()
	var entries []*types.CachedEntry

	for _, hash := range keys {
		version, ok := matches[hash]
		file := types.CachedFile{Hash: hash}
		if ok {
			file.Metadata = types.FileMetadata{
				Type:      types.FileMetadataTypeMatch,
				ProjectID: &version.ProjectID,
				VersionID: &version.ID,
			}
			entries = append(entries, p.entry(version, now))
		} else {
			file.Metadata = types.FileMetadata{Type: types.FileMetadataTypeUnknown}
		}
		entries = append(entries, p.entry(file, now))
	}

	return entries, nil
}

type versionFilesRequest struct {
	Algorithm string   `json:"algorithm"`
	Hashes    []string `json:"hashes"`
}
