package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kestrelcache/metacache/pkg/log"
	"github.com/kestrelcache/metacache/pkg/types"
	_ "modernc.org/sqlite"
)

//go:embed migrations/0001_init.sql
var initSchema string

// SQLiteStore is the Store implementation backing production use. It is
// a thin wrapper around *sql.DB; all cache-shape knowledge lives in the
// queries below, not in Go-side branching.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (and, if necessary, creates) the SQLite database at path and
// applies the embedded schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// The modernc.org/sqlite driver serializes writers internally but a
	// single *sql.DB connection avoids "database is locked" errors under
	// concurrent upserts from background revalidation tasks.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(initSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// row is the JSON shape of a single json_each($1) element passed to the
// upsert statement, and of the decoded shape rows come back from Lookup
// as when pre-json() is skipped.
type row struct {
	ID       string          `json:"id"`
	DataType string          `json:"data_type"`
	Alias    *string         `json:"alias"`
	Data     json.RawMessage `json:"data"`
	Expires  int64           `json:"expires"`
}

const lookupQuery = `
SELECT id, data_type, alias, data, expires
FROM cache
WHERE data_type = ? AND (
	id IN (SELECT value FROM json_each(?))
	OR
	alias IN (SELECT value FROM json_each(?))
)
`

// Lookup implements Store.
func (s *SQLiteStore) Lookup(ctx context.Context, kind types.Kind, keys []string) ([]*types.CachedEntry, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	idsJSON, err := json.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("store: encode lookup keys: %w", err)
	}

	// Aliases are stored lowercased (see pkg/types/key.go's CacheAlias
	// implementations) and the table has no COLLATE NOCASE, so the
	// alias branch needs its own lowercased copy of keys to match.
	lowerKeys := make([]string, len(keys))
	for i, k := range keys {
		lowerKeys[i] = strings.ToLower(k)
	}
	lowerKeysJSON, err := json.Marshal(lowerKeys)
	if err != nil {
		return nil, fmt.Errorf("store: encode lookup alias keys: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, lookupQuery, string(kind), string(idsJSON), string(lowerKeysJSON))
	if err != nil {
		return nil, fmt.Errorf("store: lookup %s: %w", kind, err)
	}
	defer rows.Close()

	var out []*types.CachedEntry
	for rows.Next() {
		var r row
		var dataType string
		// database/sql cannot scan NULL or TEXT into *json.RawMessage;
		// *[]byte accepts both (NULL becomes nil, i.e. a tombstone).
		if err := rows.Scan(&r.ID, &dataType, &r.Alias, (*[]byte)(&r.Data), &r.Expires); err != nil {
			return nil, fmt.Errorf("store: scan lookup row: %w", err)
		}
		value, err := types.DecodeValue(kind, r.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, &types.CachedEntry{
			ID:       r.ID,
			DataType: kind,
			Alias:    r.Alias,
			Data:     value,
			Expires:  r.Expires,
		})
	}
	return out, rows.Err()
}

const upsertQuery = `
INSERT INTO cache (id, data_type, alias, data, expires)
	SELECT
		json_extract(value, '$.id') AS id,
		json_extract(value, '$.data_type') AS data_type,
		json_extract(value, '$.alias') AS alias,
		json_extract(value, '$.data') AS data,
		json_extract(value, '$.expires') AS expires
	FROM
		json_each(?)
ON CONFLICT (id, data_type) DO UPDATE SET
	alias = excluded.alias,
	data = excluded.data,
	expires = excluded.expires
`

// Upsert implements Store.
func (s *SQLiteStore) Upsert(ctx context.Context, entries []*types.CachedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		data, err := types.EncodeValue(e.Data)
		if err != nil {
			return err
		}
		rows = append(rows, row{
			ID:       e.ID,
			DataType: string(e.DataType),
			Alias:    e.Alias,
			Data:     data,
			Expires:  e.Expires,
		})
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("store: encode upsert batch: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, upsertQuery, string(payload)); err != nil {
		return fmt.Errorf("store: upsert %d entries: %w", len(entries), err)
	}

	log.WithComponent("store").Debug().Int("count", len(entries)).Msg("upserted cache entries")
	return nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires <= ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("store: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: prune rows affected: %w", err)
	}
	return n, nil
}

// Stats implements Store.
func (s *SQLiteStore) Stats(ctx context.Context) (map[types.Kind]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data_type, COUNT(*) FROM cache GROUP BY data_type`)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	defer rows.Close()

	out := make(map[types.Kind]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("store: scan stats row: %w", err)
		}
		out[types.Kind(kind)] = count
	}
	return out, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
