// Package cache persists parsed vector vocabularies in SQLite so that a
// model is parsed from its published file at most once.
package cache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"analogy/internal/vectorstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS models (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL UNIQUE,
    dimension  INTEGER NOT NULL,
    vocab_size INTEGER NOT NULL,
    source     TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS vectors (
    model_id  INTEGER NOT NULL,
    position  INTEGER NOT NULL,
    token     TEXT NOT NULL,
    embedding BLOB NOT NULL,
    PRIMARY KEY (model_id, position)
);
`

// Cache is a SQLite-backed store of parsed vocabularies. Vectors keep
// their file order in the position column, so a reloaded store ranks and
// breaks ties exactly like a freshly parsed one.
type Cache struct {
	db *sql.DB
}

// Open opens the cache database at path, creating the schema if needed.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Load rebuilds the named model's store from the cache. The second
// return value is false when the model has not been cached.
func (c *Cache) Load(ctx context.Context, name string) (*vectorstore.Store, bool, error) {
	var (
		id        int64
		dimension int
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, dimension FROM models WHERE name = ?`, name).Scan(&id, &dimension)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup model %q: %w", name, err)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT token, embedding FROM vectors WHERE model_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, false, fmt.Errorf("cache: read vectors for %q: %w", name, err)
	}
	defer rows.Close()

	b, err := vectorstore.NewBuilder(dimension)
	if err != nil {
		return nil, false, fmt.Errorf("cache: model %q: %w", name, err)
	}
	for rows.Next() {
		var (
			token string
			blob  []byte
		)
		if err := rows.Scan(&token, &blob); err != nil {
			return nil, false, fmt.Errorf("cache: scan vector for %q: %w", name, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, false, fmt.Errorf("cache: token %q of %q: %w", token, name, err)
		}
		if err := b.Add(token, vec); err != nil {
			return nil, false, fmt.Errorf("cache: token %q of %q: %w", token, name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("cache: read vectors for %q: %w", name, err)
	}
	if b.Len() == 0 {
		return nil, false, nil
	}
	return b.Build(), true, nil
}

// Save stores the vocabulary under the given name, replacing any
// previous version.
func (c *Cache) Save(ctx context.Context, name string, st *vectorstore.Store, source string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var oldID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM models WHERE name = ?`, name).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("cache: lookup model %q: %w", name, err)
	default:
		if _, err := tx.ExecContext(ctx, `DELETE FROM vectors WHERE model_id = ?`, oldID); err != nil {
			return fmt.Errorf("cache: drop old vectors: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, oldID); err != nil {
			return fmt.Errorf("cache: drop old model: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO models(name, dimension, vocab_size, source, created_at) VALUES(?, ?, ?, ?, ?)`,
		name, st.Dimension(), st.Len(), source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache: insert model %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("cache: model id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO vectors(model_id, position, token, embedding) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("cache: prepare insert: %w", err)
	}
	defer stmt.Close()

	position := 0
	var insertErr error
	st.Each(func(token string, vector []float32) bool {
		if _, err := stmt.ExecContext(ctx, id, position, token, encodeVector(vector)); err != nil {
			insertErr = fmt.Errorf("cache: insert token %q: %w", token, err)
			return false
		}
		position++
		return true
	})
	if insertErr != nil {
		return insertErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit save: %w", err)
	}
	return nil
}

// encodeVector packs a vector as little-endian IEEE 754 float32 values.
// The length is implied by the BLOB size.
func encodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
