package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/recap/internal/ir"
)

const artifactColumns = `
	seq, id, key, owner, operation, strategy, argument_count, request_digest, request_body,
	attributes, response_kind, response_type, response_body, error_type, error_message,
	format, compression, version`

// Lookup returns the artifact that best matches the probe.
//
// The latest artifact with the same key and digest wins. Under MatchKey the
// latest artifact with the same key is returned when no digest matches.
// Returns ok=false on a miss; a miss is not an error.
func (s *SQLite) Lookup(ctx context.Context, probe ir.Probe) (ir.Artifact, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE key = ? AND request_digest = ?
		ORDER BY seq DESC
		LIMIT 1
	`, string(probe.Key), probe.Digest)

	a, err := scanArtifact(row)
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ir.Artifact{}, false, fmt.Errorf("lookup artifact: %w", err)
	}

	if s.match == MatchExact {
		return ir.Artifact{}, false, nil
	}

	row = s.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE key = ?
		ORDER BY seq DESC
		LIMIT 1
	`, string(probe.Key))

	a, err = scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Artifact{}, false, nil
	}
	if err != nil {
		return ir.Artifact{}, false, fmt.Errorf("lookup artifact: %w", err)
	}
	return a, true, nil
}

// Get retrieves a single artifact by ID.
// Returns ErrNotFound if no artifact has that ID.
func (s *SQLite) Get(ctx context.Context, id string) (ir.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+artifactColumns+`
		FROM artifacts
		WHERE id = ?
	`, id)

	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Artifact{}, ErrNotFound
	}
	if err != nil {
		return ir.Artifact{}, fmt.Errorf("get artifact: %w", err)
	}
	return a, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Key   ir.Key
	Owner string
	Limit int
}

// List returns artifacts in recording order (seq ASC).
// Returns an empty slice (not nil) if nothing matches.
func (s *SQLite) List(ctx context.Context, f ListFilter) ([]ir.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE 1 = 1`
	var args []any
	if f.Key != "" {
		query += ` AND key = ?`
		args = append(args, string(f.Key))
	}
	if f.Owner != "" {
		query += ` AND owner = ?`
		args = append(args, f.Owner)
	}
	query += ` ORDER BY seq ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := []ir.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("list artifacts: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}

	return artifacts, nil
}

// Count returns the number of stored artifacts.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count artifacts: %w", err)
	}
	return n, nil
}

// KeySummary describes one distinct key in the store.
type KeySummary struct {
	Key       ir.Key
	Owner     string
	Operation string
	Strategy  ir.Strategy
	Count     int
	LatestSeq int64
}

// Keys returns one summary per recorded key, ordered by owner, operation
// and strategy.
func (s *SQLite) Keys(ctx context.Context) ([]KeySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, owner, operation, strategy, COUNT(*), MAX(seq)
		FROM artifacts
		GROUP BY key, owner, operation, strategy
		ORDER BY owner, operation, strategy
	`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	keys := []KeySummary{}
	for rows.Next() {
		var (
			k        KeySummary
			key      string
			strategy string
		)
		if err := rows.Scan(&key, &k.Owner, &k.Operation, &strategy, &k.Count, &k.LatestSeq); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		k.Key = ir.Key(key)
		k.Strategy = ir.Strategy(strategy)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(sc scanner) (ir.Artifact, error) {
	var (
		a        ir.Artifact
		key      string
		strategy string
		kind     string
		attrs    string
	)
	err := sc.Scan(
		&a.Seq,
		&a.ID,
		&key,
		&a.Request.Owner,
		&a.Request.Operation,
		&strategy,
		&a.Request.ArgumentCount,
		&a.Request.Digest,
		&a.Request.Body,
		&attrs,
		&kind,
		&a.Response.Type,
		&a.Response.Body,
		&a.Response.ErrorType,
		&a.Response.ErrorMessage,
		&a.Encoding.Format,
		&a.Encoding.Compression,
		&a.Version,
	)
	if err != nil {
		return ir.Artifact{}, err
	}

	a.Key = ir.Key(key)
	a.Request.Strategy = ir.Strategy(strategy)
	a.Response.Kind = ir.Kind(kind)

	a.Request.Attributes, err = unmarshalAttributes(attrs)
	if err != nil {
		return ir.Artifact{}, err
	}
	return a, nil
}
