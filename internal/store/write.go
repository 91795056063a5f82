package store

import (
	"context"
	"fmt"

	"github.com/roach88/recap/internal/ir"
)

// Create appends an artifact to the log.
//
// The store assigns Seq, and ID when empty. Uses ON CONFLICT(id) DO NOTHING
// for idempotency - writing the same ID twice is silently ignored. Artifacts
// that fail ir.Artifact.Validate are rejected.
func (s *SQLite) Create(ctx context.Context, a ir.Artifact) error {
	a, err := prepare(a)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	attrs, err := marshalAttributes(a.Request.Attributes)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts
		(id, key, owner, operation, strategy, argument_count, request_digest, request_body,
		 attributes, response_kind, response_type, response_body, error_type, error_message,
		 format, compression, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		a.ID,
		string(a.Key),
		a.Request.Owner,
		a.Request.Operation,
		string(a.Request.Strategy),
		a.Request.ArgumentCount,
		a.Request.Digest,
		a.Request.Body,
		attrs,
		string(a.Response.Kind),
		a.Response.Type,
		a.Response.Body,
		a.Response.ErrorType,
		a.Response.ErrorMessage,
		a.Encoding.Format,
		a.Encoding.Compression,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}

	return nil
}
