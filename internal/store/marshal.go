package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/recap/internal/ir"
)

// marshalAttributes converts request attributes to JSON TEXT.
// Go's encoder sorts map keys, and HTML escaping is disabled so stored
// text matches what the codec writes.
func marshalAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(attrs); err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalAttributes parses JSON TEXT to request attributes.
// Always returns a non-nil map.
func unmarshalAttributes(data string) (map[string]string, error) {
	attrs := map[string]string{}
	if data == "" || data == "{}" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attrs, nil
}

// prepare fills store-owned fields and checks the artifact before it is
// written. The caller's value is not modified.
func prepare(a ir.Artifact) (ir.Artifact, error) {
	if err := a.Validate(); err != nil {
		return ir.Artifact{}, err
	}
	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return ir.Artifact{}, fmt.Errorf("generate artifact id: %w", err)
		}
		a.ID = id.String()
	}
	if a.Version == "" {
		a.Version = ir.ArtifactVersion
	}
	if a.Encoding.Format == "" {
		a.Encoding.Format = "json"
	}
	if a.Encoding.Compression == "" {
		a.Encoding.Compression = "none"
	}
	if a.Request.Attributes == nil {
		a.Request.Attributes = map[string]string{}
	}
	return a, nil
}
