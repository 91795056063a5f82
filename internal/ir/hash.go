package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"
)

// Domain prefix for artifact keys.
// Version suffix enables future algorithm migration.
const DomainArtifactKey = "recap/artifact-key/v1"

// ErrInvalidIdentity marks an owner, operation or strategy that is not
// valid UTF-8.
var ErrInvalidIdentity = errors.New("identity is not valid UTF-8")

// Key is the stable lookup and storage key of an artifact.
// It is a lowercase hex SHA-256 digest.
type Key string

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BuildKey derives the artifact key for an operation.
//
// The key is a pure function of owner, operation and strategy. Arguments
// are excluded; argument-sensitive matching belongs to the store. Strings
// are NFC normalized and the identity object is serialized as RFC 8785
// canonical JSON, so the key is stable across processes and platforms.
func BuildKey(owner, operation string, strategy Strategy) (Key, error) {
	// JSON encoding would coerce invalid bytes to U+FFFD and merge
	// distinct identities into one key.
	for _, s := range []string{owner, operation, string(strategy)} {
		if !utf8.ValidString(s) {
			return "", fmt.Errorf("BuildKey: %w: %q", ErrInvalidIdentity, s)
		}
	}

	identity := map[string]string{
		"owner":     norm.NFC.String(owner),
		"operation": norm.NFC.String(operation),
		"strategy":  string(strategy),
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("BuildKey: marshal identity: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("BuildKey: canonicalize identity: %w", err)
	}

	return Key(hashWithDomain(DomainArtifactKey, canonical)), nil
}

// MustBuildKey is like BuildKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBuildKey(owner, operation string, strategy Strategy) Key {
	key, err := BuildKey(owner, operation, strategy)
	if err != nil {
		panic(err)
	}
	return key
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Short returns the first 12 hex characters, for logs and tables.
func (k Key) Short() string {
	if len(k) <= 12 {
		return string(k)
	}
	return string(k[:12])
}
