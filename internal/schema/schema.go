// Package schema validates exported artifacts against the embedded JSON
// Schema for the persisted artifact shape.
package schema

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed artifact.schema.json
var artifactSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// ArtifactSchema returns the raw embedded schema.
func ArtifactSchema() []byte {
	return bytes.Clone(artifactSchema)
}

func load() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		compiled, compileErr = compiler.Compile(artifactSchema)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateArtifact checks one JSON-encoded artifact.
func ValidateArtifact(data []byte) error {
	s, err := load()
	if err != nil {
		return err
	}
	result := s.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors))
	for field, e := range result.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %v", field, e))
	}
	sort.Strings(msgs)
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// LineError is a validation failure on one line of a JSON lines stream.
type LineError struct {
	Line int    `json:"line"`
	Err  string `json:"error"`
}

// ValidateLines checks every non-blank line of r. It returns the number of
// artifacts checked and the failures; the error is reserved for read
// failures.
func ValidateLines(r io.Reader) (int, []LineError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	checked := 0
	failures := []LineError{}
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		checked++
		if err := ValidateArtifact(b); err != nil {
			failures = append(failures, LineError{Line: line, Err: err.Error()})
		}
	}
	if err := scanner.Err(); err != nil {
		return checked, failures, fmt.Errorf("read jsonl: %w", err)
	}
	return checked, failures, nil
}
