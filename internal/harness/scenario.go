package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/intercept"
	"github.com/roach88/recap/internal/store"
)

// Scenario defines a record/replay conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Store selects the backend: "memory" (default) or "sqlite".
	Store string `yaml:"store,omitempty"`

	// Match is the store match mode: "key" (default) or "exact".
	Match string `yaml:"match,omitempty"`

	// Format and Compression configure the engine's codec.
	Format      string `yaml:"format,omitempty"`
	Compression string `yaml:"compression,omitempty"`

	// ReplayErrors controls whether recorded failures are replayed.
	// Nil means enabled.
	ReplayErrors *bool `yaml:"replay_errors,omitempty"`

	// Steps are executed in order against one engine and one store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final store contents.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one intercepted call.
type Step struct {
	// Mode is the session mode for this call: inert, record, replay or
	// record+replay.
	Mode string `yaml:"mode"`

	// Call is the operation as "Owner.operation".
	Call string `yaml:"call"`

	// Annotated selects the annotation capture strategy.
	Annotated bool `yaml:"annotated,omitempty"`

	// Void marks the operation as declaring no result.
	Void bool `yaml:"void,omitempty"`

	// Args are the call arguments.
	Args []any `yaml:"args,omitempty"`

	// Returns is the value the real operation returns.
	Returns any `yaml:"returns,omitempty"`

	// Fails, when set, makes the real operation fail with this message.
	Fails string `yaml:"fails,omitempty"`

	// Expect is the expected decision kind, e.g. "skip-with-value".
	// Empty skips the check.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the run as a whole.
type Assertion struct {
	// Type is one of artifact_count, decisions or executed.
	Type string `yaml:"type"`

	// Call is the operation for artifact_count and executed.
	Call string `yaml:"call,omitempty"`

	// Annotated selects the annotated key for artifact_count.
	Annotated bool `yaml:"annotated,omitempty"`

	// Count is the expected number for artifact_count and executed.
	Count int `yaml:"count,omitempty"`

	// Decisions is the expected decision sequence for decisions.
	Decisions []string `yaml:"decisions,omitempty"`
}

// Assertion type constants.
const (
	AssertArtifactCount = "artifact_count"
	AssertDecisions     = "decisions"
	AssertExecuted      = "executed"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	switch s.Store {
	case "", StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", s.Store)
	}
	if s.Match != "" {
		if _, err := store.ParseMatchMode(s.Match); err != nil {
			return err
		}
	}
	if s.Format != "" {
		if _, err := codec.ParseFormat(s.Format); err != nil {
			return err
		}
	}
	if s.Compression != "" {
		if _, err := codec.ParseCompression(s.Compression); err != nil {
			return err
		}
	}

	for i, step := range s.Steps {
		if _, err := parseMode(step.Mode); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if _, _, err := splitCall(step.Call); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Void && step.Returns != nil {
			return fmt.Errorf("steps[%d]: void step cannot declare returns", i)
		}
		if step.Expect != "" {
			if _, err := parseDecision(step.Expect); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertArtifactCount, AssertExecuted:
		if _, _, err := splitCall(a.Call); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertDecisions:
		if len(a.Decisions) == 0 {
			return fmt.Errorf("assertions[%d]: decisions list is required", index)
		}
		for _, d := range a.Decisions {
			if _, err := parseDecision(d); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// splitCall splits "Owner.operation" at the last dot.
func splitCall(call string) (owner, operation string, err error) {
	i := strings.LastIndex(call, ".")
	if i <= 0 || i == len(call)-1 {
		return "", "", fmt.Errorf("call %q must be Owner.operation", call)
	}
	return call[:i], call[i+1:], nil
}

func parseMode(name string) (intercept.Mode, error) {
	for _, m := range []intercept.Mode{intercept.Inert, intercept.Record, intercept.Replay, {Recording: true, Replaying: true}} {
		if m.String() == name {
			return m, nil
		}
	}
	return intercept.Mode{}, fmt.Errorf("unknown mode %q", name)
}

func parseDecision(name string) (intercept.DecisionKind, error) {
	for _, k := range []intercept.DecisionKind{intercept.Proceed, intercept.SkipVoid, intercept.SkipWithValue, intercept.SkipWithError} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown decision %q", name)
}
