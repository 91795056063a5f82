// Package config loads recap configuration.
//
// Configuration comes from an optional YAML file. RECAP_* environment
// variables override file values. Unset fields take the defaults below.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECAP_"

// Mode names accepted by the mode field.
const (
	ModeOff    = "off"
	ModeRecord = "record"
	ModeReplay = "replay"
)

// Config is the complete recap configuration.
type Config struct {
	// Mode is the static session mode: off, record or replay.
	// Default: off. Applications can still override it per call via
	// intercept.WithMode.
	Mode string `yaml:"mode"`

	// Database is the SQLite artifact database path.
	// Default: recap.db
	Database string `yaml:"database"`

	// RemoteURL selects the HTTP artifact service instead of Database.
	RemoteURL string `yaml:"remote_url"`

	// Timeout bounds each request to RemoteURL.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`

	// Format is the codec format: json or cbor. Default: json
	Format string `yaml:"format"`

	// Compression is the body compression: none, zstd or lz4. Default: none
	Compression string `yaml:"compression"`

	// Match is the store lookup policy: key or exact. Default: key
	Match string `yaml:"match"`

	// ReplayErrors replays recorded errors instead of running the real
	// operation. Default: true
	ReplayErrors *bool `yaml:"replay_errors"`

	// Include and Exclude are owner prefixes for the capture selector.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Listen is the address for `recap serve`. Default: 127.0.0.1:8765
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	replay := true
	return Config{
		Mode:         ModeOff,
		Database:     "recap.db",
		Timeout:      5 * time.Second,
		Format:       string(codec.FormatJSON),
		Compression:  string(codec.CompressionNone),
		Match:        string(store.MatchKey),
		ReplayErrors: &replay,
		Listen:       "127.0.0.1:8765",
	}
}

// Load reads path (if non-empty), applies environment overrides and
// defaults, and validates the result. A missing file is an error; an
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Unknown fields are rejected.
func Parse(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = splitList(v)
		}
	}

	str("MODE", &c.Mode)
	str("DATABASE", &c.Database)
	str("REMOTE_URL", &c.RemoteURL)
	str("FORMAT", &c.Format)
	str("COMPRESSION", &c.Compression)
	str("MATCH", &c.Match)
	str("LISTEN", &c.Listen)
	list("INCLUDE", &c.Include)
	list("EXCLUDE", &c.Exclude)

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "REPLAY_ERRORS"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREPLAY_ERRORS: %w", EnvPrefix, err)
		}
		c.ReplayErrors = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Compression == "" {
		c.Compression = d.Compression
	}
	if c.Match == "" {
		c.Match = d.Match
	}
	if c.ReplayErrors == nil {
		c.ReplayErrors = d.ReplayErrors
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
}

// Validate rejects unknown enum values and nonsensical settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case ModeOff, ModeRecord, ModeReplay:
	default:
		errs = append(errs, fmt.Errorf("mode: unknown value %q", c.Mode))
	}
	if _, err := codec.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format: %w", err))
	}
	if _, err := codec.ParseCompression(c.Compression); err != nil {
		errs = append(errs, fmt.Errorf("compression: %w", err))
	}
	if _, err := store.ParseMatchMode(c.Match); err != nil {
		errs = append(errs, fmt.Errorf("match: %w", err))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout: must not be negative"))
	}
	if c.RemoteURL != "" && !strings.HasPrefix(c.RemoteURL, "http://") && !strings.HasPrefix(c.RemoteURL, "https://") {
		errs = append(errs, fmt.Errorf("remote_url: must be an http(s) URL"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
