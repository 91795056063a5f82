package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/recap/internal/codec"
	"github.com/roach88/recap/internal/intercept"
	"github.com/roach88/recap/internal/remote"
	"github.com/roach88/recap/internal/store"
)

// SessionMode converts Mode to the engine's flag pair.
func (c Config) SessionMode() intercept.Mode {
	switch c.Mode {
	case ModeRecord:
		return intercept.Record
	case ModeReplay:
		return intercept.Replay
	default:
		return intercept.Inert
	}
}

// Codec builds the configured codec.
func (c Config) Codec() (*codec.Codec, error) {
	f, err := codec.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	comp, err := codec.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	return codec.New(codec.WithFormat(f), codec.WithCompression(comp))
}

// Selector builds the capture selector.
func (c Config) Selector() *intercept.Selector {
	return &intercept.Selector{Include: c.Include, Exclude: c.Exclude}
}

// OpenStore opens the configured artifact store: the remote service when
// RemoteURL is set, the SQLite database otherwise. The closer releases it.
func (c Config) OpenStore() (intercept.Store, io.Closer, error) {
	if c.RemoteURL != "" {
		return remote.NewClient(c.RemoteURL, remote.WithTimeout(c.Timeout)), nopCloser{}, nil
	}

	match, err := store.ParseMatchMode(c.Match)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(c.Database, store.WithMatchMode(match))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return s, s, nil
}

// NewEngine builds an engine from the configuration. The engine reads the
// mode from the context first; when the context carries none, Mode is used.
func (c Config) NewEngine(logger *slog.Logger) (*intercept.Engine, io.Closer, error) {
	cd, err := c.Codec()
	if err != nil {
		return nil, nil, err
	}
	s, closer, err := c.OpenStore()
	if err != nil {
		return nil, nil, err
	}

	replayErrors := c.ReplayErrors == nil || *c.ReplayErrors
	e := intercept.New(s, cd,
		intercept.WithLogger(logger),
		intercept.WithErrorReplay(replayErrors),
		intercept.WithSelector(c.Selector()),
		intercept.WithModeSource(intercept.FallbackMode(c.SessionMode())),
	)
	return e, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
