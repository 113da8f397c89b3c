// Package store persists the ordered, append-only collection of
// submissions. Every implementation serialises its read-modify-write cycle
// so concurrent HTTP handlers never lose an append.
package store

import (
	"context"
	"errors"
	"fmt"

	"lead-capture/internal/submission"
)

// ErrCorrupt is returned when persisted data cannot be parsed. Nothing is
// repaired automatically.
var ErrCorrupt = errors.New("submission store is corrupt")

// Drivers accepted by Open.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Store is the shared submission collection.
type Store interface {
	// Load returns every submission in insertion order. A store that has
	// never been written returns an empty slice.
	Load(ctx context.Context) ([]submission.Submission, error)
	// Append adds sub at the end and returns the new total.
	Append(ctx context.Context, sub submission.Submission) (int, error)
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a Store for Open.
type Options struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// Open returns the store named by opts.Driver. The postgres driver applies
// pending migrations before returning.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStore(opts.Path), nil
	case DriverPostgres:
		if err := Migrate(opts.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := OpenDB(opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
