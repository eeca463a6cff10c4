package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oceansonde/ares/internal/drop"
)

// Store manages persistence of AXBT drops: the drop metadata, the stream
// of per-block tone readings, and GPS fixes. All writes are atomic;
// implementations must be safe for concurrent use.
type Store interface {
	// CreateDrop registers a new drop and returns its unique identifier.
	// config may be a string, []byte, or any JSON-serializable value, and
	// is stored verbatim for later inspection.
	CreateDrop(ctx context.Context, d drop.Session, config any) (dropID int64, err error)

	// Drop retrieves a single drop by ID.
	Drop(ctx context.Context, id int64) (*drop.Session, error)

	// Drops returns all drops ordered by start time.
	Drops(ctx context.Context) ([]*drop.Session, error)

	// StoreFix saves a GPS fix for a drop. Invalid fixes store NULL
	// coordinates so the outage remains visible in the record.
	StoreFix(ctx context.Context, dropID int64, f drop.Fix) (fixID int64, err error)

	// LastFix returns the most recent fix for a drop; ErrNoData when the
	// drop has none.
	LastFix(ctx context.Context, dropID int64) (drop.Fix, error)

	// StoreReadings saves a batch of tone readings in one transaction.
	StoreReadings(ctx context.Context, dropID int64, readings []drop.ToneReading) error

	// ReadReadings returns an iterator over the readings of a drop in
	// elapsed-time order. The reader must be closed after use.
	ReadReadings(ctx context.Context, dropID int64, opts ...ReaderOption) (ReadingReader, error)

	// Close releases all database connections. Safe to call multiple times.
	Close() error
}
