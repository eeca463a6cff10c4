package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oceansonde/ares/internal/drop"
)

// ErrNoData indicates either that no data exists for the given parameters,
// or that all available data has been read.
var ErrNoData = fmt.Errorf("no data available")

// DefaultBatchSize is the number of readings fetched per query.
const DefaultBatchSize = 1000

// ReadingReader is an iterator over the stored tone readings of one drop.
type ReadingReader interface {
	// Drop returns metadata about the drop this reader is accessing.
	Drop() *drop.Session

	// Next advances the iterator and returns true if there is another
	// reading, false when iteration is complete or an error occurred.
	Next(context.Context) bool

	// Current returns the current reading. Undefined after Next() has
	// returned false.
	Current() drop.ToneReading

	// Error returns any error that occurred during iteration; check it
	// when Next() returns false to distinguish end of data from failure.
	Error() error

	// Close releases the reader's database resources.
	Close() error
}

// ReaderOption configures a ReadingReader.
type ReaderOption func(*sqliteReadingReader)

// WithBatchSize overrides the pagination size.
func WithBatchSize(n int) ReaderOption {
	return func(r *sqliteReadingReader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

type sqliteReadingReader struct {
	db *sql.DB

	dropID    int64
	session   *drop.Session
	batchSize int

	batch   []drop.ToneReading
	pos     int
	lastID  int64
	current drop.ToneReading
	done    bool
	err     error
}

func newSqliteReadingReader(ctx context.Context, db *sql.DB, dropID int64, opts ...ReaderOption) (*sqliteReadingReader, error) {
	if db == nil {
		return nil, errors.New("database connection required")
	}
	if dropID <= 0 {
		return nil, errors.New("drop ID required")
	}

	r := &sqliteReadingReader{
		db:        db,
		dropID:    dropID,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.loadDrop(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

func (r *sqliteReadingReader) loadDrop(ctx context.Context) (err error) {
	stmt, err := r.db.PrepareContext(ctx, selectDropSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var sess drop.Session
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, r.dropID).Scan(
		&sess.ID, &sess.StartTime, &sess.SourceType, &sess.SourceID,
		&sess.VHFFrequency, &sess.VHFChannel, &config); err != nil {
		return fmt.Errorf("querying drop: %w", err)
	}
	if config.Valid {
		sess.Config = &config.String
	}

	r.session = &sess
	return
}

func (r *sqliteReadingReader) Drop() *drop.Session {
	return r.session
}

func (r *sqliteReadingReader) Next(ctx context.Context) bool {
	if r.err != nil || r.done {
		return false
	}

	if r.pos >= len(r.batch) {
		if err := r.fetchBatch(ctx); err != nil {
			r.err = err
			return false
		}
		if len(r.batch) == 0 {
			r.done = true
			return false
		}
	}

	r.current = r.batch[r.pos]
	r.pos++
	return true
}

// fetchBatch pulls the next page of readings, keyed off the last seen row
// ID so pagination stays stable while the writer keeps appending.
func (r *sqliteReadingReader) fetchBatch(ctx context.Context) (err error) {
	rows, err := r.db.QueryContext(ctx, selectReadingsWithIDSQL, r.dropID, r.lastID, r.batchSize)
	if err != nil {
		return fmt.Errorf("querying readings: %w", err)
	}
	defer closeWithError(rows, &err)

	r.batch = r.batch[:0]
	r.pos = 0

	for rows.Next() {
		var (
			id        int64
			reading   drop.ToneReading
			temp, dep sql.NullFloat64
		)
		if err = rows.Scan(&id, &reading.Elapsed, &reading.Frequency, &reading.Signal, &reading.Ratio, &temp, &dep); err != nil {
			return fmt.Errorf("scanning reading: %w", err)
		}
		reading.Temperature = floatOrNaN(temp)
		reading.Depth = floatOrNaN(dep)

		r.batch = append(r.batch, reading)
		r.lastID = id
	}
	return rows.Err()
}

func (r *sqliteReadingReader) Current() drop.ToneReading {
	return r.current
}

func (r *sqliteReadingReader) Error() error {
	return r.err
}

// Close releases the reader. The underlying connection belongs to the
// store and stays open.
func (r *sqliteReadingReader) Close() error {
	r.done = true
	r.batch = nil
	return nil
}
