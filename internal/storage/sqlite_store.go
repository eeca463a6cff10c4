package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oceansonde/ares/internal/drop"
)

// SqliteStore handles database operations for a single drop database file.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store for the given database path. Connections
// are opened lazily and the schema is initialized on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateDrop(ctx context.Context, d drop.Session, config any) (dropID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch config.(type) {
		case string:
			configData.Valid = true
			configData.String = config.(string)

		case []byte:
			configData.Valid = true
			configData.String = string(config.([]byte))

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertDropSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, d.SourceType, d.SourceID, d.VHFFrequency, d.VHFChannel, configData)
	if err != nil {
		err = fmt.Errorf("inserting drop: %w", err)
		return
	}

	dropID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting drop ID: %w", err)
	}
	return
}

func (s *SqliteStore) Drop(ctx context.Context, id int64) (d *drop.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectDropSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess drop.Session
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(
		&sess.ID, &sess.StartTime, &sess.SourceType, &sess.SourceID,
		&sess.VHFFrequency, &sess.VHFChannel, &config); err != nil {
		err = fmt.Errorf("scanning drop: %w", err)
		return
	}
	if config.Valid {
		sess.Config = &config.String
	}

	return &sess, nil
}

func (s *SqliteStore) Drops(ctx context.Context) (drops []*drop.Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectDropsSQL)
	if err != nil {
		err = fmt.Errorf("querying drops: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess drop.Session
		var config sql.NullString
		if err = rows.Scan(
			&sess.ID, &sess.StartTime, &sess.SourceType, &sess.SourceID,
			&sess.VHFFrequency, &sess.VHFChannel, &config); err != nil {
			err = fmt.Errorf("scanning drop: %w", err)
			return
		}
		if config.Valid {
			sess.Config = &config.String
		}
		drops = append(drops, &sess)
	}
	return
}

func (s *SqliteStore) StoreFix(ctx context.Context, dropID int64, f drop.Fix) (fixID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertFixSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var lat, lon sql.NullFloat64
	if f.Valid {
		lat = sql.NullFloat64{Float64: f.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: f.Longitude, Valid: true}
	}

	result, err := stmt.ExecContext(ctx, dropID, f.Time.UTC(), lat, lon)
	if err != nil {
		err = fmt.Errorf("inserting fix: %w", err)
		return
	}

	fixID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting fix ID: %w", err)
	}
	return
}

func (s *SqliteStore) LastFix(ctx context.Context, dropID int64) (f drop.Fix, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectLastFixSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var lat, lon sql.NullFloat64
	if err = stmt.QueryRowContext(ctx, dropID).Scan(&f.Time, &lat, &lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrNoData
		} else {
			err = fmt.Errorf("scanning fix: %w", err)
		}
		return
	}

	if lat.Valid && lon.Valid {
		f.Latitude = lat.Float64
		f.Longitude = lon.Float64
		f.Valid = true
	}
	return
}

func (s *SqliteStore) StoreReadings(ctx context.Context, dropID int64, readings []drop.ToneReading) (err error) {
	if len(readings) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	// Prepare values array
	values := make([]interface{}, 0, len(readings)*7)

	// Build batch insert query
	valuesPlaceholder := "(?, ?, ?, ?, ?, ?, ?)"

	var sb strings.Builder

	sb.WriteString(insertReadingSQL)

	for i, r := range readings {
		values = append(values, toReadingArgs(dropID, r)...)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	// Single batch insert
	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting readings: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ReadReadings creates a ReadingReader over one drop. The reader pages
// through the readings table in insertion order and must be closed after
// use. Each reader instance should only be used from a single goroutine.
func (s *SqliteStore) ReadReadings(ctx context.Context, dropID int64, opts ...ReaderOption) (ReadingReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newSqliteReadingReader(ctx, db, dropID, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
