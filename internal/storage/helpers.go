package storage

import (
	"database/sql"
	"errors"
	"math"

	"github.com/oceansonde/ares/internal/drop"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// rollbackWithError is a no-op after a successful commit.
func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

// nullFloat maps NaN to SQL NULL. Profile columns use NULL for readings
// taken before the trigger or during signal dropouts.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// floatOrNaN is the inverse of nullFloat.
func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func toReadingArgs(dropID int64, r drop.ToneReading) []any {
	return []any{
		dropID,
		r.Elapsed,
		r.Frequency,
		r.Signal,
		r.Ratio,
		nullFloat(r.Temperature),
		nullFloat(r.Depth),
	}
}
