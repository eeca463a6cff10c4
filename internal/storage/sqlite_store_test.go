package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/oceansonde/ares/internal/drop"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s := NewSqliteStore(filepath.Join(t.TempDir(), "drops.sqlite"))
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

func TestCreateAndReadDrop(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateDrop(ctx, drop.Session{
		SourceType:   "rtl_fm",
		SourceID:     "0",
		VHFFrequency: 170.5,
		VHFChannel:   94,
	}, map[string]any{"gain": 29.7})
	if err != nil {
		t.Fatalf("CreateDrop() = %v", err)
	}

	got, err := s.Drop(ctx, id)
	if err != nil {
		t.Fatalf("Drop() = %v", err)
	}
	if got.SourceType != "rtl_fm" || got.VHFFrequency != 170.5 || got.VHFChannel != 94 {
		t.Errorf("drop = %+v", got)
	}
	if got.Config == nil || *got.Config == "" {
		t.Error("config not persisted")
	}

	drops, err := s.Drops(ctx)
	if err != nil {
		t.Fatalf("Drops() = %v", err)
	}
	if len(drops) != 1 || drops[0].ID != id {
		t.Errorf("Drops() = %+v, want one drop with ID %d", drops, id)
	}
}

func TestReadingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateDrop(ctx, drop.Session{SourceType: "wav", SourceID: "drop.wav"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	nan := math.NaN()
	in := []drop.ToneReading{
		{Elapsed: 0.1, Frequency: 0, Signal: 1e5, Ratio: 0.1, Temperature: nan, Depth: nan},
		{Elapsed: 0.2, Frequency: 2000, Signal: 2e7, Ratio: 0.9, Temperature: 15.5, Depth: 0},
		{Elapsed: 0.3, Frequency: 2036, Signal: 2e7, Ratio: 0.9, Temperature: 16.5, Depth: 0.152},
	}
	if err := s.StoreReadings(ctx, id, in); err != nil {
		t.Fatalf("StoreReadings() = %v", err)
	}

	r, err := s.ReadReadings(ctx, id, WithBatchSize(2))
	if err != nil {
		t.Fatalf("ReadReadings() = %v", err)
	}
	defer r.Close()

	if r.Drop() == nil || r.Drop().ID != id {
		t.Fatalf("reader drop = %+v", r.Drop())
	}

	var out []drop.ToneReading
	for r.Next(ctx) {
		out = append(out, r.Current())
	}
	if err := r.Error(); err != nil {
		t.Fatalf("iteration error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("read %d readings, want %d", len(out), len(in))
	}

	if !math.IsNaN(out[0].Temperature) || !math.IsNaN(out[0].Depth) {
		t.Errorf("NULL columns read back as %v/%v, want NaN", out[0].Temperature, out[0].Depth)
	}
	if out[1].Temperature != 15.5 || out[2].Depth != 0.152 {
		t.Errorf("values not preserved: %+v", out[1:])
	}
	if out[2].Elapsed != 0.3 {
		t.Errorf("ordering broken: last elapsed %v", out[2].Elapsed)
	}
}

func TestStoreReadingsEmptyBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateDrop(ctx, drop.Session{SourceType: "wav", SourceID: "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StoreReadings(ctx, id, nil); err != nil {
		t.Errorf("empty batch: %v", err)
	}
}

func TestFixRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateDrop(ctx, drop.Session{SourceType: "rtl_fm", SourceID: "0"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.LastFix(ctx, id); !errors.Is(err, ErrNoData) {
		t.Errorf("LastFix with no fixes: err = %v, want ErrNoData", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := s.StoreFix(ctx, id, drop.Fix{Time: now.Add(-time.Minute), Latitude: 1, Longitude: 2, Valid: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.StoreFix(ctx, id, drop.Fix{Time: now, Latitude: 29.5, Longitude: -80.25, Valid: true}); err != nil {
		t.Fatal(err)
	}

	f, err := s.LastFix(ctx, id)
	if err != nil {
		t.Fatalf("LastFix() = %v", err)
	}
	if !f.Valid || f.Latitude != 29.5 || f.Longitude != -80.25 {
		t.Errorf("fix = %+v, want most recent valid fix", f)
	}
}

func TestInvalidFixStoresNull(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateDrop(ctx, drop.Session{SourceType: "rtl_fm", SourceID: "0"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.StoreFix(ctx, id, drop.Fix{Time: time.Now(), Valid: false}); err != nil {
		t.Fatal(err)
	}

	f, err := s.LastFix(ctx, id)
	if err != nil {
		t.Fatalf("LastFix() = %v", err)
	}
	if f.Valid {
		t.Errorf("invalid fix read back as valid: %+v", f)
	}
}
