package app

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/oceansonde/ares/internal/climatology"
	"github.com/oceansonde/ares/internal/drop"
	"github.com/oceansonde/ares/internal/encoding/edf"
	"github.com/oceansonde/ares/internal/encoding/fin"
	"github.com/oceansonde/ares/internal/encoding/jjvv"
	"github.com/oceansonde/ares/internal/encoding/logdta"
	"github.com/oceansonde/ares/internal/profile"
	"github.com/oceansonde/ares/internal/storage"
)

// dropInput is a drop normalized from any of the supported inputs: a
// database drop, a raw LOG file, or an already-exported EDF profile.
type dropInput struct {
	session  *drop.Session
	readings []drop.ToneReading // nil when the profile came from an EDF
	raw      profile.Profile
	lat, lon float64
	havePos  bool
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	var in *dropInput
	var err error
	switch {
	case config.DBPath != "":
		in, err = loadFromStore(ctx, config)
	case config.LogPath != "":
		in, err = loadFromLog(config)
	default:
		in, err = loadFromEDF(config)
	}
	if err != nil {
		return err
	}

	lat, lon, err := resolvePosition(in, config, logger)
	if err != nil {
		return err
	}

	qc := profile.AutoQC(in.raw, config.QC)

	logger.Info("quality control complete",
		slog.String("source", in.session.SourceID),
		slog.Int("readings", len(in.readings)),
		slog.Int("rawPoints", in.raw.Len()),
		slog.Int("qcPoints", qc.Len()))

	month := in.session.StartTime.Month()
	if config.Month != nil {
		month = *config.Month
	}

	var ref *climatology.Reference
	bottomStrike := false
	mismatch := false
	if config.ClimoPath != "" {
		dataset, err := climatology.Load(config.ClimoPath)
		if err != nil {
			return fmt.Errorf("loading climatology: %w", err)
		}

		r := dataset.ProfileAt(lat, lon, month)
		if len(r.Depth) > 0 {
			ref = &r
		}

		comparison := climatology.Compare(qc, r, climatology.DefaultCompareOptions())
		mismatch = !comparison.Match
		if mismatch {
			logger.Warn("profile diverges from climatology",
				slog.Float64("cutoffDepth", comparison.Cutoff))
			if !math.IsNaN(comparison.Cutoff) {
				qc = truncate(qc, comparison.Cutoff)
			}
		}

		if oceanDepth := dataset.OceanDepth(lat, lon); oceanDepth > 0 && qc.Len() > 0 && qc.Depth[qc.Len()-1] > oceanDepth {
			logger.Warn("profile reaches the sea floor, truncating",
				slog.Float64("oceanDepth", oceanDepth))
			qc = truncate(qc, oceanDepth)
			bottomStrike = true
		}
	}

	if err = writeOutputs(config, in, lat, lon, qc, bottomStrike, logger); err != nil {
		return err
	}

	if !config.NoPlot {
		if err = renderPlot(config, in.session, lat, lon, len(in.readings), in.raw, qc, ref, mismatch); err != nil {
			return err
		}
	}
	return nil
}

func loadFromStore(ctx context.Context, config *Config) (*dropInput, error) {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return nil, fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	session, err := store.Drop(ctx, config.DropID)
	if err != nil {
		return nil, fmt.Errorf("loading drop %d: %w", config.DropID, err)
	}

	iter, err := store.ReadReadings(ctx, config.DropID)
	if err != nil {
		return nil, fmt.Errorf("reading drop %d: %w", config.DropID, err)
	}
	defer iter.Close()

	var readings []drop.ToneReading
	for iter.Next(ctx) {
		readings = append(readings, iter.Current())
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("reading drop %d: %w", config.DropID, err)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("drop %d has no readings", config.DropID)
	}

	in := &dropInput{
		session:  session,
		readings: readings,
		raw:      profile.FromReadings(readings),
	}

	fix, err := store.LastFix(ctx, config.DropID)
	switch {
	case err == nil && fix.Valid:
		in.lat, in.lon, in.havePos = fix.Latitude, fix.Longitude, true
	case err != nil && !errors.Is(err, storage.ErrNoData):
		return nil, fmt.Errorf("loading drop position: %w", err)
	}
	return in, nil
}

func loadFromLog(config *Config) (*dropInput, error) {
	f, err := os.Open(config.LogPath)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	launch, records, err := logdta.Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", config.LogPath, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no records", config.LogPath)
	}

	readings := make([]drop.ToneReading, len(records))
	for i, r := range records {
		readings[i] = drop.ToneReading{
			Elapsed:     r.Elapsed,
			Frequency:   r.Frequency,
			Temperature: r.Temperature,
			Depth:       r.Depth,
		}
	}

	return &dropInput{
		session: &drop.Session{
			StartTime:  launch,
			SourceType: "log",
			SourceID:   filepath.Base(config.LogPath),
		},
		readings: readings,
		raw:      profile.FromReadings(readings),
	}, nil
}

func loadFromEDF(config *Config) (*dropInput, error) {
	f, err := os.Open(config.EDFPath)
	if err != nil {
		return nil, fmt.Errorf("opening EDF file: %w", err)
	}
	defer f.Close()

	meta, temperature, depth, err := edf.Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", config.EDFPath, err)
	}
	if len(depth) == 0 {
		return nil, fmt.Errorf("%s has no profile points", config.EDFPath)
	}

	return &dropInput{
		session: &drop.Session{
			StartTime:  meta.Launch,
			SourceType: "edf",
			SourceID:   filepath.Base(config.EDFPath),
		},
		raw:     profile.Profile{Temperature: temperature, Depth: depth},
		lat:     meta.Latitude,
		lon:     meta.Longitude,
		havePos: true,
	}, nil
}

func resolvePosition(in *dropInput, config *Config, logger *slog.Logger) (lat, lon float64, err error) {
	lat, lon = in.lat, in.lon
	if !in.havePos {
		if config.Latitude == nil || config.Longitude == nil {
			return 0, 0, errors.New("drop has no recorded position; -lat and -lon are required")
		}
		logger.Info("no recorded position, using the configured one")
	}

	if config.Latitude != nil {
		lat = *config.Latitude
	}
	if config.Longitude != nil {
		lon = *config.Longitude
	}
	return lat, lon, nil
}

func truncate(p profile.Profile, maxDepth float64) profile.Profile {
	var out profile.Profile
	for i := range p.Depth {
		if p.Depth[i] > maxDepth {
			break
		}
		out.Depth = append(out.Depth, p.Depth[i])
		out.Temperature = append(out.Temperature, p.Temperature[i])
	}
	return out
}

func writeOutputs(config *Config, in *dropInput, lat, lon float64, qc profile.Profile, bottomStrike bool, logger *slog.Logger) error {
	launch := in.session.StartTime.UTC()

	for _, format := range config.Formats {
		var ext string
		write := func(f *os.File) error { return nil }

		switch format {
		case FormatLOG:
			if len(in.readings) == 0 {
				logger.Warn("skipping LOG output: input carries no raw readings")
				continue
			}
			ext = "DTA"
			records := make([]logdta.Record, len(in.readings))
			for i, r := range in.readings {
				records[i] = logdta.Record{
					Elapsed:     r.Elapsed,
					Depth:       r.Depth,
					Frequency:   r.Frequency,
					Temperature: r.Temperature,
				}
			}
			write = func(f *os.File) error { return logdta.Write(f, launch, records) }

		case FormatEDF:
			ext = "edf"
			meta := edf.Metadata{Launch: launch, Latitude: lat, Longitude: lon}
			write = func(f *os.File) error { return edf.Write(f, meta, qc.Temperature, qc.Depth) }

		case FormatFIN:
			ext = "fin"
			header := fin.Header{
				Year:      launch.Year(),
				Month:     launch.Month(),
				Day:       launch.Day(),
				Time:      launch.Hour()*100 + launch.Minute(),
				Latitude:  lat,
				Longitude: lon,
				Num:       99,
			}
			write = func(f *os.File) error { return fin.Write(f, header, qc.Temperature, qc.Depth) }

		case FormatJJVV:
			ext = "jjvv"
			header := jjvv.Header{
				Day:          launch.Day(),
				Month:        launch.Month(),
				Year:         launch.Year(),
				Time:         launch.Hour()*100 + launch.Minute(),
				Latitude:     lat,
				Longitude:    lon,
				Identifier:   config.Identifier,
				BottomStrike: bottomStrike,
			}
			depth := make([]float64, qc.Len())
			for i, d := range qc.Depth {
				depth[i] = math.Round(d)
			}
			write = func(f *os.File) error { return jjvv.Write(f, header, qc.Temperature, depth) }
		}

		path := fmt.Sprintf("%s.%s", config.OutputFile, ext)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		err = write(f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func renderPlot(config *Config, session *drop.Session, lat, lon float64, readings int, raw, qc profile.Profile, ref *climatology.Reference, mismatch bool) error {
	fontBytes, err := os.ReadFile(config.FontPath)
	if err != nil {
		return fmt.Errorf("reading font: %w", err)
	}

	renderer, err := NewProfileRenderer(RenderConfig{FontBytes: fontBytes})
	if err != nil {
		return fmt.Errorf("creating profile renderer: %w", err)
	}

	img, err := renderer.Render(&PlotData{
		Session:   session,
		Latitude:  lat,
		Longitude: lon,
		Readings:  readings,
		Raw:       raw,
		QC:        qc,
		Reference: ref,
		Mismatch:  mismatch,
	})
	if err != nil {
		return fmt.Errorf("rendering profile: %w", err)
	}

	path := fmt.Sprintf("%s.%s", config.OutputFile, config.Format)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 98})
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
