package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/oceansonde/ares/internal/profile"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

const (
	FormatLOG  = "log"
	FormatEDF  = "edf"
	FormatFIN  = "fin"
	FormatJJVV = "jjvv"
)

type ImageFormat string

type Config struct {
	DBPath     string
	DropID     int64
	LogPath    string
	EDFPath    string
	ClimoPath  string
	FontPath   string
	OutputFile string
	Formats    []string
	Format     ImageFormat
	NoPlot     bool

	// Identifier is the platform identifier carried in JJVV messages.
	Identifier string

	// Latitude and Longitude override the position recorded with the drop;
	// Month overrides the climatology month derived from the launch time.
	Latitude  *float64
	Longitude *float64
	Month     *time.Month

	QC profile.Options
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

var validOutputFormats = map[string]struct{}{
	FormatLOG:  {},
	FormatEDF:  {},
	FormatFIN:  {},
	FormatJJVV: {},
}

func NewConfig() *Config {
	return &Config{
		Format:     ImagePNG,
		Formats:    []string{FormatLOG, FormatEDF, FormatFIN, FormatJJVV},
		Identifier: "AXBT",
		QC:         profile.DefaultOptions(),
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, formats string
	var latitude, longitude float64
	var month int
	var noGapCheck bool
	flag.StringVar(&c.DBPath, "db", "", "Path to the drop database file")
	flag.Int64Var(&c.DropID, "drop", 1, "Drop ID")
	flag.StringVar(&c.LogPath, "log", "", "Process a LOG (.DTA) file instead of a database drop")
	flag.StringVar(&c.EDFPath, "edf", "", "Process an EDF file instead of a database drop")
	flag.StringVar(&c.ClimoPath, "climo", "", "Path to the climatology data file (omit to skip the climatology check)")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TrueType font used for plot annotations")
	flag.StringVar(&c.OutputFile, "o", "", "Output file base path; format extensions are appended")
	flag.StringVar(&formats, "formats", strings.Join(c.Formats, ","), "Comma-separated output formats. [log, edf, fin, jjvv]")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Plot image format. [png, jpeg]")
	flag.BoolVar(&c.NoPlot, "no-plot", false, "Skip rendering the profile plot")
	flag.StringVar(&c.Identifier, "id", c.Identifier, "Platform identifier for JJVV messages")
	flag.Float64Var(&latitude, "lat", 0, "Override drop latitude, degrees north")
	flag.Float64Var(&longitude, "lon", 0, "Override drop longitude, degrees east")
	flag.IntVar(&month, "month", 0, "Override the climatology month (1-12)")
	flag.Float64Var(&c.QC.SmoothWindow, "smooth-window", c.QC.SmoothWindow, "Smoothing half-window in meters")
	flag.Float64Var(&c.QC.MinResolution, "resolution", c.QC.MinResolution, "Minimum depth spacing of the subsampled profile in meters")
	flag.Float64Var(&c.QC.MaxStdDev, "max-stdev", c.QC.MaxStdDev, "Despiker tolerance in standard deviations")
	flag.BoolVar(&noGapCheck, "no-gap-check", false, "Disable the false-start gap check")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "lat" {
			c.Latitude = &latitude
		}
		if f.Name == "lon" {
			c.Longitude = &longitude
		}
		if f.Name == "month" {
			m := time.Month(month)
			c.Month = &m
		}
	})
	c.QC.CheckForGaps = !noGapCheck

	inputs := 0
	for _, p := range []string{c.DBPath, c.LogPath, c.EDFPath} {
		if p != "" {
			inputs++
		}
	}

	var err error
	if inputs != 1 {
		err = errors.New("exactly one of -db, -log or -edf is required")
	} else if c.DBPath != "" && c.DropID <= 0 {
		err = errors.New("drop id is required")
	} else if c.Month != nil && (*c.Month < time.January || *c.Month > time.December) {
		err = fmt.Errorf("invalid month %d", month)
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if !c.NoPlot && c.FontPath == "" {
		err = errors.New("font path is required unless -no-plot is set")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else {
		c.Formats = c.Formats[:0]
		for _, f := range strings.Split(formats, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" {
				continue
			}
			if _, ok := validOutputFormats[f]; !ok {
				err = fmt.Errorf("invalid output format: %s", f)
				break
			}
			c.Formats = append(c.Formats, f)
		}
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	return c, nil
}
