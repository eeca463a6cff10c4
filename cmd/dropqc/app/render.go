package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/oceansonde/ares/internal/climatology"
	"github.com/oceansonde/ares/internal/drop"
	"github.com/oceansonde/ares/internal/profile"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkLength = 5

	plotWidth  = 700
	plotHeight = 800

	// Temperature axis bounds in degC, matching the AXBT transfer range.
	tempAxisMin = -3.0
	tempAxisMax = 32.0

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 60
	defaultRightBorder  = 40
)

var (
	colorGrid     = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	colorFillBand = color.RGBA{R: 176, G: 212, B: 240, A: 255}
	colorRaw      = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	colorQC       = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorMismatch = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// BorderConfig defines the sizes of white space around the plot
type BorderConfig struct {
	Top    int // Space for temperature scale
	Left   int // Space for depth scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for profile visualization
type RenderConfig struct {
	FontBytes []byte  // TrueType font used for annotations
	FontSize  float64 // Font size in points

	BorderConfig BorderConfig
}

// PlotData is everything drawn on a drop plot: the raw and
// quality-controlled profiles, the optional climatology band, and the drop
// metadata shown in the information bar.
type PlotData struct {
	Session   *drop.Session
	Latitude  float64
	Longitude float64
	Readings  int

	Raw       profile.Profile
	QC        profile.Profile
	Reference *climatology.Reference
	Mismatch  bool
}

// ProfileRenderer handles the visualization of a drop: temperature across,
// depth down.
type ProfileRenderer struct {
	config RenderConfig
	font   *truetype.Font
}

// NewProfileRenderer creates a new profile renderer with the given configuration
func NewProfileRenderer(config RenderConfig) (*ProfileRenderer, error) {
	parsedFont, err := freetype.ParseFont(config.FontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	// Set defaults for zero values
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &ProfileRenderer{config: config, font: parsedFont}, nil
}

// Render creates an image of the drop with annotations
func (r *ProfileRenderer) Render(data *PlotData) (*image.RGBA, error) {
	fullWidth := plotWidth + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := plotHeight + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+plotWidth,
		r.config.BorderConfig.Top+plotHeight,
	)

	depthMax := maxPlotDepth(data)
	project := func(temp, depth float64) (float64, float64) {
		x := float64(area.Min.X) + (temp-tempAxisMin)/(tempAxisMax-tempAxisMin)*float64(plotWidth)
		y := float64(area.Min.Y) + depth/depthMax*float64(plotHeight)
		return x, y
	}

	r.drawGrid(img, area, depthMax)
	if data.Reference != nil {
		fillPolygon(img, area, data.Reference.TempFill, data.Reference.DepthFill, project, colorFillBand)
		drawPolyline(img, area, data.Reference.Temperature, data.Reference.Depth, project, color.RGBA{R: 60, G: 110, B: 180, A: 255})
	}
	drawPolyline(img, area, data.Raw.Temperature, data.Raw.Depth, project, colorRaw)
	drawPolyline(img, area, data.QC.Temperature, data.QC.Depth, project, colorQC)
	drawFrame(img, area)

	ann, err := newAnnotator(r.font, r.config)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, area, data, depthMax); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	return img, nil
}

// maxPlotDepth picks the depth axis bound: the deepest point of any drawn
// series rounded up to the next 100 m, at least 200 m.
func maxPlotDepth(data *PlotData) float64 {
	deepest := 0.0
	scan := func(depths []float64) {
		for _, d := range depths {
			if !math.IsNaN(d) && d > deepest {
				deepest = d
			}
		}
	}
	scan(data.Raw.Depth)
	scan(data.QC.Depth)
	if data.Reference != nil {
		scan(data.Reference.Depth)
	}

	bound := math.Ceil(deepest/100) * 100
	if bound < 200 {
		bound = 200
	}
	return bound
}

func (r *ProfileRenderer) drawGrid(img *image.RGBA, area image.Rectangle, depthMax float64) {
	for temp := 0.0; temp <= tempAxisMax; temp += 5 {
		x := area.Min.X + int((temp-tempAxisMin)/(tempAxisMax-tempAxisMin)*float64(plotWidth))
		for y := area.Min.Y; y < area.Max.Y; y++ {
			img.Set(x, y, colorGrid)
		}
	}
	for depth := 0.0; depth <= depthMax; depth += 100 {
		y := area.Min.Y + int(depth/depthMax*float64(plotHeight))
		for x := area.Min.X; x < area.Max.X; x++ {
			img.Set(x, y, colorGrid)
		}
	}
}

func drawFrame(img *image.RGBA, area image.Rectangle) {
	for x := area.Min.X; x <= area.Max.X; x++ {
		img.Set(x, area.Min.Y, color.Black)
		img.Set(x, area.Max.Y, color.Black)
	}
	for y := area.Min.Y; y <= area.Max.Y; y++ {
		img.Set(area.Min.X, y, color.Black)
		img.Set(area.Max.X, y, color.Black)
	}
}

// drawPolyline connects consecutive finite points; NaN values break the
// line so signal dropouts stay visible as gaps.
func drawPolyline(img *image.RGBA, area image.Rectangle, temps, depths []float64, project func(float64, float64) (float64, float64), c color.Color) {
	havePrev := false
	var prevX, prevY float64
	for i := range depths {
		if math.IsNaN(temps[i]) || math.IsNaN(depths[i]) {
			havePrev = false
			continue
		}
		x, y := project(temps[i], depths[i])
		if havePrev {
			drawLine(img, area, prevX, prevY, x, y, c)
		}
		havePrev = true
		prevX, prevY = x, y
	}
}

func drawLine(img *image.RGBA, area image.Rectangle, x0, y0, x1, y1 float64, c color.Color) {
	steps := math.Max(math.Abs(x1-x0), math.Abs(y1-y0))
	if steps < 1 {
		steps = 1
	}
	for i := 0.0; i <= steps; i++ {
		x := int(math.Round(x0 + (x1-x0)*i/steps))
		y := int(math.Round(y0 + (y1-y0)*i/steps))
		if image.Pt(x, y).In(area) {
			img.Set(x, y, c)
		}
	}
}

// fillPolygon rasterizes a closed polygon with even-odd scanline filling.
func fillPolygon(img *image.RGBA, area image.Rectangle, temps, depths []float64, project func(float64, float64) (float64, float64), c color.Color) {
	n := len(depths)
	if n < 3 {
		return
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range depths {
		xs[i], ys[i] = project(temps[i], depths[i])
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		fy := float64(y) + 0.5

		var crossings []float64
		j := n - 1
		for i := 0; i < n; i++ {
			if (ys[i] > fy) != (ys[j] > fy) {
				x := xs[i] + (fy-ys[i])/(ys[j]-ys[i])*(xs[j]-xs[i])
				crossings = append(crossings, x)
			}
			j = i
		}
		sort.Float64s(crossings)

		for k := 0; k+1 < len(crossings); k += 2 {
			from := int(math.Ceil(crossings[k]))
			to := int(math.Floor(crossings[k+1]))
			for x := from; x <= to; x++ {
				if image.Pt(x, y).In(area) {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// Internal annotator implementation

type annotator struct {
	context  *freetype.Context
	config   RenderConfig
	fontFace font.Face
}

func newAnnotator(parsedFont *truetype.Font, config RenderConfig) (*annotator, error) {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, area image.Rectangle, data *PlotData, depthMax float64) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawTemperatureScale(img, area); err != nil {
		return fmt.Errorf("drawing temperature scale: %w", err)
	}
	if err := a.drawDepthScale(img, area, depthMax); err != nil {
		return fmt.Errorf("drawing depth scale: %w", err)
	}
	if err := a.drawInfoBar(img, area, data); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}
	if data.Mismatch {
		if err := a.drawMismatchBanner(area); err != nil {
			return fmt.Errorf("drawing mismatch banner: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawTemperatureScale(img *image.RGBA, area image.Rectangle) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := area.Min.Y - fontHeight/2

	for temp := 0.0; temp <= tempAxisMax; temp += 5 {
		x := area.Min.X + int((temp-tempAxisMin)/(tempAxisMax-tempAxisMin)*float64(plotWidth))

		for y := area.Min.Y - tickMarkLength; y < area.Min.Y; y++ {
			img.Set(x, y, color.Black)
		}

		label := fmt.Sprintf("%.0f°C", temp)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing temperature label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawDepthScale(img *image.RGBA, area image.Rectangle, depthMax float64) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for depth := 0.0; depth <= depthMax; depth += 100 {
		imgY := area.Min.Y + int(depth/depthMax*float64(plotHeight))

		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			img.Set(x, imgY, color.Black)
		}

		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		label := fmt.Sprintf("%.0f m", depth)
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing depth label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, area image.Rectangle, data *PlotData) error {
	var sb strings.Builder

	if data.Session.ID > 0 {
		sb.WriteString(fmt.Sprintf("Drop %d", data.Session.ID))
	} else {
		sb.WriteString(data.Session.SourceID)
	}
	if data.Session.VHFChannel != 0 {
		sb.WriteString(fmt.Sprintf("; Ch %.0f (%.3f MHz)", data.Session.VHFChannel, data.Session.VHFFrequency))
	}
	sb.WriteString(fmt.Sprintf("; %s", formatPosition(data.Latitude, data.Longitude)))
	sb.WriteString(fmt.Sprintf("; %s", data.Session.StartTime.UTC().Format("2006-01-02 15:04")))
	if data.Readings > 0 {
		sb.WriteString(fmt.Sprintf("; %s readings", humanize.Comma(int64(data.Readings))))
	}
	sb.WriteString(fmt.Sprintf("; %d QC points", data.QC.Len()))

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.BorderConfig.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(area.Min.X, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

func (a *annotator) drawMismatchBanner(area image.Rectangle) error {
	const banner = "Climatology Mismatch!"

	a.context.SetSrc(image.NewUniform(colorMismatch))
	defer a.context.SetSrc(image.Black)

	width := font.MeasureString(a.fontFace, banner)
	metrics := a.fontFace.Metrics()
	x := area.Min.X + (plotWidth-width.Round())/2
	y := area.Min.Y + metrics.Ascent.Round() + 10

	_, err := a.context.DrawString(banner, freetype.Pt(x, y))
	return err
}

func formatPosition(lat, lon float64) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.3f°%s %.3f°%s", lat, ns, lon, ew)
}
