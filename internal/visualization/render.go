package visualization

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"voltweb/pkg/contracts/domain"
)

// ErrEmptyPlot is returned when a plot has no drawable points
var ErrEmptyPlot = errors.New("plot has no drawable points")

// ImageFormat selects the output encoding
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatSVG ImageFormat = "svg"
)

// ParseImageFormat parses an image format name, defaulting to PNG when empty
func ParseImageFormat(s string) (ImageFormat, error) {
	switch ImageFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f ImageFormat) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Renderer draws CombinedPlots with go-chart
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a renderer producing images of the given size.
// A zero height uses the plot layout height when set.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height}
}

// Render writes plot to w in the requested format
func (r *Renderer) Render(w io.Writer, plot *domain.CombinedPlot, format ImageFormat) error {
	if plot == nil || plot.Empty() {
		return ErrEmptyPlot
	}

	series := make([]chart.Series, 0, len(plot.Series))
	for _, s := range plot.Series {
		xs, ys := finitePoints(s.X, s.Y)
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// a single point has a zero-width range
			xs = append(xs, xs[0]+1e-9)
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(s.Color),
		})
	}
	if len(series) == 0 {
		return ErrEmptyPlot
	}

	layout := plot.Layout
	ch := chart.Chart{
		Title:      layout.Title,
		TitleStyle: chart.Style{FontSize: float64(layout.TitleFontSize)},
		Width:      r.Width,
		Height:     r.height(layout),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:      layout.XAxisTitle,
			NameStyle: chart.Style{FontSize: float64(layout.AxisFontSize)},
		},
		YAxis: chart.YAxis{
			Name:      layout.YAxisTitle,
			NameStyle: chart.Style{FontSize: float64(layout.AxisFontSize)},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return nil
}

func (r *Renderer) height(layout domain.PlotLayout) int {
	if r.Height > 0 {
		return r.Height
	}
	if layout.Height != nil && *layout.Height > 0 {
		return *layout.Height
	}
	return chart.DefaultChartHeight
}

func lineStyle(color domain.ColorToken) chart.Style {
	style := chart.Style{StrokeWidth: 2}
	if color != "" {
		style.StrokeColor = drawing.ColorFromHex(strings.TrimPrefix(string(color), "#"))
	}
	return style
}

// finitePoints drops every (x, y) pair where either value is NaN or infinite
func finitePoints(x, y []float64) ([]float64, []float64) {
	if len(x) == len(y) && allFinite(x) && allFinite(y) {
		return append([]float64(nil), x...), append([]float64(nil), y...)
	}

	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(x[i]) && isFinite(y[i]) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
	}
	return xs, ys
}

func allFinite(v []float64) bool {
	if len(v) == 0 {
		return true
	}
	return !floats.HasNaN(v) && isFinite(floats.Min(v)) && isFinite(floats.Max(v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
