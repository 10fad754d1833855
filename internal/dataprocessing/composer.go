package dataprocessing

import (
	"fmt"

	"voltweb/pkg/contracts/domain"
)

// Layout text of the generated plots
const (
	CombinedTitle    = "Combined Voltammetry Plot"
	PotentialAxis    = "Potential (V)"
	CurrentAxis      = "Current (µA)"
	DeltaCurrentAxis = "Delta Current (µA)"
	DPVTitle         = "Differential Pulse Voltammetry (DPV) Plot"
	cvTitleFormat    = "Cyclic Voltammetry (CV) - %s"

	titleFontSize = 20
	axisFontSize  = 16
)

// Composer assembles series into plots
type Composer struct {
	height *int
}

// NewComposer creates a composer applying the layout options
func NewComposer(opts ProcessingOptions) *Composer {
	return &Composer{height: opts.FixedPlotHeight}
}

// Compose concatenates the series of every file in file-then-scan order.
// Files without series contribute nothing.
func (c *Composer) Compose(perFile [][]domain.Series) domain.CombinedPlot {
	total := 0
	for _, s := range perFile {
		total += len(s)
	}

	series := make([]domain.Series, 0, total)
	for _, s := range perFile {
		series = append(series, s...)
	}

	return domain.CombinedPlot{
		Layout: domain.PlotLayout{
			Title:         CombinedTitle,
			TitleX:        0.5,
			TitleFontSize: titleFontSize,
			XAxisTitle:    PotentialAxis,
			YAxisTitle:    CurrentAxis,
			AxisFontSize:  axisFontSize,
			Height:        c.heightCopy(),
		},
		Series: series,
	}
}

// ComposeSingle builds the per-file plot of one technique
func (c *Composer) ComposeSingle(fileLabel string, technique domain.Technique, series []domain.Series) domain.CombinedPlot {
	layout := domain.PlotLayout{
		TitleX:        0.5,
		TitleFontSize: titleFontSize,
		XAxisTitle:    PotentialAxis,
		AxisFontSize:  axisFontSize,
		Height:        c.heightCopy(),
	}

	switch technique {
	case domain.TechniqueDPV:
		layout.Title = DPVTitle
		layout.YAxisTitle = DeltaCurrentAxis
		layout.HoverMode = "x unified"
	default:
		layout.Title = fmt.Sprintf(cvTitleFormat, fileLabel)
		layout.YAxisTitle = CurrentAxis
	}

	return domain.CombinedPlot{
		Layout: layout,
		Series: append([]domain.Series(nil), series...),
	}
}

func (c *Composer) heightCopy() *int {
	if c.height == nil {
		return nil
	}
	h := *c.height
	return &h
}
