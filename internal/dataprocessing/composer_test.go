package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltweb/pkg/contracts/domain"
)

func TestComposer_Compose(t *testing.T) {
	c := NewComposer(ProcessingOptions{})

	perFile := [][]domain.Series{
		{{Label: "a - Scan 1"}, {Label: "a - Scan 2"}},
		nil,
		{{Label: "b"}, {Label: "b"}},
	}

	plot := c.Compose(perFile)

	labels := make([]string, len(plot.Series))
	for i, s := range plot.Series {
		labels[i] = s.Label
	}
	assert.Equal(t, []string{"a - Scan 1", "a - Scan 2", "b", "b"}, labels)

	assert.Equal(t, CombinedTitle, plot.Layout.Title)
	assert.Equal(t, 0.5, plot.Layout.TitleX)
	assert.Equal(t, 20, plot.Layout.TitleFontSize)
	assert.Equal(t, "Potential (V)", plot.Layout.XAxisTitle)
	assert.Equal(t, "Current (µA)", plot.Layout.YAxisTitle)
	assert.Equal(t, 16, plot.Layout.AxisFontSize)
	assert.Nil(t, plot.Layout.Height)
}

func TestComposer_ComposeEmpty(t *testing.T) {
	plot := NewComposer(ProcessingOptions{}).Compose(nil)
	assert.True(t, plot.Empty())
	assert.NotNil(t, plot.Series)
	assert.Equal(t, CombinedTitle, plot.Layout.Title)
}

func TestComposer_ComposeSingle(t *testing.T) {
	c := NewComposer(ProcessingOptions{}.WithFixedPlotHeight(800))

	cv := c.ComposeSingle("cv.csv", domain.TechniqueCV, []domain.Series{{Label: "cv.csv - Scan 1"}})
	assert.Equal(t, "Cyclic Voltammetry (CV) - cv.csv", cv.Layout.Title)
	assert.Equal(t, "Current (µA)", cv.Layout.YAxisTitle)
	assert.Empty(t, cv.Layout.HoverMode)
	require.NotNil(t, cv.Layout.Height)
	assert.Equal(t, 800, *cv.Layout.Height)

	dpv := c.ComposeSingle("dpv.csv", domain.TechniqueDPV, []domain.Series{{Label: "dpv.csv"}})
	assert.Equal(t, DPVTitle, dpv.Layout.Title)
	assert.Equal(t, "Delta Current (µA)", dpv.Layout.YAxisTitle)
	assert.Equal(t, "x unified", dpv.Layout.HoverMode)
	assert.Len(t, dpv.Series, 1)
}

func TestProcessingOptions_WithFixedPlotHeight(t *testing.T) {
	opts := DefaultOptions()
	require.NotNil(t, opts.FixedPlotHeight)
	assert.Equal(t, DefaultPlotHeight, *opts.FixedPlotHeight)

	assert.Nil(t, opts.WithFixedPlotHeight(0).FixedPlotHeight)
	assert.Equal(t, 600, *opts.WithFixedPlotHeight(600).FixedPlotHeight)
	assert.Equal(t, DefaultPlotHeight, *opts.FixedPlotHeight)
}
