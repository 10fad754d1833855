// Package visualization renders combined voltammetry plots to static images.
//
// A CombinedPlot is drawn as one line per series using the series color,
// with the layout title and axis titles taken from the plot. NaN points are
// dropped before drawing. PNG and SVG output are supported.
package visualization
