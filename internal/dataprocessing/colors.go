package dataprocessing

import "voltweb/pkg/contracts/domain"

// DefaultPalette is the ordered series palette
var DefaultPalette = []domain.ColorToken{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

type seriesIdentity struct {
	file, scan int
}

// ColorAssigner hands out palette colors for one processing run. With a
// single file every scan draws the next color; with several files each file
// draws one color up front and all of its scans share it. A fresh assigner
// always starts at the first palette entry.
//
// A ColorAssigner is not safe for concurrent use.
type ColorAssigner struct {
	palette    []domain.ColorToken
	cursor     int
	numFiles   int
	fileColors []domain.ColorToken
	assigned   map[seriesIdentity]domain.ColorToken
}

// NewColorAssigner creates an assigner for a run over numFiles files.
// An empty palette falls back to DefaultPalette.
func NewColorAssigner(palette []domain.ColorToken, numFiles int) *ColorAssigner {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	c := &ColorAssigner{
		palette:  palette,
		numFiles: numFiles,
		assigned: make(map[seriesIdentity]domain.ColorToken),
	}
	if numFiles > 1 {
		c.fileColors = make([]domain.ColorToken, numFiles)
		for i := range c.fileColors {
			c.fileColors[i] = c.next()
		}
	}
	return c
}

// Assign returns the color of the (fileIndex, scanIndex) identity, drawing a
// new one on first use
func (c *ColorAssigner) Assign(fileIndex, scanIndex int) domain.ColorToken {
	id := seriesIdentity{file: fileIndex, scan: scanIndex}
	if color, ok := c.assigned[id]; ok {
		return color
	}

	var color domain.ColorToken
	if c.numFiles > 1 && fileIndex >= 0 && fileIndex < len(c.fileColors) {
		color = c.fileColors[fileIndex]
	} else {
		color = c.next()
	}
	c.assigned[id] = color
	return color
}

func (c *ColorAssigner) next() domain.ColorToken {
	color := c.palette[c.cursor%len(c.palette)]
	c.cursor++
	return color
}
