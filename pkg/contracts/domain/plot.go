package domain

// ColorToken is a color drawn from the series palette, as a hex string
type ColorToken string

// Series is one labeled x/y signal, produced per (file, scan) pair
type Series struct {
	Label     string     `json:"label"`
	X         []float64  `json:"x"`
	Y         []float64  `json:"y"`
	Color     ColorToken `json:"color"`
	FileIndex int        `json:"file_index"`
	FileName  string     `json:"file_name"`
	Scan      int        `json:"scan,omitempty"`
	Technique Technique  `json:"technique"`
}

// Len returns the number of points in the series
func (s Series) Len() int {
	return len(s.X)
}

// PlotLayout holds the layout metadata a renderer needs
type PlotLayout struct {
	Title         string  `json:"title"`
	TitleX        float64 `json:"title_x"`
	TitleFontSize int     `json:"title_font_size"`
	XAxisTitle    string  `json:"xaxis_title"`
	YAxisTitle    string  `json:"yaxis_title"`
	AxisFontSize  int     `json:"axis_font_size"`
	HoverMode     string  `json:"hover_mode,omitempty"`
	Height        *int    `json:"height,omitempty"`
}

// CombinedPlot is an ordered list of series plus layout metadata
type CombinedPlot struct {
	Layout PlotLayout `json:"layout"`
	Series []Series   `json:"series"`
}

// Empty reports whether the plot carries no series
func (p CombinedPlot) Empty() bool {
	return len(p.Series) == 0
}
