package dataprocessing

// ProcessingOptions selects between the behavioral variants of the pipeline
type ProcessingOptions struct {
	// EmitWarningOnEmptyScan reports requested scans that have no rows
	EmitWarningOnEmptyScan bool

	// FixedPlotHeight is applied to every layout when set
	FixedPlotHeight *int
}

// DefaultPlotHeight is the plot height used by the web front end
const DefaultPlotHeight = 2500

// DefaultOptions returns the options used when none are configured
func DefaultOptions() ProcessingOptions {
	height := DefaultPlotHeight
	return ProcessingOptions{
		EmitWarningOnEmptyScan: true,
		FixedPlotHeight:        &height,
	}
}

// WithFixedPlotHeight returns a copy of o with the plot height set.
// A height of zero or less clears it.
func (o ProcessingOptions) WithFixedPlotHeight(height int) ProcessingOptions {
	if height <= 0 {
		o.FixedPlotHeight = nil
		return o
	}
	o.FixedPlotHeight = &height
	return o
}
