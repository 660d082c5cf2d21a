package outline

// Options holds the heuristic thresholds. Zero fields fall back to the
// defaults.
type Options struct {
	// BandMargin is the height of the header and footer bands, in the
	// same units as word coordinates.
	BandMargin float64

	// BoilerplateRatio is the fraction of pages a band line must recur on
	// (strictly more than) before it is treated as a running header/footer.
	BoilerplateRatio float64

	// MaxHeadingLen is the longest line, in characters, that can be a heading.
	MaxHeadingLen int

	// MinTitleLen is the length a word must exceed to be a title candidate.
	MinTitleLen int

	// MinBoilerplateLen is the length a band line must exceed to be counted.
	MinBoilerplateLen int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		BandMargin:        50,
		BoilerplateRatio:  0.6,
		MaxHeadingLen:     100,
		MinTitleLen:       10,
		MinBoilerplateLen: 3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BandMargin <= 0 {
		o.BandMargin = d.BandMargin
	}
	if o.BoilerplateRatio <= 0 {
		o.BoilerplateRatio = d.BoilerplateRatio
	}
	if o.MaxHeadingLen <= 0 {
		o.MaxHeadingLen = d.MaxHeadingLen
	}
	if o.MinTitleLen <= 0 {
		o.MinTitleLen = d.MinTitleLen
	}
	if o.MinBoilerplateLen <= 0 {
		o.MinBoilerplateLen = d.MinBoilerplateLen
	}
	return o
}
