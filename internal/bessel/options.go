package bessel

// Options configures an evaluation through the Evaluator interface.
type Options struct {
	// Margin is the number of orders the downward walk starts above l_max.
	// Zero selects DefaultMargin; a negative margin is rejected by the
	// downward evaluator as a configuration error.
	Margin int
	// Seeds overrides the downward seeds (0, 1) when non-nil.
	Seeds *Seeds
	// Anchor selects the downward normalization value.
	Anchor Anchor
}

// normalizeOptions returns a copy of opts with default values filled in for zero values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Margin == 0 {
		normalized.Margin = DefaultMargin
	}
	return normalized
}

// downwardOptions extracts the walk options.
func (o Options) downwardOptions() DownwardOptions {
	return DownwardOptions{Seeds: o.Seeds, Anchor: o.Anchor}
}
