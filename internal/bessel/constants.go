package bessel

// Method identifiers used by the registry, the configuration layer and the
// comparison tables.
const (
	MethodUp   = "up"
	MethodDown = "down"
)

const (
	// DefaultMargin is the number of orders the downward walk starts above
	// l_max. It is a fixed heuristic: the margin is not derived from x or from
	// the requested precision.
	DefaultMargin = 15

	// RenormalizeLimit is the magnitude above which the unnormalized downward
	// values are scaled back by RenormalizeFactor. A common scale cancels in the
	// final normalization.
	RenormalizeLimit = 1e250

	// RenormalizeFactor multiplies every unnormalized value once
	// RenormalizeLimit is exceeded.
	RenormalizeFactor = 1e-250
)
