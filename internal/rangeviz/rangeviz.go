package rangeviz

import "math"

// State describes how close the current price sits to the range edges.
type State int

const (
	OutOfRange State = iota
	NearEdge
	Safe
)

func (s State) String() string {
	switch s {
	case OutOfRange:
		return "out_of_range"
	case NearEdge:
		return "near_edge"
	case Safe:
		return "safe"
	default:
		return "unknown"
	}
}

// Placement is a padded, clamped indicator position for the current
// price within a display band around the range.
type Placement struct {
	Pct     float64
	State   State
	InRange bool
}

const (
	// padFraction widens the display band beyond the range on each side.
	padFraction = 0.20
	// pctMin/pctMax keep the indicator visible even far outside range.
	pctMin = 3.0
	pctMax = 97.0
	// nearEdgeThreshold is the proximity below which an in-range price
	// is flagged as near an edge.
	nearEdgeThreshold = 0.15
)

// Map positions currentPrice against [priceLower, priceUpper] for
// display. ok is false when the range span is not positive; callers
// should render nothing. Full-range positions and unknown prices are
// the caller's responsibility to suppress.
func Map(currentPrice, priceLower, priceUpper float64) (Placement, bool) {
	span := priceUpper - priceLower
	if span <= 0 {
		return Placement{}, false
	}

	padding := padFraction * span
	displayMin := priceLower - padding
	displaySpan := span + 2*padding

	pct := (currentPrice - displayMin) / displaySpan * 100
	if pct < pctMin {
		pct = pctMin
	}
	if pct > pctMax {
		pct = pctMax
	}

	inRange := priceLower <= currentPrice && currentPrice < priceUpper
	state := OutOfRange
	if inRange {
		proximity := math.Min(currentPrice-priceLower, priceUpper-currentPrice) / (span / 2)
		if proximity < nearEdgeThreshold {
			state = NearEdge
		} else {
			state = Safe
		}
	}

	return Placement{Pct: pct, State: state, InRange: inRange}, true
}
