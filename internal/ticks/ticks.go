package ticks

import "math"

// Tick bounds shared by every concentrated-liquidity pool.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

const (
	// fullRangeFraction is the share of the total tick space a position
	// must span to count as full range.
	fullRangeFraction = 0.9
	// extremeTickAbs marks a bound close enough to the tick limits to be
	// rendered as unbounded. Looser than fullRangeFraction; the two
	// predicates can disagree for spans between the thresholds.
	extremeTickAbs int32 = 800000
)

// RangeState places a pool's current tick relative to a position's
// [lower, upper) range.
type RangeState int

const (
	RangeBelow RangeState = iota
	RangeIn
	RangeAbove
)

func (s RangeState) String() string {
	switch s {
	case RangeBelow:
		return "below"
	case RangeIn:
		return "in_range"
	case RangeAbove:
		return "above"
	default:
		return "unknown"
	}
}

// PriceFromTick converts a tick to a token1-per-token0 price in human
// units, adjusting for the two tokens' decimal scales. Strictly
// increasing in tick for fixed decimals. Ticks outside
// [MinTick, MaxTick] are not rejected; they produce an extreme but
// finite price.
func PriceFromTick(tick int32, decimals0, decimals1 uint8) float64 {
	raw := math.Pow(1.0001, float64(tick))
	return raw * math.Pow(10, float64(decimals0)-float64(decimals1))
}

// InRange reports whether current falls inside [lower, upper). The
// lower bound is inclusive, the upper exclusive.
func InRange(current, lower, upper int32) bool {
	return lower <= current && current < upper
}

// Classify returns the canonical range state for current against
// [lower, upper).
func Classify(current, lower, upper int32) RangeState {
	switch {
	case current < lower:
		return RangeBelow
	case current >= upper:
		return RangeAbove
	default:
		return RangeIn
	}
}

// FullRange reports whether the range spans effectively all prices,
// behaving like a constant-product position.
func FullRange(lower, upper int32) bool {
	span := float64(upper) - float64(lower)
	return span > fullRangeFraction*float64(int64(MaxTick)-int64(MinTick))
}

// NearExtreme reports whether either bound sits near the tick limits.
// Display-only heuristic, kept separate from FullRange.
func NearExtreme(lower, upper int32) bool {
	return lower < -extremeTickAbs || upper > extremeTickAbs
}
