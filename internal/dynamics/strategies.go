package dynamics

import (
	"math/rand"

	"pottsmc/internal/chain"
)

// Schedule maps a step index to a real-valued temperature. For the
// Swendsen-Wang update the value is expected to be non-positive so that the
// edge inclusion probability 1-exp(t) lands in [0, 1); the models do not
// clamp out-of-range schedules.
type Schedule func(step int) float64

// ConstantSchedule returns the same temperature at every step.
func ConstantSchedule(t float64) Schedule {
	return func(int) float64 { return t }
}

// LinearSchedule returns start + slope*step.
func LinearSchedule(start, slope float64) Schedule {
	return func(step int) float64 { return start + slope*float64(step) }
}

// AcceptFunc decides whether a proposal is committed.
type AcceptFunc func(ch *chain.Chain) bool

// AlwaysAccept accepts every proposal. This is the default policy: the
// Swendsen-Wang update already samples from the correct conditional, so no
// rejection step is needed.
func AlwaysAccept() AcceptFunc {
	return func(*chain.Chain) bool { return true }
}

// Distribution samples an integer in [low, high).
type Distribution func(low, high int) int

// UniformDistribution samples uniformly from [low, high) using rng.
func UniformDistribution(rng *rand.Rand) Distribution {
	return func(low, high int) int {
		if high <= low {
			return low
		}
		return low + rng.Intn(high-low)
	}
}
