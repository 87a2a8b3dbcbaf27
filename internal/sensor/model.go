package sensor

import "fmt"

// ----------- Model constants -----------
const (
	burstProbability = 0.005 // per-tick chance a quiet vibration sensor starts a burst
	peakProbability  = 0.005 // per-tick chance a sound sensor starts a peak

	defaultFlipProbability = 0.5
	minFlipProbability     = 0.4
	maxFlipProbability     = 0.6

	soundBaseline  = 85.0 // dB the sound level reverts to
	soundMin       = 70.0
	soundMax       = 130.0
	soundPullRatio = 0.1 // share of the gap to baseline recovered per tick

	// delta ranges per sound regime
	peakRiseMin     = 20.0
	peakRiseMax     = 30.0
	peakHoldMin     = -1.0
	peakHoldMax     = 1.0
	peakDecayMin    = -4.0
	peakDecayMax    = -1.0
	ambientNoiseMin = -2.0
	ambientNoiseMax = 2.0

	peakMinTicks      = 5
	peakUpperBoundMin = 15
	peakUpperBoundMax = 60
)

// Step advances s by one tick and returns its new value.
// An unknown kind returns ErrUnknownSensorKind and leaves s untouched.
func Step(s *Sensor, src Source) (float64, error) {
	switch s.Kind {
	case KindVibration:
		stepVibration(s, src)
	case KindAlert:
		s.Value = 0
	case KindSound:
		stepSound(s, src)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSensorKind, s.Kind)
	}
	return s.Value, nil
}

// stepVibration runs the two-state burst chain.
func stepVibration(s *Sensor, src Source) {
	if s.Value == 1 {
		if src.Float64() < s.FlipProbability {
			s.Value = 0
		}
		return
	}
	if src.Float64() < burstProbability {
		s.Value = 1
		s.FlipProbability = src.Uniform(minFlipProbability, maxFlipProbability)
	}
}

// stepSound applies one of the peak, decay or ambient deltas and clamps the result.
func stepSound(s *Sensor, src Source) {
	var delta float64
	switch {
	case s.PeakRemaining > 0:
		s.PeakRemaining--
		if s.PeakRemaining == 0 {
			s.FlipProbability = src.Uniform(minFlipProbability, maxFlipProbability)
			delta = src.Uniform(peakDecayMin, peakDecayMax)
		} else {
			delta = src.Uniform(peakHoldMin, peakHoldMax)
		}
	case src.Float64() < peakProbability:
		delta = src.Uniform(peakRiseMin, peakRiseMax)
		// upper bound drawn first, then the duration itself
		s.PeakRemaining = src.IntBetween(peakMinTicks, src.IntBetween(peakUpperBoundMin, peakUpperBoundMax))
	default:
		delta = src.Uniform(ambientNoiseMin, ambientNoiseMax) + (soundBaseline-s.Value)*soundPullRatio
	}
	s.Value = clamp(s.Value+delta, soundMin, soundMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
