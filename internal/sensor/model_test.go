package sensor

import (
	"errors"
	"math"
	"testing"
)

// ---- Test doubles ----

// scriptedSource replays queued draws. Empty queues fall back to neutral values.
type scriptedSource struct {
	floats []float64 // Float64 results
	fracs  []float64 // Uniform results as a fraction of [lo, hi]
	ints   []int     // IntBetween results

	intCalls [][2]int
	draws    int
}

func (s *scriptedSource) Float64() float64 {
	s.draws++
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) Uniform(lo, hi float64) float64 {
	s.draws++
	frac := 0.5
	if len(s.fracs) > 0 {
		frac = s.fracs[0]
		s.fracs = s.fracs[1:]
	}
	return lo + frac*(hi-lo)
}

func (s *scriptedSource) IntBetween(lo, hi int) int {
	s.draws++
	s.intCalls = append(s.intCalls, [2]int{lo, hi})
	if len(s.ints) == 0 {
		return lo
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func mustSensor(t *testing.T, kind Kind) *Sensor {
	t.Helper()
	s, err := NewSensor(Spec{ID: string(kind), Name: string(kind), Kind: kind}, DefaultInitialValues())
	if err != nil {
		t.Fatalf("NewSensor(%q): %v", kind, err)
	}
	return s
}

func mustStep(t *testing.T, s *Sensor, src Source) float64 {
	t.Helper()
	v, err := Step(s, src)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return v
}

// ---- Invariants over long runs ----

func TestStep_ValuesStayInRange(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42} {
		src := NewSource(seed)
		vib := mustSensor(t, KindVibration)
		alert := mustSensor(t, KindAlert)
		sound := mustSensor(t, KindSound)

		for i := 0; i < 200_000; i++ {
			if v := mustStep(t, vib, src); v != 0 && v != 1 {
				t.Fatalf("seed %d tick %d: vibration value %v not binary", seed, i, v)
			}
			if vib.FlipProbability < 0.4 || vib.FlipProbability > 0.6 {
				t.Fatalf("seed %d tick %d: vibration flip %v out of range", seed, i, vib.FlipProbability)
			}
			if v := mustStep(t, alert, src); v != 0 {
				t.Fatalf("seed %d tick %d: alert value %v, want 0", seed, i, v)
			}
			v := mustStep(t, sound, src)
			if v < 70 || v > 130 {
				t.Fatalf("seed %d tick %d: sound value %v out of [70,130]", seed, i, v)
			}
			if sound.PeakRemaining < 0 {
				t.Fatalf("seed %d tick %d: negative peak countdown %d", seed, i, sound.PeakRemaining)
			}
			if sound.FlipProbability < 0.4 || sound.FlipProbability > 0.6 {
				t.Fatalf("seed %d tick %d: sound flip %v out of range", seed, i, sound.FlipProbability)
			}
		}
	}
}

func TestStep_AlertIsForcedToZero(t *testing.T) {
	s := mustSensor(t, KindAlert)
	s.Value = 3
	src := &scriptedSource{}
	if v := mustStep(t, s, src); v != 0 {
		t.Fatalf("got %v, want 0", v)
	}
	if src.draws != 0 {
		t.Fatalf("alert consumed %d draws, want 0", src.draws)
	}
}

// ---- Vibration ----

func TestStep_VibrationStartsBurstAndResamplesFlip(t *testing.T) {
	s := mustSensor(t, KindVibration)
	src := &scriptedSource{
		floats: []float64{burstProbability - 1e-9},
		fracs:  []float64{0.75},
	}

	if v := mustStep(t, s, src); v != 1 {
		t.Fatalf("expected burst on tick 1, got %v", v)
	}
	want := 0.55
	if math.Abs(s.FlipProbability-want) > 1e-12 {
		t.Fatalf("flip: got %v, want %v", s.FlipProbability, want)
	}
}

func TestStep_VibrationStaysQuietAtThreshold(t *testing.T) {
	s := mustSensor(t, KindVibration)
	src := &scriptedSource{floats: []float64{burstProbability}}

	if v := mustStep(t, s, src); v != 0 {
		t.Fatalf("expected no burst at the threshold, got %v", v)
	}
	if s.FlipProbability != defaultFlipProbability {
		t.Fatalf("flip changed without a burst: %v", s.FlipProbability)
	}
}

func TestStep_VibrationBurstEnds(t *testing.T) {
	cases := []struct {
		name  string
		draw  float64
		flip  float64
		value float64
	}{
		{"draw below flip ends burst", 0.41, 0.45, 0},
		{"draw at flip keeps burst", 0.45, 0.45, 1},
		{"draw above flip keeps burst", 0.9, 0.45, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := mustSensor(t, KindVibration)
			s.Value = 1
			s.FlipProbability = tc.flip
			src := &scriptedSource{floats: []float64{tc.draw}}
			if v := mustStep(t, s, src); v != tc.value {
				t.Fatalf("got %v, want %v", v, tc.value)
			}
			if s.FlipProbability != tc.flip {
				t.Fatalf("flip must only change when a burst starts, got %v", s.FlipProbability)
			}
		})
	}
}

// ---- Sound ----

func TestStep_SoundAmbientPullsTowardBaseline(t *testing.T) {
	// no peak, zero noise: only the pull term acts
	s := mustSensor(t, KindSound)
	src := &scriptedSource{}
	for i := 0; i < 10; i++ {
		if v := mustStep(t, s, src); v != soundBaseline {
			t.Fatalf("tick %d: got %v, want %v", i, v, soundBaseline)
		}
	}

	s.Value = 100
	prev := s.Value
	for i := 0; i < 10; i++ {
		v := mustStep(t, s, src)
		if v >= prev || v < soundBaseline {
			t.Fatalf("tick %d: %v should move from %v toward %v", i, v, prev, soundBaseline)
		}
		prev = v
	}
	if prev > soundBaseline+6 {
		t.Fatalf("after 10 ticks value %v still far from baseline", prev)
	}
}

func TestStep_SoundStartsPeakWithNestedDuration(t *testing.T) {
	s := mustSensor(t, KindSound)
	src := &scriptedSource{
		floats: []float64{peakProbability / 2},
		fracs:  []float64{0.5},
		ints:   []int{40, 12},
	}

	v := mustStep(t, s, src)
	if v != soundBaseline+25 {
		t.Fatalf("got %v, want %v", v, soundBaseline+25)
	}
	if s.PeakRemaining != 12 {
		t.Fatalf("peak remaining: got %d, want 12", s.PeakRemaining)
	}
	if len(src.intCalls) != 2 {
		t.Fatalf("expected 2 integer draws, got %d", len(src.intCalls))
	}
	if src.intCalls[0] != [2]int{15, 60} || src.intCalls[1] != [2]int{5, 40} {
		t.Fatalf("unexpected duration draws: %v", src.intCalls)
	}
}

func TestStep_SoundHoldsDuringPeak(t *testing.T) {
	s := mustSensor(t, KindSound)
	s.Value = 110
	s.PeakRemaining = 3
	src := &scriptedSource{fracs: []float64{1}}

	if v := mustStep(t, s, src); v != 111 {
		t.Fatalf("got %v, want 111", v)
	}
	if s.PeakRemaining != 2 {
		t.Fatalf("peak remaining: got %d, want 2", s.PeakRemaining)
	}
	if s.FlipProbability != defaultFlipProbability {
		t.Fatalf("flip resampled mid-peak: %v", s.FlipProbability)
	}
}

func TestStep_SoundPeakEndResamplesFlipAndDescends(t *testing.T) {
	s := mustSensor(t, KindSound)
	s.Value = 110
	s.PeakRemaining = 1
	src := &scriptedSource{fracs: []float64{0, 1}}

	v := mustStep(t, s, src)
	if s.PeakRemaining != 0 {
		t.Fatalf("peak remaining: got %d, want 0", s.PeakRemaining)
	}
	if s.FlipProbability != minFlipProbability {
		t.Fatalf("flip: got %v, want %v", s.FlipProbability, minFlipProbability)
	}
	if v != 109 {
		t.Fatalf("got %v, want 109", v)
	}
}

func TestStep_SoundClampsToRange(t *testing.T) {
	s := mustSensor(t, KindSound)
	s.Value = 125
	src := &scriptedSource{floats: []float64{0}, fracs: []float64{1}, ints: []int{60, 60}}
	if v := mustStep(t, s, src); v != soundMax {
		t.Fatalf("got %v, want %v", v, soundMax)
	}

	s = mustSensor(t, KindSound)
	s.Value = 71
	s.PeakRemaining = 1
	src = &scriptedSource{fracs: []float64{0.5, 0}}
	if v := mustStep(t, s, src); v != soundMin {
		t.Fatalf("got %v, want %v", v, soundMin)
	}
}

func TestStep_SoundEndsBelowPeakStartOnAverage(t *testing.T) {
	src := NewSource(2024)
	s := mustSensor(t, KindSound)

	var (
		startSum, endSum float64
		peaks            int
		startValue       float64
	)
	for i := 0; i < 1_000_000; i++ {
		before := s.PeakRemaining
		v := mustStep(t, s, src)
		switch {
		case before == 0 && s.PeakRemaining > 0:
			startValue = v
		case before == 1 && s.PeakRemaining == 0:
			startSum += startValue
			endSum += v
			peaks++
		}
	}
	if peaks < 100 {
		t.Fatalf("too few peaks observed: %d", peaks)
	}
	if endSum/float64(peaks) >= startSum/float64(peaks) {
		t.Fatalf("mean end %.2f not below mean start %.2f over %d peaks",
			endSum/float64(peaks), startSum/float64(peaks), peaks)
	}
}

// ---- Determinism & errors ----

func TestStep_DeterministicUnderSeed(t *testing.T) {
	run := func() []float64 {
		src := NewSource(99)
		sensors, err := NewSensors([]Spec{
			{ID: "v", Kind: KindVibration},
			{ID: "a", Kind: KindAlert},
			{ID: "s", Kind: KindSound},
		}, DefaultInitialValues())
		if err != nil {
			t.Fatalf("NewSensors: %v", err)
		}
		out := make([]float64, 0, 3*5000)
		for i := 0; i < 5000; i++ {
			for _, s := range sensors {
				out = append(out, mustStep(t, s, src))
			}
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sequences diverge at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStep_UnknownKindFailsWithoutMutation(t *testing.T) {
	s := &Sensor{ID: "h", Kind: Kind("humidity"), Value: 42, FlipProbability: 0.5, PeakRemaining: 3}
	before := *s
	src := &scriptedSource{}

	_, err := Step(s, src)
	if !errors.Is(err, ErrUnknownSensorKind) {
		t.Fatalf("expected ErrUnknownSensorKind, got %v", err)
	}
	if *s != before {
		t.Fatalf("sensor mutated: %+v -> %+v", before, *s)
	}
	if src.draws != 0 {
		t.Fatalf("unknown kind consumed %d draws", src.draws)
	}
}
