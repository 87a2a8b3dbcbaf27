package service

import (
	"errors"
	"fmt"

	"sensor_simulator/internal/sensor"
)

const (
	DefaultBatchTicks = 1440 // one day at one tick per minute
	MaxBatchTicks     = 100_000
)

var ErrInvalidTicks = errors.New("ticks out of range")

// Series holds one value per tick for the first sensor of each kind.
type Series struct {
	Ticks     int       `json:"ticks"`
	Seed      uint64    `json:"seed"`
	Vibration []float64 `json:"vibration,omitempty"`
	Alert     []float64 `json:"alert,omitempty"`
	Sound     []float64 `json:"sound,omitempty"`
}

// ByKind returns the series for kind, nil when the batch had no such sensor.
func (s Series) ByKind(kind sensor.Kind) []float64 {
	switch kind {
	case sensor.KindVibration:
		return s.Vibration
	case sensor.KindAlert:
		return s.Alert
	case sensor.KindSound:
		return s.Sound
	default:
		return nil
	}
}

// BatchService simulates offline runs. It never touches the live sensors.
type BatchService struct {
	specs   []sensor.Spec
	initial sensor.InitialValues
}

func NewBatchService(specs []sensor.Spec, initial sensor.InitialValues) *BatchService {
	return &BatchService{specs: specs, initial: initial}
}

// Simulate steps fresh sensors ticks times with a source seeded by seed.
// Seed 0 picks a random seed; the returned Series carries the seed actually used.
func (s *BatchService) Simulate(ticks int, seed uint64) (Series, error) {
	if ticks <= 0 || ticks > MaxBatchTicks {
		return Series{}, fmt.Errorf("%w: %d (1..%d)", ErrInvalidTicks, ticks, MaxBatchTicks)
	}
	sensors, err := sensor.NewSensors(s.specs, s.initial)
	if err != nil {
		return Series{}, err
	}
	seed = sensor.ResolveSeed(seed)
	src := sensor.NewSource(seed)

	// first sensor of each kind feeds the series; the rest still advance
	tracked := make(map[sensor.Kind]int, 3)
	for i, sn := range sensors {
		if _, ok := tracked[sn.Kind]; !ok {
			tracked[sn.Kind] = i
		}
	}
	out := Series{Ticks: ticks, Seed: seed}
	columns := make(map[int]*[]float64, len(tracked))
	for kind, idx := range tracked {
		col := make([]float64, 0, ticks)
		switch kind {
		case sensor.KindVibration:
			out.Vibration = col
			columns[idx] = &out.Vibration
		case sensor.KindAlert:
			out.Alert = col
			columns[idx] = &out.Alert
		case sensor.KindSound:
			out.Sound = col
			columns[idx] = &out.Sound
		}
	}

	for t := 0; t < ticks; t++ {
		for i, sn := range sensors {
			v, err := sensor.Step(sn, src)
			if err != nil {
				return Series{}, fmt.Errorf("batch tick %d: sensor %q: %w", t+1, sn.ID, err)
			}
			if col, ok := columns[i]; ok {
				*col = append(*col, v)
			}
		}
	}
	return out, nil
}
