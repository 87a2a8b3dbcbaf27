package models

import "time"

// Reading is one sensor value produced on a tick.
type Reading struct {
	Tick     int64     `json:"tick"`
	SensorID string    `json:"sensor_id"`
	Name     string    `json:"name,omitempty"`
	Kind     string    `json:"kind"`  // vibration | alert | sound
	Key      string    `json:"key"`   // decoded payload key
	Value    float64   `json:"value"` // 0/1, 0, or dB
	At       time.Time `json:"at"`
}

// Snapshot is the latest reading of every sensor after a tick.
type Snapshot struct {
	Tick     int64     `json:"tick"`
	At       time.Time `json:"at"`
	Readings []Reading `json:"readings"`
}

// Value returns the reading for the given kind, or false when absent.
func (s Snapshot) Value(kind string) (float64, bool) {
	for _, r := range s.Readings {
		if r.Kind == kind {
			return r.Value, true
		}
	}
	return 0, false
}
