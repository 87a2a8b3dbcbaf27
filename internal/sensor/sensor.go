package sensor

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects the update rule applied to a sensor.
type Kind string

const (
	KindVibration Kind = "vibration"
	KindAlert     Kind = "alert"
	KindSound     Kind = "sound"
)

// ErrUnknownSensorKind is returned when a kind tag matches none of the known variants.
var ErrUnknownSensorKind = errors.New("unknown sensor kind")

// Kinds lists the supported kinds in payload order.
func Kinds() []Kind {
	return []Kind{KindVibration, KindAlert, KindSound}
}

// ParseKind normalizes s and maps it onto a known Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSensorKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the three supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindVibration, KindAlert, KindSound:
		return true
	}
	return false
}

// InitialValues maps each kind to the value a freshly built sensor starts with.
type InitialValues map[Kind]float64

// DefaultInitialValues returns a new copy of the stock initial-value table.
func DefaultInitialValues() InitialValues {
	return InitialValues{
		KindVibration: 0,
		KindAlert:     0,
		KindSound:     soundBaseline,
	}
}

// Spec describes a sensor to build.
type Spec struct {
	ID   string
	Name string
	Kind Kind
	// Key is the opaque channel key used in the uplink decoded payload.
	Key string
}

// Sensor holds the mutable state of one monitored channel.
// A Sensor must only be advanced by a single owner.
type Sensor struct {
	ID    string
	Name  string
	Key   string
	Kind  Kind
	Value float64

	// FlipProbability controls how quickly the current vibration burst
	// or sound decay ends. Always within [0.4, 0.6].
	FlipProbability float64
	// PeakRemaining counts the ticks left in an active sound peak.
	PeakRemaining int
}

// NewSensor builds a sensor from spec using the initial value for its kind.
func NewSensor(spec Spec, initial InitialValues) (*Sensor, error) {
	if !spec.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSensorKind, spec.Kind)
	}
	value, ok := initial[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("no initial value for kind %q", spec.Kind)
	}
	return &Sensor{
		ID:              spec.ID,
		Name:            spec.Name,
		Key:             spec.Key,
		Kind:            spec.Kind,
		Value:           value,
		FlipProbability: defaultFlipProbability,
	}, nil
}

// NewSensors builds one sensor per spec, failing on the first invalid spec.
func NewSensors(specs []Spec, initial InitialValues) ([]*Sensor, error) {
	out := make([]*Sensor, 0, len(specs))
	for _, sp := range specs {
		s, err := NewSensor(sp, initial)
		if err != nil {
			return nil, fmt.Errorf("build sensor %q: %w", sp.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
