package models

import "time"

// ReadingFilter selects readings in [From, To]. Zero values disable a condition.
type ReadingFilter struct {
	From     time.Time
	To       time.Time
	SensorID string
	Limit    int
}

// DeliveryFilter selects deliveries in [From, To]. A nil Success matches both outcomes.
type DeliveryFilter struct {
	From    time.Time
	To      time.Time
	Sink    string
	Success *bool
	Limit   int
}
