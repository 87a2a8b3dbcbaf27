package models

import "time"

// Delivery is the recorded outcome of handing one uplink to one sink.
type Delivery struct {
	ID         string    `json:"id"`
	Tick       int64     `json:"tick"`
	At         time.Time `json:"at"`
	Sink       string    `json:"sink"` // http | mqtt | kafka
	StatusCode int       `json:"status_code,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	LatencyMS  int64     `json:"latency_ms"`
	Response   string    `json:"response,omitempty"` // raw response body, truncated
}
