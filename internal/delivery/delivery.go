// Package delivery hands uplink messages to remote endpoints.
//
// Sinks make exactly one attempt per message. Failures are returned to the caller,
// which decides what to log; nothing is buffered or retried here.
package delivery

import (
	"context"
	"errors"
	"time"

	"sensor_simulator/internal/uplink"
)

// Sink names.
const (
	SinkHTTP  = "http"
	SinkMQTT  = "mqtt"
	SinkKafka = "kafka"
)

var (
	// ErrUnexpectedStatus is returned when a webhook answers outside 2xx.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrTimeout is returned when a broker does not acknowledge in time.
	ErrTimeout = errors.New("delivery timed out")
)

// Result describes one delivery attempt.
type Result struct {
	Sink       string
	StatusCode int    // HTTP only
	Body       []byte // HTTP only, truncated
	Latency    time.Duration
}

// Sink delivers a message to one destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg uplink.Message) (Result, error)
	Close() error
}

// TokenSource supplies the bearer token sent with each webhook request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }
