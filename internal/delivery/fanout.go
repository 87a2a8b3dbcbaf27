package delivery

import (
	"context"
	"errors"

	"sensor_simulator/internal/uplink"
)

// Outcome pairs a sink result with the error it returned.
type Outcome struct {
	Result
	Err error
}

// Fanout delivers each message to every configured sink in order.
type Fanout struct {
	sinks []Sink
}

// NewFanout skips nil sinks.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Len reports the number of sinks.
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Deliver hands msg to every sink once and returns one outcome per sink.
func (f *Fanout) Deliver(ctx context.Context, msg uplink.Message) []Outcome {
	if f == nil {
		return nil
	}
	out := make([]Outcome, 0, len(f.sinks))
	for _, s := range f.sinks {
		res, err := s.Deliver(ctx, msg)
		if res.Sink == "" {
			res.Sink = s.Name()
		}
		out = append(out, Outcome{Result: res, Err: err})
	}
	return out
}

// Close closes every sink and joins their errors.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
