package service

import (
	"context"
	"sync"

	"sensor_simulator/internal/delivery"
	"sensor_simulator/internal/models"
	"sensor_simulator/internal/sensor"
	"sensor_simulator/internal/uplink"
)

// ---- Test doubles ----

// flatSource never starts a burst or peak and adds no noise.
type flatSource struct{}

func (flatSource) Float64() float64               { return 0.5 }
func (flatSource) Uniform(lo, hi float64) float64 { return (lo + hi) / 2 }
func (flatSource) IntBetween(lo, hi int) int      { return lo }

type readingRepoStub struct {
	mu       sync.Mutex
	batches  [][]models.Reading
	err      error
	listResp []models.Reading
	lastList models.ReadingFilter
}

func (r *readingRepoStub) AppendBatch(ctx context.Context, readings []models.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, readings)
	return r.err
}

func (r *readingRepoStub) List(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error) {
	r.lastList = f
	return r.listResp, r.err
}

type deliveryRepoStub struct {
	mu       sync.Mutex
	appends  []models.Delivery
	err      error
	lastList models.DeliveryFilter
}

func (r *deliveryRepoStub) Append(ctx context.Context, d models.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appends = append(r.appends, d)
	return r.err
}

func (r *deliveryRepoStub) List(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	r.lastList = f
	return nil, r.err
}

// sinkStub records messages and answers with fixed outcomes.
type sinkStub struct {
	mu       sync.Mutex
	msgs     []uplink.Message
	outcomes []delivery.Outcome
	seen     chan struct{}
}

func (s *sinkStub) Deliver(ctx context.Context, msg uplink.Message) []delivery.Outcome {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	if s.seen != nil {
		select {
		case s.seen <- struct{}{}:
		default:
		}
	}
	return s.outcomes
}

func (s *sinkStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func defaultSpecs() []sensor.Spec {
	return []sensor.Spec{
		{ID: "vibration", Name: "Vibration", Kind: sensor.KindVibration, Key: "36L8JKFN"},
		{ID: "alert", Name: "Alert", Kind: sensor.KindAlert, Key: "H3Z9WH2T"},
		{ID: "sound", Name: "Sound", Kind: sensor.KindSound, Key: "IBBTZ1QM"},
	}
}
