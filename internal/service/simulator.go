package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sensor_simulator/internal/delivery"
	"sensor_simulator/internal/logger"
	"sensor_simulator/internal/metrics"
	"sensor_simulator/internal/models"
	"sensor_simulator/internal/repository"
	"sensor_simulator/internal/sensor"
	"sensor_simulator/internal/uplink"
)

// ----------- Loop constants -----------
const (
	maxLoggedBody = 512             // bytes of a failed response kept in logs
	historyBudget = 5 * time.Second // per-tick time allowed for history writes
)

// Deliverer hands one message to every configured sink.
type Deliverer interface {
	Deliver(ctx context.Context, msg uplink.Message) []delivery.Outcome
}

type SimulatorConfig struct {
	Sensors    []*sensor.Sensor
	Source     sensor.Source
	Builder    *uplink.Builder
	Sink       Deliverer
	Readings   repository.ReadingRepo
	Deliveries repository.DeliveryRepo
	Monitor    Monitoring
	Log        *logger.Logger
}

// SimulatorService owns the live sensors. Only its loop goroutine mutates them.
type SimulatorService struct {
	sensors    []*sensor.Sensor
	src        sensor.Source
	builder    *uplink.Builder
	sink       Deliverer
	readings   repository.ReadingRepo
	deliveries repository.DeliveryRepo
	monitor    Monitoring
	log        *logger.Logger
	tick       int64
}

func NewSimulatorService(cfg SimulatorConfig) *SimulatorService {
	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &SimulatorService{
		sensors:    cfg.Sensors,
		src:        cfg.Source,
		builder:    cfg.Builder,
		sink:       cfg.Sink,
		readings:   cfg.Readings,
		deliveries: cfg.Deliveries,
		monitor:    cfg.Monitor,
		log:        log,
	}
}

// Run executes one tick immediately and then one per interval until ctx is canceled.
// It returns nil on cancellation and the wrapped sensor.ErrUnknownSensorKind otherwise.
func (s *SimulatorService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("simulator: interval must be positive, got %s", interval)
	}
	if _, err := s.Tick(ctx, time.Now()); err != nil {
		return err
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if _, err := s.Tick(ctx, now); err != nil {
				return err
			}
		}
	}
}

// Tick advances every sensor once, publishes the snapshot and delivers it.
// Only a sensor model failure is returned; sink and history failures are logged.
func (s *SimulatorService) Tick(ctx context.Context, now time.Time) (models.Snapshot, error) {
	now = now.UTC()
	tick := s.tick + 1

	readings := make([]models.Reading, 0, len(s.sensors))
	for _, sn := range s.sensors {
		v, err := sensor.Step(sn, s.src)
		if err != nil {
			s.log.Errorw("sensor_step_failed", "tick", tick, "sensor_id", sn.ID, "err", err)
			return models.Snapshot{}, fmt.Errorf("tick %d: sensor %q: %w", tick, sn.ID, err)
		}
		readings = append(readings, models.Reading{
			Tick:     tick,
			SensorID: sn.ID,
			Name:     sn.Name,
			Kind:     string(sn.Kind),
			Key:      sn.Key,
			Value:    v,
			At:       now,
		})
		metrics.SetSensorValue(sn.ID, string(sn.Kind), v)
	}
	s.tick = tick
	metrics.IncTick()

	snap := models.Snapshot{Tick: tick, At: now, Readings: readings}
	if s.monitor != nil {
		s.monitor.Publish(snap)
	}
	s.recordReadings(ctx, snap)

	if s.builder != nil && s.sink != nil {
		msg := s.builder.Build(snap, now)
		for _, out := range s.sink.Deliver(ctx, msg) {
			s.report(ctx, snap, out)
		}
	}
	return snap, nil
}

func (s *SimulatorService) report(ctx context.Context, snap models.Snapshot, out delivery.Outcome) {
	d := models.Delivery{
		Tick:       snap.Tick,
		At:         snap.At,
		Sink:       out.Sink,
		StatusCode: out.StatusCode,
		Success:    out.Err == nil,
		LatencyMS:  out.Latency.Milliseconds(),
		Response:   truncate(string(out.Body), maxLoggedBody),
	}

	if out.Err != nil {
		d.Error = out.Err.Error()
		metrics.ObserveDelivery(out.Sink, metrics.ResultError, out.Latency)
		s.log.Errorw("delivery_failed",
			"tick", snap.Tick,
			"sink", out.Sink,
			"status", out.StatusCode,
			"unexpected_status", errors.Is(out.Err, delivery.ErrUnexpectedStatus),
			"response", d.Response,
			"err", out.Err,
		)
	} else {
		metrics.ObserveDelivery(out.Sink, metrics.ResultSuccess, out.Latency)
		s.log.Infow("tick_delivered",
			"tick", snap.Tick,
			"sink", out.Sink,
			"status", out.StatusCode,
			"latency_ms", d.LatencyMS,
			"response", d.Response,
		)
	}

	if s.deliveries == nil {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyBudget)
	defer cancel()
	if err := s.deliveries.Append(hctx, d); err != nil {
		metrics.IncHistoryError("deliveries")
		s.log.Errorw("history_write_failed", "table", "deliveries", "tick", snap.Tick, "err", err)
	}
}

func (s *SimulatorService) recordReadings(ctx context.Context, snap models.Snapshot) {
	if s.readings == nil {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyBudget)
	defer cancel()
	if err := s.readings.AppendBatch(hctx, snap.Readings); err != nil {
		metrics.IncHistoryError("readings")
		s.log.Errorw("history_write_failed", "table", "readings", "tick", snap.Tick, "err", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
