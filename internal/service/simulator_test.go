package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sensor_simulator/internal/delivery"
	"sensor_simulator/internal/sensor"
	"sensor_simulator/internal/uplink"
)

type simFixture struct {
	svc        *SimulatorService
	sink       *sinkStub
	readings   *readingRepoStub
	deliveries *deliveryRepoStub
	monitor    *MonitoringService
}

func newSimFixture(t *testing.T, outcomes ...delivery.Outcome) simFixture {
	t.Helper()
	sensors, err := sensor.NewSensors(defaultSpecs(), sensor.DefaultInitialValues())
	if err != nil {
		t.Fatalf("NewSensors: %v", err)
	}
	f := simFixture{
		sink:       &sinkStub{outcomes: outcomes, seen: make(chan struct{}, 16)},
		readings:   &readingRepoStub{},
		deliveries: &deliveryRepoStub{},
		monitor:    NewMonitoringService(),
	}
	f.svc = NewSimulatorService(SimulatorConfig{
		Sensors:    sensors,
		Source:     flatSource{},
		Builder:    uplink.NewBuilder(uplink.DefaultDevice()),
		Sink:       f.sink,
		Readings:   f.readings,
		Deliveries: f.deliveries,
		Monitor:    f.monitor,
	})
	return f
}

func TestTick_ValuesReachSinkMonitoringAndHistory(t *testing.T) {
	f := newSimFixture(t, delivery.Outcome{Result: delivery.Result{Sink: "http", StatusCode: 200, Body: []byte("ok"), Latency: 12 * time.Millisecond}})
	now := time.Date(2025, 3, 28, 15, 0, 0, 0, time.FixedZone("CET", 3600))

	snap, err := f.svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if snap.Tick != 1 || !snap.At.Equal(now) || snap.At.Location() != time.UTC {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if len(snap.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(snap.Readings))
	}
	if v, _ := snap.Value("sound"); v != 85 {
		t.Fatalf("flat source should keep sound at baseline, got %v", v)
	}

	latest, ok := f.monitor.Latest()
	if !ok || latest.Tick != 1 {
		t.Fatalf("monitoring not updated: %+v (ok=%v)", latest, ok)
	}
	if len(f.readings.batches) != 1 || len(f.readings.batches[0]) != 3 {
		t.Fatalf("readings not recorded: %+v", f.readings.batches)
	}

	if f.sink.count() != 1 {
		t.Fatalf("expected one message, got %d", f.sink.count())
	}
	msg := f.sink.msgs[0]
	if msg.UplinkMessage.DecodedPayload["IBBTZ1QM"] != 85 || msg.UplinkMessage.DecodedPayload["36L8JKFN"] != 0 {
		t.Fatalf("decoded payload: %v", msg.UplinkMessage.DecodedPayload)
	}

	if len(f.deliveries.appends) != 1 {
		t.Fatalf("expected one delivery record, got %d", len(f.deliveries.appends))
	}
	d := f.deliveries.appends[0]
	if !d.Success || d.StatusCode != 200 || d.LatencyMS != 12 || d.Response != "ok" || d.Tick != 1 {
		t.Fatalf("unexpected delivery record: %+v", d)
	}

	if snap2, _ := f.svc.Tick(context.Background(), now.Add(time.Minute)); snap2.Tick != 2 {
		t.Fatalf("tick counter should advance, got %d", snap2.Tick)
	}
}

func TestTick_DeliveryAndHistoryFailuresDoNotFail(t *testing.T) {
	f := newSimFixture(t, delivery.Outcome{
		Result: delivery.Result{Sink: "http", StatusCode: 503, Body: []byte("unavailable")},
		Err:    fmt.Errorf("%w: 503", delivery.ErrUnexpectedStatus),
	})
	f.readings.err = errors.New("disk full")
	f.deliveries.err = errors.New("disk full")

	if _, err := f.svc.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick should not fail on collaborator errors: %v", err)
	}
	if f.sink.count() != 1 {
		t.Fatalf("message must still be delivered once, got %d", f.sink.count())
	}
	d := f.deliveries.appends[0]
	if d.Success || d.StatusCode != 503 || d.Error == "" {
		t.Fatalf("failure not recorded: %+v", d)
	}
}

func TestRun_FirstTickIsImmediateAndCancelReturnsNil(t *testing.T) {
	f := newSimFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.svc.Run(ctx, time.Hour); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.sink.count() != 1 {
		t.Fatalf("expected exactly one tick, got %d", f.sink.count())
	}
}

func TestRun_TicksAtInterval(t *testing.T) {
	f := newSimFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx, 5*time.Millisecond) }()

	for i := 0; i < 3; i++ {
		select {
		case <-f.sink.seen:
		case <-ctx.Done():
			t.Fatalf("only %d ticks before timeout", i)
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.sink.count() < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", f.sink.count())
	}
}

func TestRun_UnknownKindIsFatal(t *testing.T) {
	sink := &sinkStub{}
	monitor := NewMonitoringService()
	svc := NewSimulatorService(SimulatorConfig{
		Sensors: []*sensor.Sensor{{ID: "h", Kind: sensor.Kind("humidity")}},
		Source:  flatSource{},
		Builder: uplink.NewBuilder(uplink.DefaultDevice()),
		Sink:    sink,
		Monitor: monitor,
	})

	err := svc.Run(context.Background(), time.Hour)
	if !errors.Is(err, sensor.ErrUnknownSensorKind) {
		t.Fatalf("expected ErrUnknownSensorKind, got %v", err)
	}
	if sink.count() != 0 {
		t.Fatalf("nothing should be delivered, got %d", sink.count())
	}
	if _, ok := monitor.Latest(); ok {
		t.Fatalf("nothing should be published")
	}
}

func TestRun_RejectsNonPositiveInterval(t *testing.T) {
	f := newSimFixture(t)
	if err := f.svc.Run(context.Background(), 0); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}
