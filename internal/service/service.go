package service

import (
	"context"
	"time"

	"sensor_simulator/internal/logger"
	"sensor_simulator/internal/models"
	"sensor_simulator/internal/repository"
	"sensor_simulator/internal/sensor"
	"sensor_simulator/internal/uplink"
)

// Simulator runs the fixed-interval tick loop. Stop via context cancellation in main().
type Simulator interface {
	Run(ctx context.Context, interval time.Duration) error
	Tick(ctx context.Context, now time.Time) (models.Snapshot, error)
}

// Monitoring exposes the latest snapshot and a live feed of new ones.
type Monitoring interface {
	Latest() (models.Snapshot, bool)
	Subscribe(buffer int) (<-chan models.Snapshot, func())
	Publish(snap models.Snapshot)
}

// History exposes the recorded readings and delivery outcomes.
type History interface {
	Readings(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error)
	Deliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error)
}

// Batch runs offline simulations on fresh sensors.
type Batch interface {
	Simulate(ticks int, seed uint64) (Series, error)
}

// Authorization verifies API bearer tokens.
type Authorization interface {
	Enabled() bool
	ParseToken(accessToken string) (string, error)
}

type Service struct {
	Simulator
	Monitoring
	History
	Batch
	Authorization
}

// Deps carries everything NewService needs besides the repositories.
type Deps struct {
	Specs     []sensor.Spec
	Initial   sensor.InitialValues
	Seed      uint64
	Builder   *uplink.Builder
	Sink      Deliverer
	APISecret string
	Log       *logger.Logger
}

// NewService builds the live sensors and wires the repository layer into the services.
func NewService(repos *repository.Repository, deps Deps) (*Service, error) {
	sensors, err := sensor.NewSensors(deps.Specs, deps.Initial)
	if err != nil {
		return nil, err
	}
	seed := sensor.ResolveSeed(deps.Seed)
	if deps.Log != nil {
		deps.Log.Infow("simulator_seeded", "seed", seed)
	}
	monitoring := NewMonitoringService()
	sim := NewSimulatorService(SimulatorConfig{
		Sensors:    sensors,
		Source:     sensor.NewSource(seed),
		Builder:    deps.Builder,
		Sink:       deps.Sink,
		Readings:   repos.Readings,
		Deliveries: repos.Deliveries,
		Monitor:    monitoring,
		Log:        deps.Log,
	})
	return &Service{
		Simulator:     sim,
		Monitoring:    monitoring,
		History:       NewHistoryService(repos.Readings, repos.Deliveries),
		Batch:         NewBatchService(deps.Specs, deps.Initial),
		Authorization: NewTokenService(deps.APISecret, "", time.Hour),
	}, nil
}
