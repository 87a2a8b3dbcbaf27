package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "sensor_simulator/docs"
	"sensor_simulator/internal/config"
	"sensor_simulator/internal/delivery"
	"sensor_simulator/internal/handlers"
	"sensor_simulator/internal/logger"
	"sensor_simulator/internal/metrics"
	"sensor_simulator/internal/report"
	"sensor_simulator/internal/repository"
	"sensor_simulator/internal/repository/db"
	"sensor_simulator/internal/sensor"
	"sensor_simulator/internal/server"
	"sensor_simulator/internal/service"
	"sensor_simulator/internal/uplink"
)

const shutdownTimeout = 10 * time.Second

// @title                       Sensor Simulator API
// @version                     1.0
// @description                 Synthetic vibration, alert and sound sensors delivered as simulated uplinks.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configDir := flag.String("config", "configs", "directory holding config.yml")
	exportPath := flag.String("export", "", "run an offline batch and write it to this .xlsx or .pdf file, then exit")
	ticks := flag.Int("ticks", 0, "batch length for -export (default simulation.batch_ticks)")
	seed := flag.Uint64("seed", 0, "seed for -export (0 picks one)")
	flag.Parse()

	// init logger
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.LogLevel)

	if *exportPath != "" {
		if err := exportBatch(cfg, *exportPath, *ticks, *seed, log); err != nil {
			log.Fatalw("batch export failed", "path", *exportPath, "err", err)
		}
		return
	}

	metrics.Init()

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}

	sinks, err := buildSinks(cfg)
	if err != nil {
		closeDB(sqlDB, log)
		log.Fatalw("failed to init delivery sinks", "err", err)
	}
	fanout := delivery.NewFanout(sinks...)

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services, err := service.NewService(repos, service.Deps{
		Specs:     cfg.SensorSpecs(),
		Initial:   sensor.DefaultInitialValues(),
		Seed:      cfg.Sim.Seed,
		Builder:   uplink.NewBuilder(cfg.UplinkDevice()),
		Sink:      fanout,
		APISecret: cfg.API.JWTSecret,
		Log:       log,
	})
	if err != nil {
		_ = fanout.Close()
		closeDB(sqlDB, log)
		log.Fatalw("failed to build services", "err", err)
	}
	apiHandler := handlers.NewHandler(services, log).WithBatchTicks(cfg.Sim.BatchTicks)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infow("simulator_starting",
		"interval", cfg.Sim.Interval,
		"sensors", len(cfg.Sensors),
		"sinks", cfg.Delivery.Sinks,
		"api_auth", services.Authorization.Enabled(),
	)
	// background failures come back here so cleanup still runs
	fatal := make(chan error, 2)
	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		if err := services.Simulator.Run(ctx, cfg.Sim.Interval); err != nil {
			fatal <- fmt.Errorf("simulator stopped: %w", err)
		}
	}()

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, fatal, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	cause := waitForStop(quit, fatal, log)

	// graceful shutdown
	shutdown(cancel, simDone, srv, fanout, sqlDB, log)
	if cause != nil {
		os.Exit(1)
	}
}

// buildSinks opens every enabled sink; on failure the ones already opened are closed.
func buildSinks(cfg config.Config) ([]delivery.Sink, error) {
	sinks := make([]delivery.Sink, 0, len(cfg.Delivery.Sinks))
	for _, name := range cfg.Delivery.Sinks {
		sink, err := openSink(cfg, name)
		if err != nil {
			_ = delivery.NewFanout(sinks...).Close()
			return nil, fmt.Errorf("%s sink: %w", name, err)
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}

func openSink(cfg config.Config, name string) (delivery.Sink, error) {
	switch name {
	case delivery.SinkHTTP:
		h := cfg.Delivery.HTTP
		tokens := service.NewWebhookTokens(h.Token, h.JWTSecret, cfg.Device.DeviceID, h.TokenTTL)
		return delivery.NewHTTPSink(h.URL, tokens, h.Timeout)
	case delivery.SinkMQTT:
		return delivery.NewMQTTSink(cfg.MQTT())
	case delivery.SinkKafka:
		return delivery.NewKafkaSink(cfg.Delivery.Kafka.Brokers, cfg.Delivery.Kafka.Topic)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSink, name)
	}
}

// exportBatch runs fresh sensors offline and writes the chart report to path.
func exportBatch(cfg config.Config, path string, ticks int, seed uint64, log *logger.Logger) error {
	format, err := report.FormatFromPath(path)
	if err != nil {
		return err
	}
	if ticks <= 0 {
		ticks = cfg.Sim.BatchTicks
	}
	series, err := service.NewBatchService(cfg.SensorSpecs(), sensor.DefaultInitialValues()).Simulate(ticks, seed)
	if err != nil {
		return err
	}
	body, _, err := report.Render(format, series)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Infow("batch_exported", "path", path, "format", format, "ticks", series.Ticks, "seed", series.Seed)
	return nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, fatal chan<- error, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			fatal <- fmt.Errorf("http server: %w", err)
		}
	}()
}

// waitForStop blocks until a termination signal or a background failure.
// It returns the failure, or nil for a signal.
func waitForStop(quit <-chan os.Signal, fatal <-chan error, log *logger.Logger) error {
	select {
	case sig := <-quit:
		log.Infow("shutting down...", "signal", sig.String())
		return nil
	case err := <-fatal:
		log.Errorw("fatal error, shutting down", "err", err)
		return err
	}
}

// shutdown stops the tick loop, then the server, the sinks and the database, in that order.
func shutdown(cancel context.CancelFunc, simDone <-chan struct{}, srv *server.Server, fanout *delivery.Fanout, sqlDB *sql.DB, log *logger.Logger) {
	// stop the tick loop before the sinks go away
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	select {
	case <-simDone:
	case <-ctx.Done():
		log.Errorw("simulator did not stop in time")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	if err := fanout.Close(); err != nil {
		log.Errorw("failed to close sinks", "err", err)
	}
	closeDB(sqlDB, log)
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}
