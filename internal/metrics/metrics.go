// Package metrics exposes Prometheus collectors for the simulator loop and its sinks.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "sensor_sim_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	ticksTotal       prometheus.Counter
	deliveriesTotal  *prometheus.CounterVec
	deliveryLatency  *prometheus.HistogramVec
	sensorValue      *prometheus.GaugeVec
	historyErrors    *prometheus.CounterVec
	batchExportTotal *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		ticksTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "ticks_total",
				Help: "Total simulation ticks executed",
			},
		)
		deliveriesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "deliveries_total",
				Help: "Total uplink deliveries by sink and result",
			},
			[]string{"sink", "result"},
		)
		deliveryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "delivery_latency_seconds",
				Help:    "Uplink delivery latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sink"},
		)
		sensorValue = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "sensor_value",
				Help: "Latest simulated value per sensor",
			},
			[]string{"sensor_id", "kind"},
		)
		historyErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_errors_total",
				Help: "Total history write failures by table",
			},
			[]string{"table"},
		)
		batchExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "batch_export_total",
				Help: "Total batch report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			ticksTotal,
			deliveriesTotal,
			deliveryLatency,
			sensorValue,
			historyErrors,
			batchExportTotal,
		)
	})
}

// IncTick counts one simulation tick.
func IncTick() {
	if ticksTotal != nil {
		ticksTotal.Inc()
	}
}

// ObserveDelivery records one delivery attempt.
func ObserveDelivery(sink, result string, latency time.Duration) {
	if sink == "" {
		sink = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if deliveriesTotal != nil {
		deliveriesTotal.WithLabelValues(sink, result).Inc()
	}
	if deliveryLatency != nil {
		deliveryLatency.WithLabelValues(sink).Observe(latency.Seconds())
	}
}

// SetSensorValue publishes the latest value of a sensor.
func SetSensorValue(sensorID, kind string, value float64) {
	if sensorValue != nil {
		sensorValue.WithLabelValues(sensorID, kind).Set(value)
	}
}

// IncHistoryError counts a failed history write.
func IncHistoryError(table string) {
	if historyErrors != nil {
		historyErrors.WithLabelValues(table).Inc()
	}
}

// IncBatchExport counts a report export.
func IncBatchExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if batchExportTotal != nil {
		batchExportTotal.WithLabelValues(format, result).Inc()
	}
}
