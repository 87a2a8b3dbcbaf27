package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sensor_simulator/internal/uplink"

	"github.com/segmentio/kafka-go"
)

const kafkaBatchTimeout = 10 * time.Millisecond

// messageWriter is the subset of *kafka.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes messages to a Kafka topic keyed by device id.
type KafkaSink struct {
	w     messageWriter
	topic string
}

// NewKafkaSink returns a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("delivery: no kafka brokers")
	}
	if topic == "" {
		return nil, errors.New("delivery: empty kafka topic")
	}
	// one message per tick, one produce attempt, no batching delay
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            1,
		BatchSize:              1,
		BatchTimeout:           kafkaBatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaSink{w: w, topic: topic}, nil
}

func (s *KafkaSink) Name() string { return SinkKafka }

func (s *KafkaSink) Deliver(ctx context.Context, msg uplink.Message) (Result, error) {
	res := Result{Sink: SinkKafka}
	value, err := json.Marshal(msg)
	if err != nil {
		return res, fmt.Errorf("marshal uplink: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, msg.ReceivedAt)
	if err != nil {
		at = time.Now().UTC()
	}

	start := time.Now()
	err = s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.EndDeviceIDs.DeviceID),
		Value: value,
		Time:  at,
	})
	res.Latency = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("write %s: %w", s.topic, err)
	}
	return res, nil
}

func (s *KafkaSink) Close() error { return s.w.Close() }
