package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sensor_simulator/internal/uplink"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultMQTTTimeout  = 5 * time.Second
	mqttDisconnectQuiet = 250 // ms
)

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker   string // tcp://host:1883
	ClientID string
	Username string
	Password string
	Topic    string // defaults to the network-server uplink topic of the device
	QoS      byte
	Timeout  time.Duration
}

// UplinkTopic returns the uplink topic a network server uses for a device.
func UplinkTopic(applicationID, deviceID string) string {
	return fmt.Sprintf("v3/%s@ttn/devices/%s/up", applicationID, deviceID)
}

// MQTTSink publishes messages to an MQTT broker.
type MQTTSink struct {
	client  mqtt.Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTSink connects to the broker and returns a ready sink.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.Broker == "" {
		return nil, errors.New("delivery: empty mqtt broker")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMQTTTimeout
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return newMQTTSinkWithClient(client, cfg), nil
}

func newMQTTSinkWithClient(client mqtt.Client, cfg MQTTConfig) *MQTTSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMQTTTimeout
	}
	return &MQTTSink{client: client, topic: cfg.Topic, qos: cfg.QoS, timeout: cfg.Timeout}
}

func (s *MQTTSink) Name() string { return SinkMQTT }

// Deliver publishes msg and waits for the broker acknowledgement or ctx.
func (s *MQTTSink) Deliver(ctx context.Context, msg uplink.Message) (Result, error) {
	res := Result{Sink: SinkMQTT}
	payload, err := json.Marshal(msg)
	if err != nil {
		return res, fmt.Errorf("marshal uplink: %w", err)
	}
	topic := s.topic
	if topic == "" {
		topic = UplinkTopic(msg.EndDeviceIDs.ApplicationIDs.ApplicationID, msg.EndDeviceIDs.DeviceID)
	}

	start := time.Now()
	token := s.client.Publish(topic, s.qos, false, payload)
	select {
	case <-ctx.Done():
		res.Latency = time.Since(start)
		return res, ctx.Err()
	case <-token.Done():
	case <-time.After(s.timeout):
		res.Latency = time.Since(start)
		return res, fmt.Errorf("publish %s: %w", topic, ErrTimeout)
	}
	res.Latency = time.Since(start)
	if err := token.Error(); err != nil {
		return res, fmt.Errorf("publish %s: %w", topic, err)
	}
	return res, nil
}

func (s *MQTTSink) Close() error {
	if s.client.IsConnected() {
		s.client.Disconnect(mqttDisconnectQuiet)
	}
	return nil
}
