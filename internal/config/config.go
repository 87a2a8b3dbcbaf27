// Package config loads the simulator settings from configs/config.yml and SIM_* env vars.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sensor_simulator/internal/delivery"
	"sensor_simulator/internal/sensor"
	"sensor_simulator/internal/uplink"

	"github.com/spf13/viper"
)

const envPrefix = "SIM"

var (
	ErrNoSensors   = errors.New("config: no sensors configured")
	ErrNoSinks     = errors.New("config: no delivery sinks enabled")
	ErrUnknownSink = errors.New("config: unknown delivery sink")

	ErrDuplicateSensorID  = errors.New("config: duplicate sensor id")
	ErrDuplicateSensorKey = errors.New("config: duplicate sensor key")
)

type Config struct {
	Port     string         `mapstructure:"port"`
	LogLevel string         `mapstructure:"log_level"`
	DB       DBConfig       `mapstructure:"db"`
	Sim      SimConfig      `mapstructure:"simulation"`
	Sensors  []SensorConfig `mapstructure:"sensors"`
	Device   DeviceConfig   `mapstructure:"device"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	API      APIConfig      `mapstructure:"api"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type SimConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	Seed       uint64        `mapstructure:"seed"`
	BatchTicks int           `mapstructure:"batch_ticks"`
}

type SensorConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
	Kind string `mapstructure:"kind"`
	Key  string `mapstructure:"key"`
}

type DeviceConfig struct {
	DeviceID        string  `mapstructure:"device_id"`
	ApplicationID   string  `mapstructure:"application_id"`
	DevEUI          string  `mapstructure:"dev_eui"`
	JoinEUI         string  `mapstructure:"join_eui"`
	GatewayID       string  `mapstructure:"gateway_id"`
	FPort           int     `mapstructure:"f_port"`
	RSSI            int     `mapstructure:"rssi"`
	SNR             float64 `mapstructure:"snr"`
	Bandwidth       int     `mapstructure:"bandwidth"`
	SpreadingFactor int     `mapstructure:"spreading_factor"`
	Frequency       string  `mapstructure:"frequency"`
}

type DeliveryConfig struct {
	Sinks []string    `mapstructure:"sinks"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	MQTT  MQTTConfig  `mapstructure:"mqtt"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type HTTPConfig struct {
	URL       string        `mapstructure:"url"`
	Token     string        `mapstructure:"token"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type MQTTConfig struct {
	Broker   string        `mapstructure:"broker"`
	ClientID string        `mapstructure:"client_id"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Topic    string        `mapstructure:"topic"`
	QoS      byte          `mapstructure:"qos"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type APIConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads config.yml from dir (or ./configs when dir is empty), applies SIM_* env
// overrides and validates the result. A missing file is fine; defaults apply.
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if dir == "" {
		dir = "configs"
	}
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := uplink.DefaultDevice()

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "app.db")

	v.SetDefault("simulation.interval", time.Minute)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.batch_ticks", 1440)

	v.SetDefault("sensors", []map[string]any{
		{"id": "vibration", "name": "Vibration", "kind": "vibration", "key": "36L8JKFN"},
		{"id": "alert", "name": "Alert", "kind": "alert", "key": "H3Z9WH2T"},
		{"id": "sound", "name": "Sound", "kind": "sound", "key": "IBBTZ1QM"},
	})

	v.SetDefault("device.device_id", d.DeviceID)
	v.SetDefault("device.application_id", d.ApplicationID)
	v.SetDefault("device.dev_eui", d.DevEUI)
	v.SetDefault("device.join_eui", d.JoinEUI)
	v.SetDefault("device.gateway_id", d.GatewayID)
	v.SetDefault("device.f_port", d.FPort)
	v.SetDefault("device.rssi", d.RSSI)
	v.SetDefault("device.snr", d.SNR)
	v.SetDefault("device.bandwidth", d.Bandwidth)
	v.SetDefault("device.spreading_factor", d.SpreadingFactor)
	v.SetDefault("device.frequency", d.Frequency)

	v.SetDefault("delivery.sinks", []string{delivery.SinkHTTP})
	v.SetDefault("delivery.http.url", "https://dash.web-gine.fr/api/ttn-webhook")
	v.SetDefault("delivery.http.token", "")
	v.SetDefault("delivery.http.jwt_secret", "")
	v.SetDefault("delivery.http.token_ttl", time.Hour)
	v.SetDefault("delivery.http.timeout", 10*time.Second)
	v.SetDefault("delivery.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("delivery.mqtt.client_id", "sensor-simulator")
	v.SetDefault("delivery.mqtt.qos", 1)
	v.SetDefault("delivery.mqtt.timeout", 5*time.Second)
	v.SetDefault("delivery.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("delivery.kafka.topic", "sensor-uplinks")

	v.SetDefault("api.jwt_secret", "")
}

// Validate checks sensors and sinks. Sensor kinds are normalized in place and an
// empty id or key falls back to the kind or the id.
func (c *Config) Validate() error {
	if len(c.Sensors) == 0 {
		return ErrNoSensors
	}
	seen := make(map[string]struct{}, len(c.Sensors))
	keys := make(map[string]struct{}, len(c.Sensors))
	for i := range c.Sensors {
		s := &c.Sensors[i]
		kind, err := sensor.ParseKind(s.Kind)
		if err != nil {
			return fmt.Errorf("sensor %q: %w", s.ID, err)
		}
		s.Kind = string(kind)
		if s.ID == "" {
			s.ID = s.Kind
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateSensorID, s.ID)
		}
		seen[s.ID] = struct{}{}

		// the key names the value in decoded_payload, so it must be unique
		s.Key = strings.TrimSpace(s.Key)
		if s.Key == "" {
			s.Key = s.ID
		}
		if _, dup := keys[s.Key]; dup {
			return fmt.Errorf("%w: %q (sensor %q)", ErrDuplicateSensorKey, s.Key, s.ID)
		}
		keys[s.Key] = struct{}{}
	}

	if len(c.Delivery.Sinks) == 0 {
		return ErrNoSinks
	}
	for i, name := range c.Delivery.Sinks {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case delivery.SinkHTTP, delivery.SinkMQTT, delivery.SinkKafka:
			c.Delivery.Sinks[i] = name
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSink, name)
		}
	}
	if c.Sim.Interval <= 0 {
		return fmt.Errorf("config: simulation.interval must be positive, got %s", c.Sim.Interval)
	}
	return nil
}

// SensorSpecs converts the validated sensor list.
func (c Config) SensorSpecs() []sensor.Spec {
	out := make([]sensor.Spec, 0, len(c.Sensors))
	for _, s := range c.Sensors {
		out = append(out, sensor.Spec{ID: s.ID, Name: s.Name, Kind: sensor.Kind(s.Kind), Key: s.Key})
	}
	return out
}

// UplinkDevice converts the device block.
func (c Config) UplinkDevice() uplink.Device {
	d := c.Device
	return uplink.Device{
		DeviceID:        d.DeviceID,
		ApplicationID:   d.ApplicationID,
		DevEUI:          d.DevEUI,
		JoinEUI:         d.JoinEUI,
		GatewayID:       d.GatewayID,
		FPort:           d.FPort,
		RSSI:            d.RSSI,
		SNR:             d.SNR,
		Bandwidth:       d.Bandwidth,
		SpreadingFactor: d.SpreadingFactor,
		Frequency:       d.Frequency,
	}
}

// MQTT converts the mqtt block for the delivery package.
func (c Config) MQTT() delivery.MQTTConfig {
	m := c.Delivery.MQTT
	return delivery.MQTTConfig{
		Broker:   m.Broker,
		ClientID: m.ClientID,
		Username: m.Username,
		Password: m.Password,
		Topic:    m.Topic,
		QoS:      m.QoS,
		Timeout:  m.Timeout,
	}
}
