// Package uplink builds network-server style uplink messages around sensor snapshots.
//
// The message mirrors the JSON a The Things Network v3 webhook integration posts for
// an uplink, with the simulated flag set and the latest readings in decoded_payload.
package uplink

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"sensor_simulator/internal/models"

	"github.com/google/uuid"
)

const (
	correlationUplinkPrefix = "as:up:"
	correlationRPCPrefix    = "rpc:/ttn.lorawan.v3.AppAs/SimulateUplink:"

	frameSize       = 4
	soundScale      = 10 // frame carries sound as deci-dB
	maxFrameSoundDB = math.MaxUint16 / soundScale
)

var errShortFrame = errors.New("frm_payload shorter than 4 bytes")

// Device identifies the simulated end device, gateway and radio settings.
type Device struct {
	DeviceID        string
	ApplicationID   string
	DevEUI          string
	JoinEUI         string
	GatewayID       string
	FPort           int
	RSSI            int
	SNR             float64
	Bandwidth       int
	SpreadingFactor int
	Frequency       string
}

// DefaultDevice returns the identity the stock configuration ships with.
func DefaultDevice() Device {
	return Device{
		DeviceID:        "test-simulate",
		ApplicationID:   "essaie-carte",
		DevEUI:          "A8610A3435446810",
		JoinEUI:         "0000000000000000",
		GatewayID:       "test",
		FPort:           1,
		RSSI:            42,
		SNR:             4.2,
		Bandwidth:       125000,
		SpreadingFactor: 7,
		Frequency:       "868000000",
	}
}

// Message is the JSON body delivered to sinks.
type Message struct {
	EndDeviceIDs   EndDeviceIDs  `json:"end_device_ids"`
	CorrelationIDs []string      `json:"correlation_ids"`
	ReceivedAt     string        `json:"received_at"`
	UplinkMessage  UplinkMessage `json:"uplink_message"`
	Simulated      bool          `json:"simulated"`
}

type EndDeviceIDs struct {
	DeviceID       string         `json:"device_id"`
	ApplicationIDs ApplicationIDs `json:"application_ids"`
	DevEUI         string         `json:"dev_eui"`
	JoinEUI        string         `json:"join_eui"`
}

type ApplicationIDs struct {
	ApplicationID string `json:"application_id"`
}

type UplinkMessage struct {
	FPort          int                `json:"f_port"`
	FCnt           uint32             `json:"f_cnt"`
	FrmPayload     string             `json:"frm_payload"`
	DecodedPayload map[string]float64 `json:"decoded_payload"`
	RxMetadata     []RxMetadata       `json:"rx_metadata"`
	Settings       Settings           `json:"settings"`
}

type RxMetadata struct {
	GatewayIDs  GatewayIDs `json:"gateway_ids"`
	RSSI        int        `json:"rssi"`
	ChannelRSSI int        `json:"channel_rssi"`
	SNR         float64    `json:"snr"`
}

type GatewayIDs struct {
	GatewayID string `json:"gateway_id"`
}

type Settings struct {
	DataRate  DataRate `json:"data_rate"`
	Frequency string   `json:"frequency"`
}

type DataRate struct {
	Lora Lora `json:"lora"`
}

type Lora struct {
	Bandwidth       int `json:"bandwidth"`
	SpreadingFactor int `json:"spreading_factor"`
}

// Frame is the decoded form of frm_payload.
type Frame struct {
	Vibration float64
	Alert     float64
	Sound     float64
}

// Builder turns snapshots into uplink messages. Safe for concurrent use.
type Builder struct {
	device Device
	fcnt   atomic.Uint32
	newID  func() string
}

// NewBuilder returns a builder for device.
func NewBuilder(device Device) *Builder {
	return &Builder{device: device, newID: uuid.NewString}
}

// Build wraps snap into a message received at now.
// decoded_payload maps every reading's key to its value.
func (b *Builder) Build(snap models.Snapshot, now time.Time) Message {
	decoded := make(map[string]float64, len(snap.Readings))
	for _, r := range snap.Readings {
		decoded[r.Key] = r.Value
	}

	d := b.device
	return Message{
		EndDeviceIDs: EndDeviceIDs{
			DeviceID:       d.DeviceID,
			ApplicationIDs: ApplicationIDs{ApplicationID: d.ApplicationID},
			DevEUI:         d.DevEUI,
			JoinEUI:        d.JoinEUI,
		},
		CorrelationIDs: []string{
			correlationUplinkPrefix + b.newID(),
			correlationRPCPrefix + b.newID(),
		},
		ReceivedAt: now.UTC().Format(time.RFC3339Nano),
		UplinkMessage: UplinkMessage{
			FPort:          d.FPort,
			FCnt:           b.fcnt.Add(1),
			FrmPayload:     EncodeFrame(frameFromSnapshot(snap)),
			DecodedPayload: decoded,
			RxMetadata: []RxMetadata{{
				GatewayIDs:  GatewayIDs{GatewayID: d.GatewayID},
				RSSI:        d.RSSI,
				ChannelRSSI: d.RSSI,
				SNR:         d.SNR,
			}},
			Settings: Settings{
				DataRate: DataRate{Lora: Lora{
					Bandwidth:       d.Bandwidth,
					SpreadingFactor: d.SpreadingFactor,
				}},
				Frequency: d.Frequency,
			},
		},
		Simulated: true,
	}
}

func frameFromSnapshot(snap models.Snapshot) Frame {
	var f Frame
	f.Vibration, _ = snap.Value("vibration")
	f.Alert, _ = snap.Value("alert")
	f.Sound, _ = snap.Value("sound")
	return f
}

// EncodeFrame packs f into base64 of [vibration, alert, sound*10 big-endian uint16].
func EncodeFrame(f Frame) string {
	buf := make([]byte, frameSize)
	buf[0] = byte(clampByte(f.Vibration))
	buf[1] = byte(clampByte(f.Alert))

	sound := math.Max(0, math.Min(f.Sound, maxFrameSoundDB))
	binary.BigEndian.PutUint16(buf[2:], uint16(math.Round(sound*soundScale)))
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(s string) (Frame, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Frame{}, fmt.Errorf("decode frm_payload: %w", err)
	}
	if len(buf) < frameSize {
		return Frame{}, errShortFrame
	}
	return Frame{
		Vibration: float64(buf[0]),
		Alert:     float64(buf[1]),
		Sound:     float64(binary.BigEndian.Uint16(buf[2:])) / soundScale,
	}, nil
}

func clampByte(v float64) float64 {
	return math.Max(0, math.Min(math.Round(v), math.MaxUint8))
}
