package uplink

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sensor_simulator/internal/models"
)

func testSnapshot() models.Snapshot {
	at := time.Date(2025, 3, 28, 14, 46, 50, 649008325, time.UTC)
	return models.Snapshot{
		Tick: 3,
		At:   at,
		Readings: []models.Reading{
			{Tick: 3, SensorID: "vibration", Kind: "vibration", Key: "36L8JKFN", Value: 1, At: at},
			{Tick: 3, SensorID: "alert", Kind: "alert", Key: "H3Z9WH2T", Value: 0, At: at},
			{Tick: 3, SensorID: "sound", Kind: "sound", Key: "IBBTZ1QM", Value: 92.37, At: at},
		},
	}
}

func TestBuilder_BuildShape(t *testing.T) {
	b := NewBuilder(DefaultDevice())
	b.newID = func() string { return "fixed" }
	snap := testSnapshot()

	msg := b.Build(snap, snap.At)

	if msg.EndDeviceIDs.DeviceID != "test-simulate" || msg.EndDeviceIDs.ApplicationIDs.ApplicationID != "essaie-carte" {
		t.Fatalf("unexpected device ids: %+v", msg.EndDeviceIDs)
	}
	if !msg.Simulated {
		t.Fatalf("message must be flagged simulated")
	}
	if msg.ReceivedAt != "2025-03-28T14:46:50.649008325Z" {
		t.Fatalf("received_at: %q", msg.ReceivedAt)
	}
	wantIDs := []string{"as:up:fixed", "rpc:/ttn.lorawan.v3.AppAs/SimulateUplink:fixed"}
	if len(msg.CorrelationIDs) != 2 || msg.CorrelationIDs[0] != wantIDs[0] || msg.CorrelationIDs[1] != wantIDs[1] {
		t.Fatalf("correlation ids: %v", msg.CorrelationIDs)
	}

	up := msg.UplinkMessage
	if up.FPort != 1 || up.FCnt != 1 {
		t.Fatalf("f_port/f_cnt: %d/%d", up.FPort, up.FCnt)
	}
	want := map[string]float64{"36L8JKFN": 1, "H3Z9WH2T": 0, "IBBTZ1QM": 92.37}
	for k, v := range want {
		if got, ok := up.DecodedPayload[k]; !ok || got != v {
			t.Fatalf("decoded_payload[%s]=%v (present=%v), want %v", k, got, ok, v)
		}
	}
	if len(up.RxMetadata) != 1 || up.RxMetadata[0].RSSI != 42 || up.RxMetadata[0].SNR != 4.2 {
		t.Fatalf("rx metadata: %+v", up.RxMetadata)
	}
	if up.Settings.DataRate.Lora.SpreadingFactor != 7 || up.Settings.Frequency != "868000000" {
		t.Fatalf("settings: %+v", up.Settings)
	}

	if next := b.Build(snap, snap.At); next.UplinkMessage.FCnt != 2 {
		t.Fatalf("f_cnt should increment, got %d", next.UplinkMessage.FCnt)
	}
}

func TestBuilder_JSONKeys(t *testing.T) {
	msg := NewBuilder(DefaultDevice()).Build(testSnapshot(), time.Now())
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, key := range []string{
		`"end_device_ids"`, `"dev_eui":"A8610A3435446810"`, `"correlation_ids"`,
		`"uplink_message"`, `"frm_payload"`, `"decoded_payload"`, `"rx_metadata"`,
		`"channel_rssi":42`, `"spreading_factor":7`, `"simulated":true`,
	} {
		if !strings.Contains(body, key) {
			t.Fatalf("missing %s in %s", key, body)
		}
	}
}

func TestFrame_RoundTripAndKnownSample(t *testing.T) {
	f, err := DecodeFrame("AAAF3w==")
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if f.Vibration != 0 || f.Alert != 0 || f.Sound != 150.3 {
		t.Fatalf("unexpected sample frame: %+v", f)
	}
	if got := EncodeFrame(Frame{Sound: 150.3}); got != "AAAF3w==" {
		t.Fatalf("EncodeFrame: got %q", got)
	}

	in := Frame{Vibration: 1, Alert: 0, Sound: 92.37}
	out, err := DecodeFrame(EncodeFrame(in))
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if out.Vibration != 1 || out.Alert != 0 || out.Sound != 92.4 {
		t.Fatalf("round trip: got %+v", out)
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	if _, err := DecodeFrame("!!"); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := DecodeFrame("AAA="); err == nil {
		t.Fatalf("expected short frame error")
	}
}
