package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sensor_simulator/internal/models"
)

func TestHistory_ReadingsNormalizesFilter(t *testing.T) {
	repo := &readingRepoStub{listResp: []models.Reading{{Tick: 1}}}
	svc := NewHistoryService(repo, &deliveryRepoStub{})

	loc := time.FixedZone("UTC+2", 2*3600)
	from := time.Date(2025, 1, 1, 12, 0, 0, 0, loc)
	got, err := svc.Readings(context.Background(), models.ReadingFilter{From: from, SensorID: "  sound "})
	if err != nil {
		t.Fatalf("Readings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected repo result passthrough")
	}
	f := repo.lastList
	if f.From.Location() != time.UTC || !f.From.Equal(from) || !f.To.IsZero() {
		t.Fatalf("bounds not normalized: %+v", f)
	}
	if f.SensorID != "sound" || f.Limit != defaultListLimit {
		t.Fatalf("filter not normalized: %+v", f)
	}
}

func TestHistory_LimitsAndRange(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-1, defaultListLimit},
		{0, defaultListLimit},
		{25, 25},
		{maxListLimit + 1, maxListLimit},
	}
	for _, tc := range cases {
		if got := normalizeLimit(tc.in); got != tc.want {
			t.Errorf("normalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	deliveries := &deliveryRepoStub{}
	svc := NewHistoryService(&readingRepoStub{}, deliveries)
	now := time.Now()

	_, err := svc.Deliveries(context.Background(), models.DeliveryFilter{From: now, To: now.Add(-time.Minute)})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
	if _, err := svc.Readings(context.Background(), models.ReadingFilter{From: now, To: now.Add(-time.Second)}); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}

	ok := true
	if _, err := svc.Deliveries(context.Background(), models.DeliveryFilter{Sink: " MQTT", Success: &ok, Limit: 3}); err != nil {
		t.Fatalf("Deliveries: %v", err)
	}
	if f := deliveries.lastList; f.Sink != "mqtt" || f.Limit != 3 || f.Success == nil || !*f.Success {
		t.Fatalf("unexpected filter: %+v", f)
	}
}
