package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sensor_simulator/internal/models"
	"sensor_simulator/internal/repository"
)

const (
	defaultListLimit = 500
	maxListLimit     = 5000
)

var ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")

type HistoryService struct {
	readings   repository.ReadingRepo
	deliveries repository.DeliveryRepo
}

func NewHistoryService(readings repository.ReadingRepo, deliveries repository.DeliveryRepo) *HistoryService {
	return &HistoryService{readings: readings, deliveries: deliveries}
}

func (s *HistoryService) Readings(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	f.From, f.To = from, to
	f.SensorID = strings.TrimSpace(f.SensorID)
	f.Limit = normalizeLimit(f.Limit)
	return s.readings.List(ctx, f)
}

func (s *HistoryService) Deliveries(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	from, to, err := normalizeRange(f.From, f.To)
	if err != nil {
		return nil, err
	}
	f.From, f.To = from, to
	f.Sink = strings.ToLower(strings.TrimSpace(f.Sink))
	f.Limit = normalizeLimit(f.Limit)
	return s.deliveries.List(ctx, f)
}

// normalizeRange converts bounds to UTC, preserving zero values, and validates order.
func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = normalizeToUTC(from), normalizeToUTC(to)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidTimeRange
	}
	return from, to, nil
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeLimit(n int) int {
	switch {
	case n <= 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	default:
		return n
	}
}
