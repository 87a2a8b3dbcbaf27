package repository

import (
	"context"
	"database/sql"

	"sensor_simulator/internal/models"
)

// timeLayout is how timestamps are stored; it sorts lexically in UTC.
const timeLayout = "2006-01-02 15:04:05.000000"

type ReadingRepo interface {
	AppendBatch(ctx context.Context, readings []models.Reading) error
	List(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error)
}

type DeliveryRepo interface {
	Append(ctx context.Context, d models.Delivery) error
	List(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error)
}

type Repository struct {
	Readings   ReadingRepo
	Deliveries DeliveryRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings:   NewReadingSQLite(db),
		Deliveries: NewDeliverySQLite(db),
	}
}
