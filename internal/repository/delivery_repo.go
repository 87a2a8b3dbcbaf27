package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sensor_simulator/internal/models"

	"github.com/google/uuid"
)

type DeliverySQLite struct {
	db *sql.DB
}

func NewDeliverySQLite(db *sql.DB) *DeliverySQLite { return &DeliverySQLite{db: db} }

// Append inserts a delivery outcome. Empty ID and zero At are filled in.
func (r *DeliverySQLite) Append(ctx context.Context, d models.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.At.IsZero() {
		d.At = time.Now()
	}

	var errPtr *string
	if d.Error != "" {
		errPtr = &d.Error
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, tick, at, sink, status_code, success, error, latency_ms, response)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.Tick,
		d.At.UTC().Format(timeLayout),
		strings.ToLower(strings.TrimSpace(d.Sink)),
		d.StatusCode,
		d.Success,
		errPtr,
		d.LatencyMS,
		d.Response,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// List returns deliveries filtered by [from, to] (inclusive), sink and outcome, newest first.
func (r *DeliverySQLite) List(ctx context.Context, f models.DeliveryFilter) ([]models.Delivery, error) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "at >= ?")
		args = append(args, f.From.UTC().Format(timeLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "at <= ?")
		args = append(args, f.To.UTC().Format(timeLayout))
	}
	if sink := strings.ToLower(strings.TrimSpace(f.Sink)); sink != "" {
		conds = append(conds, "sink = ?")
		args = append(args, sink)
	}
	if f.Success != nil {
		conds = append(conds, "success = ?")
		args = append(args, *f.Success)
	}

	q := `SELECT id, tick, at, sink, status_code, success, error, latency_ms, response FROM deliveries`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Delivery, 0, 64)
	for rows.Next() {
		var (
			d      models.Delivery
			at     string
			errStr sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Tick, &at, &d.Sink, &d.StatusCode, &d.Success,
			&errStr, &d.LatencyMS, &d.Response); err != nil {
			return nil, err
		}
		if d.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse delivery time %q: %w", at, err)
		}
		d.Error = errStr.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
