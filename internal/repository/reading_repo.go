package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sensor_simulator/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

const insertReading = `
		INSERT INTO readings (tick, sensor_id, name, kind, key, value, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

// AppendBatch stores all readings of one tick in a single transaction.
func (r *ReadingSQLite) AppendBatch(ctx context.Context, readings []models.Reading) error {
	if len(readings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin readings tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rd := range readings {
		at := rd.At
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := tx.ExecContext(ctx, insertReading,
			rd.Tick,
			rd.SensorID,
			rd.Name,
			rd.Kind,
			rd.Key,
			rd.Value,
			at.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert reading %s@%d: %w", rd.SensorID, rd.Tick, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit readings tx: %w", err)
	}
	return nil
}

// List returns readings filtered by [from, to] (inclusive) and/or sensor, newest first.
func (r *ReadingSQLite) List(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error) {
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
	if id := strings.TrimSpace(f.SensorID); id != "" {
		conds = append(conds, "sensor_id = ?")
		args = append(args, id)
	}

	q := `SELECT tick, sensor_id, name, kind, key, value, at FROM readings`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var (
			rd models.Reading
			at string
		)
		if err := rows.Scan(&rd.Tick, &rd.SensorID, &rd.Name, &rd.Kind, &rd.Key, &rd.Value, &at); err != nil {
			return nil, err
		}
		if rd.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("parse reading time %q: %w", at, err)
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
