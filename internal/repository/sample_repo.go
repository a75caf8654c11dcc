package repository

import (
	"context"
	"database/sql"
	"fmt"

	"solar_monitor/internal/models"
)

type SampleSQLite struct {
	db *sql.DB
}

func NewSampleSQLite(db *sql.DB) *SampleSQLite { return &SampleSQLite{db: db} }

const (
	insertSampleSQL = `
		INSERT INTO soc_samples (ts, soc, generation_power, battery_power)
		VALUES (?, ?, ?, ?)
	`

	selectSamplesSinceSQL = `
		SELECT ts, soc, generation_power, battery_power
		FROM soc_samples
		WHERE ts >= ?
		ORDER BY ts DESC
		LIMIT ?
	`
)

// Append inserts one sample. Nil optional fields are stored as SQL NULL.
func (r *SampleSQLite) Append(ctx context.Context, s models.Sample) error {
	_, err := r.db.ExecContext(ctx, insertSampleSQL,
		s.Timestamp,
		s.SOC,
		s.GenerationPower,
		s.BatteryPower,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// ListSince returns samples with ts >= sinceTS, newest first, capped at limit.
func (r *SampleSQLite) ListSince(ctx context.Context, sinceTS int64, limit int) ([]models.Sample, error) {
	rows, err := r.db.QueryContext(ctx, selectSamplesSinceSQL, sinceTS, limit)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.Sample, 0, 64)
	for rows.Next() {
		var (
			s        models.Sample
			soc      sql.NullInt64
			gen, bat sql.NullFloat64
		)
		if err := rows.Scan(&s.Timestamp, &soc, &gen, &bat); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if soc.Valid {
			v := int(soc.Int64)
			s.SOC = &v
		}
		if gen.Valid {
			v := gen.Float64
			s.GenerationPower = &v
		}
		if bat.Valid {
			v := bat.Float64
			s.BatteryPower = &v
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
