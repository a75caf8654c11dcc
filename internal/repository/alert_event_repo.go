package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"solar_monitor/internal/models"

	"github.com/google/uuid"
)

type AlertEventSQLite struct {
	db *sql.DB
}

func NewAlertEventSQLite(db *sql.DB) *AlertEventSQLite { return &AlertEventSQLite{db: db} }

const insertAlertEventSQL = `
		INSERT INTO alert_events (id, occurred_at, type, soc, message, delivered)
		VALUES (?, ?, ?, ?, ?, ?)
	`

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *AlertEventSQLite) Append(ctx context.Context, e models.AlertEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertAlertEventSQL,
		e.EventID,
		e.OccurredAt.Format("2006-01-02 15:04:05"),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.SOC,
		e.Message,
		e.Delivered,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *AlertEventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.AlertEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, occurred_at, type, soc, message, delivered FROM alert_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.AlertEvent, 0, 64)
	for rows.Next() {
		var (
			ev  models.AlertEvent
			soc sql.NullInt64
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Type, &soc, &ev.Message, &ev.Delivered); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		if soc.Valid {
			v := int(soc.Int64)
			ev.SOC = &v
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
