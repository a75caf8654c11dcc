package repository

import (
	"context"
	"database/sql"
	"errors"

	"solar_monitor/internal/models"
)

type AlertStateSQLite struct {
	db *sql.DB
}

func NewAlertStateSQLite(db *sql.DB) *AlertStateSQLite { return &AlertStateSQLite{db: db} }

const (
	alertStateRowID = 1

	upsertAlertStateSQL = `
		INSERT INTO alert_state (id, status, last_soc, last_alert_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			last_soc=excluded.last_soc,
			last_alert_ts=excluded.last_alert_ts
	`

	selectAlertStateSQL = `
		SELECT status, last_soc, last_alert_ts
		FROM alert_state WHERE id=?
	`
)

// Save upserts the single alert_state row (id always 1). Written wholesale
// on every status transition, not on every poll.
func (r *AlertStateSQLite) Save(ctx context.Context, st models.AlertState) error {
	_, err := r.db.ExecContext(ctx, upsertAlertStateSQL,
		alertStateRowID,
		string(st.Status),
		st.LastSOC,
		st.LastAlertTS,
	)
	return err
}

// Load fetches the persisted snapshot. A missing row is not an error: the
// machine simply starts from the unknown status. An unrecognized stored
// status also degrades to unknown.
func (r *AlertStateSQLite) Load(ctx context.Context) (models.AlertState, error) {
	row := r.db.QueryRowContext(ctx, selectAlertStateSQL, alertStateRowID)

	var (
		status  string
		soc, ts sql.NullInt64
	)
	if err := row.Scan(&status, &soc, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AlertState{Status: models.AlertUnknown}, nil
		}
		return models.AlertState{Status: models.AlertUnknown}, err
	}

	st := models.AlertState{Status: models.ParseAlertStatus(status)}
	if soc.Valid {
		v := int(soc.Int64)
		st.LastSOC = &v
	}
	if ts.Valid {
		v := ts.Int64
		st.LastAlertTS = &v
	}
	return st, nil
}
