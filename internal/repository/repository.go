package repository

import (
	"context"
	"database/sql"
	"time"

	"solar_monitor/internal/models"
	"solar_monitor/internal/repository/db"
)

// SampleRepo is the append-only telemetry time series. Rows are never
// updated or deleted here; retention is out of scope.
type SampleRepo interface {
	Append(ctx context.Context, s models.Sample) error
	ListSince(ctx context.Context, sinceTS int64, limit int) ([]models.Sample, error)
}

// AlertStateRepo persists the hysteresis machine snapshot across restarts.
type AlertStateRepo interface {
	Save(ctx context.Context, s models.AlertState) error
	Load(ctx context.Context) (models.AlertState, error)
}

// AlertEventRepo is the append-only notification log.
type AlertEventRepo interface {
	Append(ctx context.Context, e models.AlertEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.AlertEvent, error)
}

type Repository struct {
	Samples     SampleRepo
	AlertState  AlertStateRepo
	AlertEvents AlertEventRepo
}

func NewRepository(sqldb *sql.DB) *Repository {
	return &Repository{
		Samples:     NewSampleSQLite(sqldb),
		AlertState:  NewAlertStateSQLite(sqldb),
		AlertEvents: NewAlertEventSQLite(sqldb),
	}
}

// InitDB opens the SQLite file and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
