package service

import (
	"context"

	"solar_monitor/internal/config"
	"solar_monitor/internal/logger"
	"solar_monitor/internal/models"
	"solar_monitor/internal/notify"
	"solar_monitor/internal/repository"
)

// StationClient is the slice of the Deye client the poller needs.
type StationClient interface {
	ListStations(ctx context.Context, page, size int) ([]models.Station, error)
	GetLatest(ctx context.Context, stationID int64) (map[string]any, error)
}

// Monitoring exposes the latest cached status snapshot. Reads never block on
// the poller and never observe a partially updated sample.
type Monitoring interface {
	GetStatus(ctx context.Context) models.StatusSnapshot
}

// History exposes the recent sample time series.
type History interface {
	GetHistory(ctx context.Context) (HistoryPage, error)
}

// AlertLog exposes the append-only notification log with filtering.
type AlertLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AlertEvent, error)
}

// Poller drives the background polling loop. Start is idempotent; Stop only
// signals cancellation and never blocks waiting for loop exit.
type Poller interface {
	Start()
	Stop()
}

// Service aggregates all sub-services.
type Service struct {
	Monitoring
	History
	AlertLog
	Poller
}

// NewService wires the repository layer, remote client and notifier into the
// concrete services. The status cache and alerter are shared between the
// poller (writer) and the monitoring service (reader).
func NewService(repos *repository.Repository, client StationClient, notifier notify.Notifier, cfg config.Config, log *logger.Logger) *Service {
	cache := NewStatusCache()
	alerter := NewAlerter(repos.AlertState, repos.AlertEvents, notifier, cfg.Monitor, log)

	return &Service{
		Monitoring: NewMonitoringService(cache, alerter, cfg.Monitor),
		History:    NewHistoryService(repos.Samples),
		AlertLog:   NewAlertLogService(repos.AlertEvents),
		Poller:     NewPollerService(client, repos.Samples, cache, alerter, cfg, log),
	}
}
