package service

import (
	"context"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/models"
)

// MonitoringService assembles the read-only status snapshot from the cache
// and the alerter without ever blocking the poller.
type MonitoringService struct {
	cache   *StatusCache
	alerter *Alerter
	cfg     config.Monitor

	now func() time.Time
}

func NewMonitoringService(cache *StatusCache, alerter *Alerter, cfg config.Monitor) *MonitoringService {
	return &MonitoringService{
		cache:   cache,
		alerter: alerter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// GetStatus returns the last successfully cached snapshot. Before the first
// poll completes, the telemetry fields are nil and only configuration echoes
// and server time are populated.
func (s *MonitoringService) GetStatus(_ context.Context) models.StatusSnapshot {
	snap := models.StatusSnapshot{
		PollIntervalSec: s.cfg.PollIntervalSec,
		Threshold:       s.cfg.LowSOCThreshold,
		ResetThreshold:  s.cfg.LowSOCReset,
		AlertState:      s.alerter.State(),
		ServerTime:      s.now().Unix(),
	}

	if latest := s.cache.Latest(); latest != nil {
		snap.SOC = latest.SOC
		snap.GenerationPower = latest.GenerationPower
		snap.BatteryPower = latest.BatteryPower
		ts := latest.Timestamp
		snap.LastUpdateTime = &ts
	}
	return snap
}
