package service

import (
	"time"

	"solar_monitor/internal/models"
)

// LogFilter filters the alert event log by time range and event type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "LOW", "RECOVERED"
}

// HistoryPage is the presentation payload for recent samples.
type HistoryPage struct {
	Items []models.Sample `json:"items"`
}
