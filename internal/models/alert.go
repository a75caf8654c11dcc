package models

import "time"

// AlertStatus is the hysteresis machine status.
type AlertStatus string

const (
	AlertUnknown AlertStatus = "unknown"
	AlertOK      AlertStatus = "ok"
	AlertLow     AlertStatus = "low"
)

// Alert event types recorded in the notification log.
const (
	AlertEventLow       = "LOW"
	AlertEventRecovered = "RECOVERED"
)

// ParseAlertStatus normalizes a stored status string. Anything unrecognized
// (including a corrupt durable record) degrades to AlertUnknown.
func ParseAlertStatus(s string) AlertStatus {
	switch AlertStatus(s) {
	case AlertOK, AlertLow:
		return AlertStatus(s)
	default:
		return AlertUnknown
	}
}

// AlertState is the durable snapshot of the hysteresis machine.
type AlertState struct {
	Status      AlertStatus `json:"status"`
	LastSOC     *int        `json:"last_soc"`
	LastAlertTS *int64      `json:"last_alert_ts"` // epoch seconds
}

// Clone returns a deep copy so presentation readers never share pointers
// with the poller goroutine.
func (s AlertState) Clone() AlertState {
	out := AlertState{Status: s.Status}
	if s.LastSOC != nil {
		v := *s.LastSOC
		out.LastSOC = &v
	}
	if s.LastAlertTS != nil {
		v := *s.LastAlertTS
		out.LastAlertTS = &v
	}
	return out
}

// AlertEvent is a single notification attempt.
type AlertEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"` // LOW | RECOVERED
	SOC        *int      `json:"soc,omitempty"`
	Message    string    `json:"message"`
	Delivered  bool      `json:"delivered"`
}
