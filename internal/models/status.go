package models

// StatusSnapshot is the read-only projection served to the web layer. It
// combines the latest sample with configuration echoes and a deep copy of
// the alert state; JSON keys match what the dashboard consumes.
type StatusSnapshot struct {
	SOC             *int       `json:"soc"`
	GenerationPower *float64   `json:"generationPower"`
	BatteryPower    *float64   `json:"batteryPower"`
	LastUpdateTime  *int64     `json:"lastUpdateTime"`
	PollIntervalSec int        `json:"pollIntervalSec"`
	Threshold       int        `json:"threshold"`
	ResetThreshold  int        `json:"resetThreshold"`
	AlertState      AlertState `json:"alertState"`
	ServerTime      int64      `json:"serverTime"`
}
