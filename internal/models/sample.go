package models

// Sample is one polled telemetry point. Nil fields mean the provider omitted
// the value; absence is preserved and never coerced to zero. Samples are
// immutable once created.
type Sample struct {
	Timestamp       int64    `json:"ts"`               // epoch seconds
	SOC             *int     `json:"soc"`              // percent
	GenerationPower *float64 `json:"generation_power"` // W
	BatteryPower    *float64 `json:"battery_power"`    // W
}
