package models

// Station is one installation record from the provider's station list.
type Station struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
