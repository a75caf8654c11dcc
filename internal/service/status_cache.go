package service

import (
	"sync"

	"solar_monitor/internal/models"
)

// StatusCache holds the most recent sample. The poller goroutine is the only
// writer; handler goroutines read concurrently. Samples are immutable, so
// copies may share the optional-field pointers.
type StatusCache struct {
	mu     sync.RWMutex
	sample *models.Sample
}

func NewStatusCache() *StatusCache { return &StatusCache{} }

// Set replaces the current sample atomically with respect to readers.
func (c *StatusCache) Set(s models.Sample) {
	c.mu.Lock()
	c.sample = &s
	c.mu.Unlock()
}

// Latest returns a copy of the most recent sample, or nil before the first
// successful poll.
func (c *StatusCache) Latest() *models.Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sample == nil {
		return nil
	}
	s := *c.sample
	return &s
}
