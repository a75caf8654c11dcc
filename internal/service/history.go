package service

import (
	"context"
	"time"

	"solar_monitor/internal/repository"
)

const (
	historyWindow = 24 * time.Hour
	historyLimit  = 1000
)

// HistoryService serves the last 24 hours of samples, newest first.
type HistoryService struct {
	samples repository.SampleRepo

	now func() time.Time
}

func NewHistoryService(samples repository.SampleRepo) *HistoryService {
	return &HistoryService{samples: samples, now: time.Now}
}

func (s *HistoryService) GetHistory(ctx context.Context) (HistoryPage, error) {
	since := s.now().Add(-historyWindow).Unix()
	items, err := s.samples.ListSince(ctx, since, historyLimit)
	if err != nil {
		return HistoryPage{}, err
	}
	return HistoryPage{Items: items}, nil
}
