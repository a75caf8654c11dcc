package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"solar_monitor/internal/models"
	"solar_monitor/internal/repository"
)

// AlertLogService lists notification attempts with time-range filtering.
type AlertLogService struct {
	eventRepo repository.AlertEventRepo
}

func NewAlertLogService(eventRepo repository.AlertEventRepo) *AlertLogService {
	return &AlertLogService{eventRepo: eventRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := strings.TrimSpace(strings.ToUpper(f.Type))
	return from, to, eventType, nil
}

func (s *AlertLogService) List(ctx context.Context, f LogFilter) ([]models.AlertEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}
