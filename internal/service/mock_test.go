package service

import (
	"context"
	"sync"
	"time"

	"solar_monitor/internal/models"
)

func intPtr(v int) *int { return &v }

// fakeNotifier records every text it was asked to send.
type fakeNotifier struct {
	mu   sync.Mutex
	ok   bool
	sent []string
}

func (f *fakeNotifier) Send(_ context.Context, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.ok
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeAlertStateRepo struct {
	mu        sync.Mutex
	loadState models.AlertState
	loadErr   error
	saveErr   error
	saved     []models.AlertState
	loaded    bool
}

func (f *fakeAlertStateRepo) Save(_ context.Context, s models.AlertState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s)
	return f.saveErr
}

func (f *fakeAlertStateRepo) Load(_ context.Context) (models.AlertState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = true
	if f.loadErr != nil {
		return models.AlertState{Status: models.AlertUnknown}, f.loadErr
	}
	return f.loadState, nil
}

func (f *fakeAlertStateRepo) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeAlertStateRepo) wasLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

type fakeAlertEventRepo struct {
	mu       sync.Mutex
	appended []models.AlertEvent
	listResp []models.AlertEvent
	listErr  error

	lastFrom time.Time
	lastTo   time.Time
	lastTyp  string
}

func (f *fakeAlertEventRepo) Append(_ context.Context, e models.AlertEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeAlertEventRepo) List(_ context.Context, from, to time.Time, typ string) ([]models.AlertEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFrom, f.lastTo, f.lastTyp = from, to, typ
	return f.listResp, f.listErr
}

func (f *fakeAlertEventRepo) events() []models.AlertEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AlertEvent, len(f.appended))
	copy(out, f.appended)
	return out
}

type fakeSampleRepo struct {
	mu        sync.Mutex
	appended  []models.Sample
	appendErr error
	listResp  []models.Sample
	listErr   error

	lastSince int64
	lastLimit int
}

func (f *fakeSampleRepo) Append(_ context.Context, s models.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, s)
	return f.appendErr
}

func (f *fakeSampleRepo) ListSince(_ context.Context, sinceTS int64, limit int) ([]models.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSince, f.lastLimit = sinceTS, limit
	return f.listResp, f.listErr
}

func (f *fakeSampleRepo) appendedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}

func (f *fakeSampleRepo) lastAppended() (models.Sample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.appended) == 0 {
		return models.Sample{}, false
	}
	return f.appended[len(f.appended)-1], true
}

type fakeStationClient struct {
	mu          sync.Mutex
	stations    []models.Station
	stationsErr error
	latest      map[string]any
	latestErr   error

	listCalls     int
	latestCalls   int
	lastStationID int64
}

func (f *fakeStationClient) ListStations(_ context.Context, _, _ int) ([]models.Station, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.stations, f.stationsErr
}

func (f *fakeStationClient) GetLatest(_ context.Context, stationID int64) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	f.lastStationID = stationID
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeStationClient) calls() (list, latest int, lastStation int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.latestCalls, f.lastStationID
}
