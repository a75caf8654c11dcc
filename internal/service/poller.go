package service

import (
	"context"
	"sync"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/logger"
	"solar_monitor/internal/models"
	"solar_monitor/internal/repository"
)

const stationListPageSize = 10

// PollerService resolves the target station once, then polls the provider on
// a fixed interval, feeding the sample store, status cache and alerter. Ticks
// are strictly sequential; per-tick failures are logged and never crash the
// loop.
type PollerService struct {
	client  StationClient
	samples repository.SampleRepo
	cache   *StatusCache
	alerter *Alerter
	log     *logger.Logger

	interval time.Duration

	mu        sync.Mutex
	stationID int64 // 0 until resolved
	running   bool
	cancel    context.CancelFunc

	now func() time.Time
}

func NewPollerService(client StationClient, samples repository.SampleRepo, cache *StatusCache, alerter *Alerter, cfg config.Config, log *logger.Logger) *PollerService {
	return &PollerService{
		client:    client,
		samples:   samples,
		cache:     cache,
		alerter:   alerter,
		log:       log,
		interval:  time.Duration(cfg.Monitor.PollIntervalSec) * time.Second,
		stationID: cfg.Deye.StationID,
		now:       time.Now,
	}
}

// Start launches the background loop. Calling it again while the loop is
// running is a no-op.
func (p *PollerService) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true

	go p.run(ctx)
	p.log.Infow("poller started", "interval", p.interval)
}

// Stop signals cancellation without blocking. An in-flight tick finishes
// naturally; only the inter-tick wait is interrupted.
func (p *PollerService) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	p.running = false
}

func (p *PollerService) run(ctx context.Context) {
	// Ticks run on a non-cancellable context: Stop interrupts only the
	// inter-tick wait below, never an in-flight provider call or durable
	// write. A tick that already started always completes.
	workCtx := context.WithoutCancel(ctx)

	// The durable alert snapshot must be in memory before the first tick so a
	// restart does not repeat an already-fired notification.
	p.alerter.Restore(workCtx)

	for {
		p.tick(workCtx)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.log.Infow("poller stopped")
			return
		case <-timer.C:
		}
	}
}

// tick runs one poll iteration. Every failure path ends the tick; none of
// them propagates out of the loop.
func (p *PollerService) tick(ctx context.Context) {
	stationID, err := p.resolveStation(ctx)
	if err != nil {
		p.log.Errorw("station resolution failed", "err", err)
		return
	}
	if stationID == 0 {
		p.log.Warnw("no stations on the account, skipping tick")
		return
	}

	payload, err := p.client.GetLatest(ctx, stationID)
	if err != nil {
		p.log.Errorw("latest telemetry fetch failed", "station", stationID, "err", err)
		return
	}

	sample := models.Sample{
		Timestamp:       p.now().Unix(),
		SOC:             intField(payload, "batterySOC"),
		GenerationPower: floatField(payload, "generationPower"),
		BatteryPower:    floatField(payload, "batteryPower"),
	}

	if err := p.samples.Append(ctx, sample); err != nil {
		// Advisory: a missed row must not cost the status update or the alert
		// evaluation.
		p.log.Errorw("sample append failed", "err", err)
	}

	p.cache.Set(sample)
	p.alerter.Evaluate(ctx, sample.SOC)
}

// resolveStation returns the cached station id, resolving it on first use
// from the configured value or the first listed station. Returns 0 with nil
// error when the account has no stations yet; re-resolution then happens on
// the next tick.
func (p *PollerService) resolveStation(ctx context.Context) (int64, error) {
	p.mu.Lock()
	id := p.stationID
	p.mu.Unlock()
	if id != 0 {
		return id, nil
	}

	stations, err := p.client.ListStations(ctx, 1, stationListPageSize)
	if err != nil {
		return 0, err
	}
	if len(stations) == 0 {
		return 0, nil
	}

	first := stations[0]
	p.mu.Lock()
	p.stationID = first.ID
	p.mu.Unlock()

	p.log.Infow("using station", "id", first.ID, "name", first.Name)
	return first.ID, nil
}

// intField reads an optional integer out of a decoded JSON payload. Numbers
// arrive as float64; absence and non-numeric values map to nil.
func intField(m map[string]any, key string) *int {
	if v, ok := m[key].(float64); ok {
		n := int(v)
		return &n
	}
	return nil
}

func floatField(m map[string]any, key string) *float64 {
	if v, ok := m[key].(float64); ok {
		return &v
	}
	return nil
}
