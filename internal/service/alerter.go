package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/logger"
	"solar_monitor/internal/models"
	"solar_monitor/internal/notify"
	"solar_monitor/internal/repository"
)

// Alerter is the hysteresis state machine over battery SOC. A "low"
// notification fires at most once per unbroken run below the low threshold,
// and a "recovered" one at most once per run at or above the reset threshold
// following a low state. The durable snapshot is written only on status
// transitions; between them only the in-memory last SOC moves.
type Alerter struct {
	stateRepo repository.AlertStateRepo
	eventRepo repository.AlertEventRepo
	notifier  notify.Notifier
	log       *logger.Logger

	lowThr   int
	resetThr int

	mu    sync.Mutex
	state models.AlertState

	now func() time.Time
}

func NewAlerter(stateRepo repository.AlertStateRepo, eventRepo repository.AlertEventRepo, notifier notify.Notifier, cfg config.Monitor, log *logger.Logger) *Alerter {
	return &Alerter{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		notifier:  notifier,
		log:       log,
		lowThr:    cfg.LowSOCThreshold,
		resetThr:  cfg.LowSOCReset,
		state:     models.AlertState{Status: models.AlertUnknown},
		now:       time.Now,
	}
}

// Restore loads the persisted snapshot so a restart does not repeat the
// notification for a crossing that already fired. Must run before the first
// Evaluate; a load failure keeps the machine at unknown.
func (a *Alerter) Restore(ctx context.Context) {
	st, err := a.stateRepo.Load(ctx)
	if err != nil {
		a.log.Errorw("alert state load failed, starting from unknown", "err", err)
		return
	}

	a.mu.Lock()
	a.state = st
	a.mu.Unlock()

	a.log.Infow("restored alert state", "status", st.Status)
}

// State returns a deep copy for presentation readers.
func (a *Alerter) State() models.AlertState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Evaluate feeds one polled SOC into the machine. A nil soc (provider omitted
// the field) leaves the machine untouched. The transition is recorded whether
// or not the notification was delivered; a dropped send is not retried for
// that crossing.
func (a *Alerter) Evaluate(ctx context.Context, soc *int) {
	if soc == nil {
		return
	}

	a.mu.Lock()
	prev := a.state.Status
	a.mu.Unlock()

	switch {
	case *soc <= a.lowThr && prev != models.AlertLow:
		a.transition(ctx, models.AlertLow, *soc, lowMessage(*soc))
	case *soc >= a.resetThr && prev == models.AlertLow:
		a.transition(ctx, models.AlertOK, *soc, recoveredMessage(*soc))
	default:
		// Inside the hysteresis band, or no status change: track the SOC in
		// memory without a durable write.
		a.mu.Lock()
		v := *soc
		a.state.LastSOC = &v
		a.mu.Unlock()
	}
}

func (a *Alerter) transition(ctx context.Context, to models.AlertStatus, soc int, text string) {
	delivered := a.notifier.Send(ctx, text)
	if delivered {
		a.log.Infow("alert notification sent", "status", to, "soc", soc)
	} else {
		a.log.Warnw("alert notification not delivered", "status", to, "soc", soc)
	}

	nowTS := a.now().Unix()

	a.mu.Lock()
	a.state.Status = to
	socCopy := soc
	a.state.LastSOC = &socCopy
	tsCopy := nowTS
	a.state.LastAlertTS = &tsCopy
	snapshot := a.state.Clone()
	a.mu.Unlock()

	// Persistence is advisory crash-resumption data: a failed write costs at
	// most one duplicate notification after a restart.
	if err := a.stateRepo.Save(ctx, snapshot); err != nil {
		a.log.Errorw("alert state save failed", "err", err)
	}

	evType := models.AlertEventLow
	if to == models.AlertOK {
		evType = models.AlertEventRecovered
	}
	if err := a.eventRepo.Append(ctx, models.AlertEvent{
		Type:      evType,
		SOC:       &socCopy,
		Message:   text,
		Delivered: delivered,
	}); err != nil {
		a.log.Errorw("alert event append failed", "err", err)
	}
}

func lowMessage(soc int) string {
	return fmt.Sprintf(
		"⚠️ <b>Battery charge is close to the critical threshold</b>\n"+
			"Power outages are possible soon.\n\n"+
			"Battery SOC: <b>%d%%</b>", soc)
}

func recoveredMessage(soc int) string {
	return fmt.Sprintf(
		"✅ <b>Battery charge recovered above the critical threshold</b>\n"+
			"SOC: <b>%d%%</b>", soc)
}
