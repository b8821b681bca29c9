package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/adherence"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/metrics"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/notify"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/schedule"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"go.uber.org/zap"
)

// monitorNotificationID keeps the summary pinned to one notification
// slot, so each tick replaces the previous summary instead of stacking
const monitorNotificationID = "adherence-summary"

// Monitor is the background loop that refreshes the adherence summary
// for a user on a fixed interval, the way the original foreground
// service kept its persistent notification current.
type Monitor struct {
	store    *store.Store
	calc     *adherence.Calculator
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	interval time.Duration
	userID   int64
	now      func() time.Time

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewMonitor(st *store.Store, calc *adherence.Calculator, notifier notify.Notifier, userID int64, logger *zap.Logger) *Monitor {
	return &Monitor{
		store:    st,
		calc:     calc,
		notifier: notifier,
		metrics:  metrics.Default(),
		logger:   logger,
		interval: time.Minute,
		userID:   userID,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval sets the polling interval
func (m *Monitor) WithInterval(interval time.Duration) *Monitor {
	m.interval = interval
	return m
}

// Start starts the monitoring loop
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("starting reminder monitor",
		zap.Int64("user_id", m.userID),
		zap.Duration("interval", m.interval),
	)

	m.wg.Add(1)
	go m.run(ctx)

	return nil
}

// Stop stops the loop and waits for it to exit; once Stop returns no
// further tick work runs
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("reminder monitor stopped")
	return nil
}

// IsRunning returns true if the loop is active
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Refresh immediately on start
	m.tick()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic in monitor tick", zap.Any("recover", r))
		}
	}()
	m.metrics.RecordMonitorTick()

	meds, err := m.store.GetMedicationsForUser(m.userID)
	if err != nil {
		// Degraded storage is retried on the next tick, not fatal
		m.logger.Warn("monitor tick skipped", zap.Error(err))
		return
	}

	today := m.now().Format(schedule.DateLayout)
	dueToday := 0
	for i := range meds {
		dueToday += len(schedule.ForDate(&meds[i], today))
	}

	rate := m.calc.OverallRate(m.userID)
	body := fmt.Sprintf("%d medications, %d doses today - adherence %.1f%%", len(meds), dueToday, rate)

	if err := m.notifier.Deliver(monitorNotificationID, "Active reminders", body); err != nil {
		m.metrics.RecordNotification(false)
		m.logger.Warn("summary notification failed", zap.Error(err))
		return
	}
	m.metrics.RecordNotification(true)
}
