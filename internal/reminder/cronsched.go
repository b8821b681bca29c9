package reminder

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronScheduler is an in-process TriggerScheduler backed by robfig/cron.
// It is volatile: registrations do not survive a restart, which is why
// the dispatcher reschedules everything on boot.
type CronScheduler struct {
	cron    *cron.Cron
	handler func(Payload)
	logger  *zap.Logger

	mu      sync.Mutex
	entries map[int64]cron.EntryID
}

func NewCronScheduler(handler func(Payload), logger *zap.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		handler: handler,
		logger:  logger,
		entries: make(map[int64]cron.EntryID),
	}
}

// Start begins firing registered triggers
func (c *CronScheduler) Start() {
	c.cron.Start()
}

// Stop halts firing and waits for in-flight jobs to finish
func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// Register schedules a recurring trigger. An existing registration
// under the same key is replaced, never duplicated.
func (c *CronScheduler) Register(key int64, first time.Time, interval time.Duration, payload Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.cron.Remove(old)
	}

	id := c.cron.Schedule(anchoredSchedule{first: first, interval: interval}, cron.FuncJob(func() {
		c.handler(payload)
	}))
	c.entries[key] = id

	c.logger.Debug("trigger registered",
		zap.Int64("key", key),
		zap.Time("first", first),
		zap.Duration("interval", interval),
	)
	return nil
}

// Cancel removes a registration; unknown keys are a no-op
func (c *CronScheduler) Cancel(key int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.entries[key]; ok {
		c.cron.Remove(id)
		delete(c.entries, key)
	}
	return nil
}

// Registered reports how many triggers are currently registered
func (c *CronScheduler) Registered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// anchoredSchedule fires at a fixed first instant and then every
// interval after it, unlike cron.Every which anchors to activation time
type anchoredSchedule struct {
	first    time.Time
	interval time.Duration
}

func (s anchoredSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	elapsed := t.Sub(s.first)
	periods := elapsed/s.interval + 1
	return s.first.Add(periods * s.interval)
}
