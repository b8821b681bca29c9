package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	startTime time.Time

	triggersRegistered atomic.Int64
	triggersCancelled  atomic.Int64
	triggersFired      atomic.Int64
	triggersSuppressed atomic.Int64

	marksTotal   atomic.Int64
	marksSuccess atomic.Int64
	marksFailed  atomic.Int64

	notificationsDelivered atomic.Int64
	notificationsFailed    atomic.Int64

	monitorTicks atomic.Int64
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func (m *Metrics) RecordTriggerRegistered() {
	m.triggersRegistered.Add(1)
}

func (m *Metrics) RecordTriggerCancelled() {
	m.triggersCancelled.Add(1)
}

// RecordTriggerFired counts a delivered firing; suppressed covers firings
// that resolved to an inactive dose and were dropped.
func (m *Metrics) RecordTriggerFired(suppressed bool) {
	m.triggersFired.Add(1)
	if suppressed {
		m.triggersSuppressed.Add(1)
	}
}

func (m *Metrics) RecordMark(success bool) {
	m.marksTotal.Add(1)
	if success {
		m.marksSuccess.Add(1)
	} else {
		m.marksFailed.Add(1)
	}
}

func (m *Metrics) RecordNotification(success bool) {
	if success {
		m.notificationsDelivered.Add(1)
	} else {
		m.notificationsFailed.Add(1)
	}
}

func (m *Metrics) RecordMonitorTick() {
	m.monitorTicks.Add(1)
}

type Snapshot struct {
	Uptime                 time.Duration `json:"uptime"`
	TriggersRegistered     int64         `json:"triggers_registered"`
	TriggersCancelled      int64         `json:"triggers_cancelled"`
	TriggersFired          int64         `json:"triggers_fired"`
	TriggersSuppressed     int64         `json:"triggers_suppressed"`
	MarksTotal             int64         `json:"marks_total"`
	MarksSuccess           int64         `json:"marks_success"`
	MarksFailed            int64         `json:"marks_failed"`
	NotificationsDelivered int64         `json:"notifications_delivered"`
	NotificationsFailed    int64         `json:"notifications_failed"`
	MonitorTicks           int64         `json:"monitor_ticks"`
}

func (m *Metrics) Snapshot() *Snapshot {
	return &Snapshot{
		Uptime:                 time.Since(m.startTime),
		TriggersRegistered:     m.triggersRegistered.Load(),
		TriggersCancelled:      m.triggersCancelled.Load(),
		TriggersFired:          m.triggersFired.Load(),
		TriggersSuppressed:     m.triggersSuppressed.Load(),
		MarksTotal:             m.marksTotal.Load(),
		MarksSuccess:           m.marksSuccess.Load(),
		MarksFailed:            m.marksFailed.Load(),
		NotificationsDelivered: m.notificationsDelivered.Load(),
		NotificationsFailed:    m.notificationsFailed.Load(),
		MonitorTicks:           m.monitorTicks.Load(),
	}
}
