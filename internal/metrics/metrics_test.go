package metrics

import "testing"

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Error("New() returned nil")
	}
}

func TestDefault(t *testing.T) {
	m1 := Default()
	m2 := Default()

	if m1 != m2 {
		t.Error("Default() should return same instance")
	}
}

func TestRecordTriggerFired(t *testing.T) {
	m := New()
	m.RecordTriggerFired(false)
	m.RecordTriggerFired(true)

	if m.triggersFired.Load() != 2 {
		t.Error("Fired triggers not incremented")
	}
	if m.triggersSuppressed.Load() != 1 {
		t.Error("Suppressed triggers not incremented")
	}
}

func TestRecordMark(t *testing.T) {
	m := New()
	m.RecordMark(true)
	m.RecordMark(false)

	if m.marksTotal.Load() != 2 {
		t.Error("Total marks not incremented")
	}
	if m.marksSuccess.Load() != 1 {
		t.Error("Successful marks not incremented")
	}
	if m.marksFailed.Load() != 1 {
		t.Error("Failed marks not incremented")
	}
}

func TestSnapshot(t *testing.T) {
	m := New()
	m.RecordTriggerRegistered()
	m.RecordTriggerRegistered()
	m.RecordTriggerCancelled()
	m.RecordMonitorTick()
	m.RecordNotification(true)

	s := m.Snapshot()
	if s.TriggersRegistered != 2 {
		t.Errorf("expected 2 registrations, got %d", s.TriggersRegistered)
	}
	if s.TriggersCancelled != 1 {
		t.Errorf("expected 1 cancellation, got %d", s.TriggersCancelled)
	}
	if s.MonitorTicks != 1 {
		t.Errorf("expected 1 tick, got %d", s.MonitorTicks)
	}
	if s.NotificationsDelivered != 1 {
		t.Errorf("expected 1 delivery, got %d", s.NotificationsDelivered)
	}
	if s.Uptime <= 0 {
		t.Error("expected positive uptime")
	}
}
