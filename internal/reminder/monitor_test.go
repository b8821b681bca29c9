package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/adherence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMonitor(t *testing.T) (*Monitor, *recordingNotifier) {
	st := setupTestStore(t)
	createMedication(t, st, "08:00")

	notifier := &recordingNotifier{}
	calc := adherence.NewCalculator(st, zap.NewNop())
	return NewMonitor(st, calc, notifier, 1, zap.NewNop()).WithInterval(10 * time.Millisecond), notifier
}

func TestMonitor_StartStop(t *testing.T) {
	m, _ := setupMonitor(t)

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsRunning())

	require.NoError(t, m.Stop())
	assert.False(t, m.IsRunning())

	// Stopping twice is a no-op
	require.NoError(t, m.Stop())
}

func TestMonitor_DoubleStart(t *testing.T) {
	m, _ := setupMonitor(t)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	assert.Error(t, m.Start(context.Background()))
}

func TestMonitor_DeliversSummary(t *testing.T) {
	m, notifier := setupMonitor(t)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	// The first refresh happens immediately on start
	assert.Eventually(t, func() bool { return notifier.count() > 0 }, time.Second, 5*time.Millisecond)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	first := notifier.deliveries[0]
	assert.Equal(t, monitorNotificationID, first.id)
	assert.Equal(t, "Active reminders", first.title)
	assert.Contains(t, first.body, "1 medications")
	assert.Contains(t, first.body, "1 doses today")
}

func TestMonitor_StopHaltsTicks(t *testing.T) {
	m, notifier := setupMonitor(t)

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool { return notifier.count() > 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Stop())

	// After Stop returns no further tick work runs
	settled := notifier.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, notifier.count())
}

func TestMonitor_ContextCancellation(t *testing.T) {
	m, notifier := setupMonitor(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx))
	assert.Eventually(t, func() bool { return notifier.count() > 0 }, time.Second, 5*time.Millisecond)

	cancel()
	// Stop still joins cleanly after the context ended the loop
	require.NoError(t, m.Stop())
}
