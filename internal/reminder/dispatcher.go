// Package reminder bridges dose schedules to the external recurring
// trigger service and runs the background monitoring loop.
package reminder

import (
	"fmt"
	"time"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/metrics"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/notify"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/schedule"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"

	apperrors "github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Payload tags a trigger registration and comes back with every firing
type Payload struct {
	MedicationID int64  `json:"medication_id"`
	Name         string `json:"name"`
	Ordinal      int    `json:"ordinal"`
}

// TriggerScheduler is the external recurring-trigger service. Delivery
// is at-least-once and may be late; registrations are keyed so that
// registering an existing key replaces it.
type TriggerScheduler interface {
	Register(key int64, first time.Time, interval time.Duration, payload Payload) error
	Cancel(key int64) error
}

// RegistrationKey derives the stable trigger key for a dose. Ordinals
// are capped well below 100 in practice, so the keyspace never collides
// across medications.
func RegistrationKey(medicationID int64, ordinal int) int64 {
	return medicationID*100 + int64(ordinal)
}

// Dispatcher registers one recurring trigger per dose and surfaces
// firings as notifications. It never writes dose state; marking a dose
// taken is an explicit user action elsewhere.
type Dispatcher struct {
	scheduler TriggerScheduler
	store     *store.Store
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
	interval  time.Duration
	now       func() time.Time
}

func NewDispatcher(sched TriggerScheduler, st *store.Store, notifier notify.Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		scheduler: sched,
		store:     st,
		notifier:  notifier,
		metrics:   metrics.Default(),
		logger:    logger,
		interval:  24 * time.Hour,
		now:       time.Now,
	}
}

// WithInterval overrides the 24h firing interval
func (d *Dispatcher) WithInterval(interval time.Duration) *Dispatcher {
	d.interval = interval
	return d
}

// WithClock overrides the time source
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// ScheduleDose registers the recurring trigger for one dose. The first
// fire is today at the dose time, or tomorrow when that has already
// passed. Registering again for the same dose replaces the prior
// trigger rather than duplicating it.
func (d *Dispatcher) ScheduleDose(medicationID int64, ordinal int, name, timeOfDay string) error {
	hour, minute, err := schedule.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return err
	}

	first := d.nextFire(hour, minute)
	key := RegistrationKey(medicationID, ordinal)
	payload := Payload{MedicationID: medicationID, Name: name, Ordinal: ordinal}

	if err := d.scheduler.Register(key, first, d.interval, payload); err != nil {
		return apperrors.Wrap(err, "SCHED_004", "trigger registration failed")
	}
	d.metrics.RecordTriggerRegistered()

	reg := &store.Registration{
		Key:          key,
		MedicationID: medicationID,
		Ordinal:      ordinal,
		Name:         name,
		NextFire:     first,
		Interval:     d.interval,
	}
	if err := d.store.PutRegistration(reg); err != nil {
		// The trigger itself is registered; a stale ledger only costs a
		// redundant re-registration on the next reschedule.
		d.logger.Warn("failed to record registration", zap.Int64("key", key), zap.Error(err))
	}

	d.logger.Info("dose scheduled",
		zap.Int64("medication_id", medicationID),
		zap.Int("ordinal", ordinal),
		zap.Time("first_fire", first),
	)
	return nil
}

// CancelDose removes a dose's trigger registration; unknown doses are a
// no-op
func (d *Dispatcher) CancelDose(medicationID int64, ordinal int) error {
	key := RegistrationKey(medicationID, ordinal)
	if err := d.scheduler.Cancel(key); err != nil {
		return apperrors.Wrap(err, "SCHED_004", "trigger cancellation failed")
	}
	d.metrics.RecordTriggerCancelled()

	if err := d.store.DeleteRegistration(key); err != nil {
		d.logger.Warn("failed to clear registration", zap.Int64("key", key), zap.Error(err))
	}
	return nil
}

// CancelMedication removes the registrations of every dose of a
// medication
func (d *Dispatcher) CancelMedication(med *store.Medication) {
	for _, dose := range med.Doses {
		if err := d.CancelDose(med.ID, dose.Ordinal); err != nil {
			d.logger.Warn("failed to cancel dose trigger",
				zap.Int64("medication_id", med.ID),
				zap.Int("ordinal", dose.Ordinal),
				zap.Error(err),
			)
		}
	}
}

// RescheduleAll re-derives and re-registers every dose trigger for the
// given medications, and cancels ledger entries that no longer map to a
// dose. Keys are stable, so running this repeatedly converges on one
// registration per dose. Called on startup because the trigger service
// forgets registrations across reboots.
func (d *Dispatcher) RescheduleAll(meds []store.Medication) error {
	expected := make(map[int64]bool)
	var failed int

	for i := range meds {
		med := &meds[i]
		for _, dose := range med.Doses {
			expected[RegistrationKey(med.ID, dose.Ordinal)] = true
			if err := d.ScheduleDose(med.ID, dose.Ordinal, med.Name, dose.TimeOfDay); err != nil {
				// A malformed time skips that dose only
				failed++
				d.logger.Warn("skipping unschedulable dose",
					zap.Int64("medication_id", med.ID),
					zap.Int("ordinal", dose.Ordinal),
					zap.String("time_of_day", dose.TimeOfDay),
					zap.Error(err),
				)
			}
		}
	}

	stale, err := d.store.ListRegistrations()
	if err != nil {
		d.logger.Warn("failed to list registrations for cleanup", zap.Error(err))
	} else {
		for _, reg := range stale {
			if expected[reg.Key] {
				continue
			}
			if err := d.scheduler.Cancel(reg.Key); err != nil {
				d.logger.Warn("failed to cancel stale trigger", zap.Int64("key", reg.Key), zap.Error(err))
				continue
			}
			d.metrics.RecordTriggerCancelled()
			if err := d.store.DeleteRegistration(reg.Key); err != nil {
				d.logger.Warn("failed to clear stale registration", zap.Int64("key", reg.Key), zap.Error(err))
			}
		}
	}

	d.logger.Info("reschedule complete",
		zap.Int("medications", len(meds)),
		zap.Int("skipped_doses", failed),
	)
	return nil
}

// HandleFiring is invoked by the trigger service, possibly more than
// once per logical occurrence. It re-resolves the dose against today and
// surfaces a notification when the dose is still active; it performs no
// state mutation, so redelivery is harmless.
func (d *Dispatcher) HandleFiring(p Payload) {
	today := d.now().Format(schedule.DateLayout)

	med, err := d.store.GetMedication(p.MedicationID)
	if err != nil {
		d.logger.Error("firing lookup failed", zap.Int64("medication_id", p.MedicationID), zap.Error(err))
		return
	}

	var due *store.Dose
	for _, dose := range schedule.ForDate(med, today) {
		if dose.Ordinal == p.Ordinal {
			due = &dose
			break
		}
	}
	if due == nil {
		// The medication was removed or is out of its date range today
		d.metrics.RecordTriggerFired(true)
		d.logger.Debug("suppressing trigger for inactive dose",
			zap.Int64("medication_id", p.MedicationID),
			zap.Int("ordinal", p.Ordinal),
		)
		return
	}
	d.metrics.RecordTriggerFired(false)

	body := p.Name
	if med.DoseText != "" {
		body = fmt.Sprintf("%s (%s)", p.Name, med.DoseText)
	}
	if err := d.notifier.Deliver(uuid.NewString(), "Time for your medication", body); err != nil {
		d.metrics.RecordNotification(false)
		d.logger.Error("notification delivery failed", zap.Int64("medication_id", p.MedicationID), zap.Error(err))
		return
	}
	d.metrics.RecordNotification(true)
}

func (d *Dispatcher) nextFire(hour, minute int) time.Time {
	now := d.now()
	fire := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if fire.Before(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}
