package store

import (
	apperrors "github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/errors"
	"gorm.io/gorm/clause"
)

// MarkTaken records that a dose was taken on a date. The write is an
// upsert on (medication_id, date, ordinal): repeating it is a no-op
// except that taken_at reflects the most recent call (last write wins).
func (s *Store) MarkTaken(medicationID int64, date string, ordinal int, takenAt string) error {
	var count int64
	if err := s.db.Model(&Medication{}).Where("id = ?", medicationID).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "STORE_001", "storage unavailable")
	}
	if count == 0 {
		return apperrors.Wrap(apperrors.ErrMedicationNotFound, "STORE_002", "status references unknown medication")
	}

	rec := DoseStatus{
		MedicationID: medicationID,
		Date:         date,
		Ordinal:      ordinal,
		Taken:        true,
		TakenAt:      takenAt,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "medication_id"}, {Name: "date"}, {Name: "ordinal"}},
		DoUpdates: clause.AssignmentColumns([]string{"taken", "taken_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return apperrors.Wrap(err, "STORE_001", "failed to mark dose taken")
	}
	return nil
}

// IsTaken reports whether the dose was marked taken; absent records
// default to false
func (s *Store) IsTaken(medicationID int64, date string, ordinal int) bool {
	var status DoseStatus
	err := s.db.Where("medication_id = ? AND date = ? AND ordinal = ?", medicationID, date, ordinal).
		First(&status).Error
	if err != nil {
		return false
	}
	return status.Taken
}

// StatusForDate returns the existing status records for a medication on
// a date, keyed by ordinal. Missing ordinals imply not taken.
func (s *Store) StatusForDate(medicationID int64, date string) (map[int]DoseStatus, error) {
	var records []DoseStatus
	err := s.db.Where("medication_id = ? AND date = ?", medicationID, date).Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to load dose statuses")
	}

	byOrdinal := make(map[int]DoseStatus, len(records))
	for _, rec := range records {
		byOrdinal[rec.Ordinal] = rec
	}
	return byOrdinal, nil
}

// CountTakenForDate counts taken records across a user's medications on
// one date
func (s *Store) CountTakenForDate(userID int64, date string) (int64, error) {
	var count int64
	err := s.db.Model(&DoseStatus{}).
		Joins("JOIN medications ON medications.id = dose_statuses.medication_id").
		Where("medications.user_id = ? AND dose_statuses.date = ? AND dose_statuses.taken = ?", userID, date, true).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "STORE_001", "failed to count taken doses")
	}
	return count, nil
}

// CountTakenAll counts taken records across all dates ever recorded
func (s *Store) CountTakenAll(userID int64) (int64, error) {
	var count int64
	err := s.db.Model(&DoseStatus{}).
		Joins("JOIN medications ON medications.id = dose_statuses.medication_id").
		Where("medications.user_id = ? AND dose_statuses.taken = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "STORE_001", "failed to count taken doses")
	}
	return count, nil
}
