package store

import (
	"time"
)

// Medication frequency values
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// User represents an account that owns medications
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Medication represents a recurring medication with its dose schedule.
// Dates are stored as YYYY-MM-DD strings in the device's local time,
// times as HH:MM 24h wall clock.
type Medication struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	UserID    int64   `gorm:"index;not null" json:"user_id"`
	Name      string  `gorm:"not null" json:"name"`
	DoseText  string  `json:"dose_text,omitempty"`
	Frequency string  `gorm:"not null" json:"frequency"` // daily, weekly, monthly
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	Doses []Dose `gorm:"foreignKey:MedicationID;constraint:OnDelete:CASCADE" json:"doses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dose is one scheduled intake of a medication. Ordinals are dense and
// 1-based within a medication.
type Dose struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	MedicationID int64  `gorm:"uniqueIndex:idx_dose_ordinal" json:"medication_id"`
	Ordinal      int    `gorm:"uniqueIndex:idx_dose_ordinal" json:"ordinal"`
	TimeOfDay    string `gorm:"not null" json:"time_of_day"` // HH:MM
}

// DoseStatus records whether a dose was taken on a date. One logical
// record per (medication, date, ordinal); writes replace on conflict.
type DoseStatus struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	MedicationID int64  `gorm:"uniqueIndex:idx_status_key" json:"medication_id"`
	Date         string `gorm:"uniqueIndex:idx_status_key" json:"date"` // YYYY-MM-DD
	Ordinal      int    `gorm:"uniqueIndex:idx_status_key" json:"ordinal"`
	Taken        bool   `json:"taken"`
	TakenAt      string `json:"taken_at,omitempty"` // HH:MM, empty when untaken

	UpdatedAt time.Time `json:"updated_at"`
}

// DayEntry is a medication joined with its first-dose status for a date,
// the shape the daily overview consumes.
type DayEntry struct {
	Medication Medication `json:"medication"`
	Taken      bool       `json:"taken"`
	TakenAt    string     `json:"taken_at,omitempty"`
}

// Registration is the dispatcher's persisted record of a trigger
// registration, kept so restarts can reconcile instead of re-guess.
type Registration struct {
	Key          int64         `json:"key"`
	MedicationID int64         `json:"medication_id"`
	Ordinal      int           `json:"ordinal"`
	Name         string        `json:"name"`
	NextFire     time.Time     `json:"next_fire"`
	Interval     time.Duration `json:"interval"`
}
