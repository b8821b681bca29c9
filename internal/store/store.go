package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/config"
	apperrors "github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/errors"
	"github.com/dgraph-io/badger/v4"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides unified access to SQLite (relational state) and
// BadgerDB (the dispatcher's registration ledger)
type Store struct {
	db     *gorm.DB
	badger *badger.DB
	logger *zap.Logger
}

// Open creates a Store from configuration, opening both databases
func Open(cfg *config.Config, log *zap.Logger) (*Store, error) {
	sqliteDB, err := sql.Open("sqlite", cfg.Storage.SQLitePath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	badgerOpts := badger.DefaultOptions(cfg.Storage.BadgerPath).
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithCompactL0OnClose(true).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(16 << 20)

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return New(db, badgerDB, log)
}

// New creates a Store over already-open databases and migrates schemas
func New(db *gorm.DB, badgerDB *badger.DB, log *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(
		&User{},
		&Medication{},
		&Dose{},
		&DoseStatus{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Store{
		db:     db,
		badger: badgerDB,
		logger: log,
	}, nil
}

// Close closes all database connections
func (s *Store) Close() error {
	if s.badger != nil {
		return s.badger.Close()
	}
	return nil
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ==================== User Methods ====================

// CreateUser inserts a new user; the email must be unused
func (s *Store) CreateUser(user *User) error {
	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "STORE_001", "storage unavailable")
	}
	if count > 0 {
		return apperrors.ErrEmailTaken
	}
	if err := s.db.Create(user).Error; err != nil {
		return apperrors.Wrap(err, "STORE_001", "failed to create user")
	}
	return nil
}

// FindUserByEmail returns nil when no user matches
func (s *Store) FindUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to find user")
	}
	return &user, nil
}

// FindUserByID returns nil when no user matches
func (s *Store) FindUserByID(id int64) (*User, error) {
	var user User
	err := s.db.First(&user, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to find user")
	}
	return &user, nil
}

// ==================== Medication Methods ====================

// CreateMedication inserts a medication with its doses. Ordinals are
// renumbered densely from 1 in the given order, and the date range is
// validated when both bounds are present.
func (s *Store) CreateMedication(med *Medication) error {
	if med.Name == "" || len(med.Doses) == 0 {
		return apperrors.ErrMedicationInvalid
	}
	if med.StartDate != nil && med.EndDate != nil && *med.EndDate < *med.StartDate {
		return apperrors.New("MED_002", "end date precedes start date")
	}
	if med.Frequency == "" {
		med.Frequency = FrequencyDaily
	}

	for i := range med.Doses {
		med.Doses[i].Ordinal = i + 1
	}

	if err := s.db.Create(med).Error; err != nil {
		return apperrors.Wrap(err, "STORE_001", "failed to create medication")
	}
	return nil
}

// GetMedication retrieves a medication with its doses, nil when absent
func (s *Store) GetMedication(id int64) (*Medication, error) {
	var med Medication
	err := s.db.Preload("Doses", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).First(&med, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to get medication")
	}
	return &med, nil
}

// GetMedicationsForUser lists a user's medications with doses, ordered
// by the first dose time the way the original day list was
func (s *Store) GetMedicationsForUser(userID int64) ([]Medication, error) {
	var meds []Medication
	err := s.db.Preload("Doses", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).Where("user_id = ?", userID).Order("id ASC").Find(&meds).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to list medications")
	}
	return meds, nil
}

// MedicationsForDate returns the user's medications joined with their
// first-dose status for the date. The medication list itself is not
// date-filtered here; day applicability is the schedule resolver's job.
func (s *Store) MedicationsForDate(userID int64, date string) ([]DayEntry, error) {
	meds, err := s.GetMedicationsForUser(userID)
	if err != nil {
		return nil, err
	}

	entries := make([]DayEntry, 0, len(meds))
	for _, med := range meds {
		entry := DayEntry{Medication: med}

		var status DoseStatus
		err := s.db.Where("medication_id = ? AND date = ? AND ordinal = ?", med.ID, date, 1).
			First(&status).Error
		if err == nil {
			entry.Taken = status.Taken
			entry.TakenAt = status.TakenAt
		} else if err != gorm.ErrRecordNotFound {
			return nil, apperrors.Wrap(err, "STORE_001", "failed to load dose status")
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// AllMedications lists every medication with doses, used for
// restart-time trigger rescheduling
func (s *Store) AllMedications() ([]Medication, error) {
	var meds []Medication
	err := s.db.Preload("Doses", func(db *gorm.DB) *gorm.DB {
		return db.Order("ordinal ASC")
	}).Order("id ASC").Find(&meds).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to list medications")
	}
	return meds, nil
}

// DeleteMedication removes a medication, cascading doses and statuses
func (s *Store) DeleteMedication(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medication_id = ?", id).Delete(&DoseStatus{}).Error; err != nil {
			return apperrors.Wrap(err, "STORE_001", "failed to delete dose statuses")
		}
		if err := tx.Where("medication_id = ?", id).Delete(&Dose{}).Error; err != nil {
			return apperrors.Wrap(err, "STORE_001", "failed to delete doses")
		}
		if err := tx.Delete(&Medication{}, "id = ?", id).Error; err != nil {
			return apperrors.Wrap(err, "STORE_001", "failed to delete medication")
		}
		return nil
	})
}

// CountMedications returns how many medications a user has
func (s *Store) CountMedications(userID int64) (int64, error) {
	var count int64
	err := s.db.Model(&Medication{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "STORE_001", "failed to count medications")
	}
	return count, nil
}
