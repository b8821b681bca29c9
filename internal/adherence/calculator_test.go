package adherence

import (
	"testing"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCalculator(t *testing.T) (*Calculator, *store.Store) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	st, err := store.New(db, nil, zap.NewNop())
	require.NoError(t, err)

	return NewCalculator(st, zap.NewNop()), st
}

func addMedication(t *testing.T, st *store.Store, userID int64) *store.Medication {
	med := &store.Medication{
		UserID:    userID,
		Name:      "Metformin",
		Frequency: store.FrequencyDaily,
		Doses:     []store.Dose{{TimeOfDay: "08:00"}},
	}
	require.NoError(t, st.CreateMedication(med))
	return med
}

func TestRateForDate_NoMedications(t *testing.T) {
	calc, _ := setupCalculator(t)

	assert.Equal(t, 0.0, calc.RateForDate(1, "2024-01-01"))
}

func TestOverallRate_NoMedications(t *testing.T) {
	calc, _ := setupCalculator(t)

	assert.Equal(t, 0.0, calc.OverallRate(1))
}

func TestRateForDate_HalfTaken(t *testing.T) {
	calc, st := setupCalculator(t)

	med := addMedication(t, st, 7)
	addMedication(t, st, 7)

	require.NoError(t, st.MarkTaken(med.ID, "2024-01-01", 1, "08:05"))

	assert.InDelta(t, 50.0, calc.RateForDate(7, "2024-01-01"), 0.001)
	// A different date has no taken records
	assert.Equal(t, 0.0, calc.RateForDate(7, "2024-01-02"))
}

func TestRateForDate_AllTaken(t *testing.T) {
	calc, st := setupCalculator(t)

	med1 := addMedication(t, st, 7)
	med2 := addMedication(t, st, 7)

	require.NoError(t, st.MarkTaken(med1.ID, "2024-01-01", 1, "08:05"))
	require.NoError(t, st.MarkTaken(med2.ID, "2024-01-01", 1, "08:10"))

	assert.InDelta(t, 100.0, calc.RateForDate(7, "2024-01-01"), 0.001)
}

func TestOverallRate_AccumulatesAcrossDates(t *testing.T) {
	calc, st := setupCalculator(t)

	med := addMedication(t, st, 7)
	addMedication(t, st, 7)

	require.NoError(t, st.MarkTaken(med.ID, "2024-01-01", 1, "08:05"))

	assert.InDelta(t, 50.0, calc.OverallRate(7), 0.001)
}

func TestOverallRate_ClampedAt100(t *testing.T) {
	calc, st := setupCalculator(t)

	med := addMedication(t, st, 7)
	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		require.NoError(t, st.MarkTaken(med.ID, date, 1, "08:05"))
	}

	// Three taken records against one medication stays within bounds
	assert.Equal(t, 100.0, calc.OverallRate(7))
}

func TestRates_IsolatedPerUser(t *testing.T) {
	calc, st := setupCalculator(t)

	med := addMedication(t, st, 7)
	addMedication(t, st, 8)

	require.NoError(t, st.MarkTaken(med.ID, "2024-01-01", 1, "08:05"))

	assert.InDelta(t, 100.0, calc.RateForDate(7, "2024-01-01"), 0.001)
	assert.Equal(t, 0.0, calc.RateForDate(8, "2024-01-01"))
}
