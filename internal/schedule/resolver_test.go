package schedule

import (
	"testing"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func twiceDaily() *store.Medication {
	return &store.Medication{
		ID:        1,
		Name:      "Lisinopril",
		Frequency: store.FrequencyDaily,
		Doses: []store.Dose{
			{Ordinal: 1, TimeOfDay: "08:00"},
			{Ordinal: 2, TimeOfDay: "20:00"},
		},
	}
}

func TestForDate_NoBounds_AllDosesOrdered(t *testing.T) {
	med := twiceDaily()
	// Doses stored out of time order still resolve ascending
	med.Doses = []store.Dose{
		{Ordinal: 1, TimeOfDay: "20:00"},
		{Ordinal: 2, TimeOfDay: "08:00"},
	}

	for _, date := range []string{"2024-01-01", "2024-06-15", "2030-12-31"} {
		doses := ForDate(med, date)
		require.Len(t, doses, 2, "date %s", date)
		assert.Equal(t, "08:00", doses[0].TimeOfDay)
		assert.Equal(t, "20:00", doses[1].TimeOfDay)
	}
}

func TestForDate_Scenario_TwoDoses(t *testing.T) {
	doses := ForDate(twiceDaily(), "2024-01-01")

	require.Len(t, doses, 2)
	assert.Equal(t, 1, doses[0].Ordinal)
	assert.Equal(t, "08:00", doses[0].TimeOfDay)
	assert.Equal(t, 2, doses[1].Ordinal)
	assert.Equal(t, "20:00", doses[1].TimeOfDay)
}

func TestForDate_OutsideRange(t *testing.T) {
	med := twiceDaily()
	med.StartDate = strPtr("2024-01-10")
	med.EndDate = strPtr("2024-01-20")

	assert.Empty(t, ForDate(med, "2024-01-09"))
	assert.Empty(t, ForDate(med, "2024-01-21"))
	assert.Len(t, ForDate(med, "2024-01-10"), 2)
	assert.Len(t, ForDate(med, "2024-01-20"), 2)
}

func TestForDate_Weekly(t *testing.T) {
	med := twiceDaily()
	med.Frequency = store.FrequencyWeekly
	med.StartDate = strPtr("2024-01-01") // a Monday

	assert.Len(t, ForDate(med, "2024-01-01"), 2)
	assert.Empty(t, ForDate(med, "2024-01-02"))
	assert.Empty(t, ForDate(med, "2024-01-07"))
	assert.Len(t, ForDate(med, "2024-01-08"), 2)
	assert.Len(t, ForDate(med, "2024-02-05"), 2)
}

func TestForDate_Monthly(t *testing.T) {
	med := twiceDaily()
	med.Frequency = store.FrequencyMonthly
	med.StartDate = strPtr("2024-01-15")

	assert.Len(t, ForDate(med, "2024-01-15"), 2)
	assert.Empty(t, ForDate(med, "2024-01-16"))
	assert.Len(t, ForDate(med, "2024-02-15"), 2)
	assert.Len(t, ForDate(med, "2024-03-15"), 2)
}

func TestForDate_WeeklyWithoutStart_BehavesDaily(t *testing.T) {
	med := twiceDaily()
	med.Frequency = store.FrequencyWeekly

	assert.Len(t, ForDate(med, "2024-01-01"), 2)
	assert.Len(t, ForDate(med, "2024-01-02"), 2)
}

func TestForDate_DegradesToEmpty(t *testing.T) {
	assert.Empty(t, ForDate(nil, "2024-01-01"))
	assert.Empty(t, ForDate(&store.Medication{Name: "NoDoses"}, "2024-01-01"))
	assert.Empty(t, ForDate(twiceDaily(), "not-a-date"))
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, err := ParseTimeOfDay("07:30")
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 30, minute)

	_, _, err = ParseTimeOfDay("7 am")
	assert.Error(t, err)

	_, _, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-02-29")
	require.NoError(t, err)

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)
}
