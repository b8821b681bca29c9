// Package adherence aggregates dose status records into percentage
// statistics. All computations degrade to 0 rather than fail.
package adherence

import (
	"math"

	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"go.uber.org/zap"
)

// Calculator computes adherence rates from the dose state store
type Calculator struct {
	store  *store.Store
	logger *zap.Logger
}

func NewCalculator(st *store.Store, logger *zap.Logger) *Calculator {
	return &Calculator{store: st, logger: logger}
}

// RateForDate returns the percentage of the user's medications marked
// taken on the date, in [0, 100].
//
// The denominator is the user's full medication count, not the doses
// actually due that date. That matches the historical behavior the rest
// of the system was built around; see DESIGN.md for the tradeoff.
func (c *Calculator) RateForDate(userID int64, date string) float64 {
	total, err := c.store.CountMedications(userID)
	if err != nil {
		c.logger.Warn("adherence rate unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return 0
	}
	if total == 0 {
		return 0
	}

	taken, err := c.store.CountTakenForDate(userID, date)
	if err != nil {
		c.logger.Warn("adherence rate unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return 0
	}

	return normalize(float64(taken) / float64(total) * 100)
}

// OverallRate returns taken records across all recorded dates relative
// to the user's medication count, in [0, 100]. With long histories this
// exceeds neither bound only because it is clamped; the raw ratio is a
// running tally, not a per-day average.
func (c *Calculator) OverallRate(userID int64) float64 {
	total, err := c.store.CountMedications(userID)
	if err != nil {
		c.logger.Warn("overall adherence unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return 0
	}
	if total == 0 {
		return 0
	}

	taken, err := c.store.CountTakenAll(userID)
	if err != nil {
		c.logger.Warn("overall adherence unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return 0
	}

	return normalize(float64(taken) / float64(total) * 100)
}

func normalize(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}
