package calc

import (
	"math"
	"time"

	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// Trend summarises the recent weight trajectory.
type Trend struct {
	// SlopePerWeek is the fitted weight change in kg per week.
	SlopePerWeek float64 `json:"slopePerWeek"`
	Direction    string  `json:"direction"`
	// WeeksToTarget projects when the target weight is reached at the current
	// slope; 0 when the trend does not move toward the target.
	WeeksToTarget float64 `json:"weeksToTarget"`
}

// WeightTrend fits a least-squares line through the weight log (assumed
// sorted ascending by date) and projects progress toward targetWeight.
func WeightTrend(entries []types.WeightEntry, targetWeight float64) Trend {
	if len(entries) < 2 {
		return Trend{Direction: "flat"}
	}

	base, err := time.Parse(types.DateLayout, entries[0].Date)
	if err != nil {
		return Trend{Direction: "flat"}
	}

	var sumX, sumY, sumXY, sumX2 float64
	n := 0
	for _, e := range entries {
		d, err := time.Parse(types.DateLayout, e.Date)
		if err != nil {
			continue
		}
		x := d.Sub(base).Hours() / 24
		y := e.Weight
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
		n++
	}
	if n < 2 {
		return Trend{Direction: "flat"}
	}

	denom := (float64(n) * sumX2) - (sumX * sumX)
	if denom == 0 {
		return Trend{Direction: "flat"}
	}
	slopePerDay := ((float64(n) * sumXY) - (sumX * sumY)) / denom
	slopePerWeek := slopePerDay * 7

	direction := "flat"
	if slopePerWeek >= 0.05 {
		direction = "up"
	} else if slopePerWeek <= -0.05 {
		direction = "down"
	}

	trend := Trend{SlopePerWeek: slopePerWeek, Direction: direction}

	current := entries[len(entries)-1].Weight
	remaining := targetWeight - current
	if remaining != 0 && slopePerWeek != 0 && math.Signbit(remaining) == math.Signbit(slopePerWeek) {
		trend.WeeksToTarget = math.Abs(remaining / slopePerWeek)
	}
	return trend
}
