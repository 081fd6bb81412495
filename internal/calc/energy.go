// Package calc holds the pure domain calculators: energy and macro targets
// derived from a profile, and weight-trend projections from the weight log.
package calc

import (
	"math"

	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// Targets are the derived daily energy and macro goals for a profile.
type Targets struct {
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
}

// goalAdjustment is the daily calorie delta applied for lose/gain goals,
// roughly 0.5 kg of body weight per week.
const goalAdjustment = 500

// DailyTargets derives the calorie target and a 30/40/30 macro split from the
// profile using the Mifflin-St Jeor equation.
func DailyTargets(p *types.Profile) Targets {
	bmr := 10*p.Weight + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == types.SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * p.ActivityMultiplier

	calories := tdee
	switch p.Goal {
	case types.GoalLose:
		calories -= goalAdjustment
	case types.GoalGain:
		calories += goalAdjustment
	}
	// Never target below a minimal safe intake.
	calories = math.Max(calories, 1200)

	return Targets{
		BMR:      math.Round(bmr),
		TDEE:     math.Round(tdee),
		Calories: math.Round(calories),
		ProteinG: math.Round(calories * 0.30 / 4),
		CarbsG:   math.Round(calories * 0.40 / 4),
		FatG:     math.Round(calories * 0.30 / 9),
	}
}
