package types

import (
	"fmt"
	"math"
	"time"
)

// ------------------------------
// Shared Errors
// ------------------------------

// ErrNotFound is returned when no document exists for an identity yet.
var ErrNotFound = fmt.Errorf("snapshot not found")

// ------------------------------
// Validation helpers
// ------------------------------

// ValidateIDPresent rejects empty identifiers before any network call.
func ValidateIDPresent(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	return nil
}

// ValidateWeight rejects non-finite or non-positive weights. NaN or Inf in the
// snapshot cannot be encoded to JSON, so it must never get past the boundary.
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("weight must be a finite number")
	}
	if w <= 0 {
		return fmt.Errorf("weight must be positive")
	}
	return nil
}

// ValidateDate rejects date strings not in DateLayout form. Log ordering and
// the today comparison both rely on the zero-padded layout.
func ValidateDate(date string) error {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("date must be in %s form: %w", DateLayout, err)
	}
	if t.Format(DateLayout) != date {
		return fmt.Errorf("date must be in %s form", DateLayout)
	}
	return nil
}

// ValidateProfile enforces the required fields for profile creation. Per-step
// completeness is the presentation layer's job; this is the final gate before
// the initial snapshot is committed.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Age <= 0 {
		return fmt.Errorf("profile age must be positive")
	}
	if p.Sex != SexMale && p.Sex != SexFemale {
		return fmt.Errorf("profile sex must be %q or %q", SexMale, SexFemale)
	}
	if p.HeightCm <= 0 {
		return fmt.Errorf("profile height must be positive")
	}
	if err := ValidateWeight(p.Weight); err != nil {
		return fmt.Errorf("profile %w", err)
	}
	if p.ActivityMultiplier <= 0 {
		return fmt.Errorf("profile activity multiplier must be positive")
	}
	switch p.Goal {
	case GoalLose, GoalMaintain, GoalGain:
	default:
		return fmt.Errorf("profile goal must be lose, maintain or gain")
	}
	if p.MealsPerDay <= 0 {
		return fmt.Errorf("profile meals per day must be positive")
	}
	switch p.ExerciseFrequency {
	case FrequencyOnceDaily, FrequencyTwiceDaily:
	default:
		return fmt.Errorf("profile exercise frequency must be once or twice")
	}
	return nil
}
