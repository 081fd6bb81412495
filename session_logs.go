package caloriewise

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/BasimBashir/caloriewise-ai/internal/calc"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// AddMeal appends a meal to the daily log for date (format types.DateLayout),
// creating the log if needed, and rederives the log's nutrition total from
// its meals. Meals are immutable once added.
func (s *Session) AddMeal(date string, meal types.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated {
		return ErrNoIdentity
	}
	if err := types.ValidateDate(date); err != nil {
		return err
	}
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.Timestamp.IsZero() {
		meal.Timestamp = s.now()
	}

	log := s.logFor(date)
	log.Meals = append(log.Meals, meal)
	log.Recalculate()

	s.persist(fieldDailyLogs)
	return nil
}

// AnalyzeAndAddMeal runs the meal-photo analysis and logs the result for date
// under the declared meal type. Analysis failures propagate to the caller;
// nothing is logged in that case.
func (s *Session) AnalyzeAndAddMeal(ctx context.Context, date string, image []byte, mimeType, mealType, note string) (*types.Meal, error) {
	if err := types.ValidateDate(date); err != nil {
		return nil, err
	}
	analysis, err := s.ai.AnalyzeMeal(ctx, image, mimeType, mealType, note)
	if err != nil {
		return nil, err
	}
	meal := types.Meal{
		ID:             uuid.NewString(),
		Name:           mealType,
		Timestamp:      s.now(),
		Foods:          analysis.Foods,
		TotalNutrition: analysis.TotalNutrition,
	}
	if err := s.AddMeal(date, meal); err != nil {
		return nil, err
	}
	return &meal, nil
}

// AddWeightEntry records a weight for date and re-sorts the weight log so it
// stays ascending by date no matter the insertion order. An entry for today
// also updates the profile's current weight; past dates never do. The weight
// is additionally mirrored onto the daily log for that date.
func (s *Session) AddWeightEntry(date string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated {
		return ErrNoIdentity
	}
	if err := types.ValidateDate(date); err != nil {
		return err
	}
	if err := types.ValidateWeight(weight); err != nil {
		return err
	}

	s.snap.WeightLog = append(s.snap.WeightLog, types.WeightEntry{Date: date, Weight: weight})
	sort.SliceStable(s.snap.WeightLog, func(i, j int) bool {
		return s.snap.WeightLog[i].Date < s.snap.WeightLog[j].Date
	})

	fields := []string{fieldWeightLog, fieldDailyLogs}
	if s.snap.Profile != nil && date == s.now().Format(types.DateLayout) {
		s.snap.Profile.Weight = weight
		fields = append(fields, fieldProfile)
	}

	w := weight
	s.logFor(date).Weight = &w

	s.persist(fields...)
	return nil
}

// logFor returns the daily log for date, creating and inserting an empty one
// if none exists. Logs are kept sorted ascending by date. Caller holds s.mu.
func (s *Session) logFor(date string) *types.DailyLog {
	for i := range s.snap.DailyLogs {
		if s.snap.DailyLogs[i].Date == date {
			return &s.snap.DailyLogs[i]
		}
	}
	s.snap.DailyLogs = append(s.snap.DailyLogs, types.DailyLog{Date: date})
	sort.SliceStable(s.snap.DailyLogs, func(i, j int) bool {
		return s.snap.DailyLogs[i].Date < s.snap.DailyLogs[j].Date
	})
	for i := range s.snap.DailyLogs {
		if s.snap.DailyLogs[i].Date == date {
			return &s.snap.DailyLogs[i]
		}
	}
	// Unreachable: the log was just inserted.
	return &s.snap.DailyLogs[len(s.snap.DailyLogs)-1]
}

// Targets returns the derived daily energy and macro goals.
func (s *Session) Targets() (calc.Targets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Profile == nil {
		return calc.Targets{}, ErrNoProfile
	}
	return calc.DailyTargets(s.snap.Profile), nil
}

// WeightTrend returns the fitted recent weight trajectory and the projected
// weeks to target.
func (s *Session) WeightTrend() (calc.Trend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Profile == nil {
		return calc.Trend{}, ErrNoProfile
	}
	return calc.WeightTrend(s.snap.WeightLog, s.snap.Profile.TargetWeight), nil
}
