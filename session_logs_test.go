package caloriewise

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

func sessionWithProfile(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	st := newFakeStore()
	s := newTestSession(t, st, &fakeAI{plan: testPlan()})
	require.NoError(t, s.SignIn(context.Background(), "user-1"))
	require.NoError(t, s.CreateProfile(context.Background(), testProfile()))
	return s, st
}

func meal(name string, cal, protein, carbs, fat float64) types.Meal {
	return types.Meal{
		Name: name,
		Foods: []types.FoodItem{{
			Name:      name,
			Nutrition: types.NutritionInfo{Calories: cal, Protein: protein, Carbs: carbs, Fat: fat},
		}},
		TotalNutrition: types.NutritionInfo{Calories: cal, Protein: protein, Carbs: carbs, Fat: fat},
	}
}

func TestAddMeal_AggregateInvariant(t *testing.T) {
	s, _ := sessionWithProfile(t)

	require.NoError(t, s.AddMeal("2025-06-15", meal("Oats", 350, 12, 60, 6)))
	require.NoError(t, s.AddMeal("2025-06-15", meal("Chicken", 420, 45, 5, 18)))
	require.NoError(t, s.AddMeal("2025-06-14", meal("Pasta", 600, 20, 90, 15)))

	snap := s.Snapshot()
	for _, log := range snap.DailyLogs {
		var sum types.NutritionInfo
		for _, m := range log.Meals {
			sum = sum.Add(m.TotalNutrition)
		}
		assert.Equal(t, sum, log.TotalNutrition, "log %s total must equal meal sum", log.Date)
	}

	// Two logs, meals in insertion order within a day.
	require.Len(t, snap.DailyLogs, 2)
	today := snap.DailyLogs[1]
	require.Equal(t, "2025-06-15", today.Date)
	require.Len(t, today.Meals, 2)
	assert.Equal(t, "Oats", today.Meals[0].Name)
	assert.Equal(t, "Chicken", today.Meals[1].Name)
	assert.InDelta(t, 770, today.TotalNutrition.Calories, 0.001)
}

func TestAddMeal_AssignsIDAndTimestamp(t *testing.T) {
	s, _ := sessionWithProfile(t)
	require.NoError(t, s.AddMeal("2025-06-15", meal("Oats", 350, 12, 60, 6)))

	got := s.Snapshot().DailyLogs
	m := got[len(got)-1].Meals[0]
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, testNow, m.Timestamp)
}

func TestAddWeightEntry_OrderingInvariant(t *testing.T) {
	s, _ := sessionWithProfile(t)

	// Insert out of order; history must be ascending after every call.
	for _, e := range []struct {
		date string
		kg   float64
	}{
		{"2025-06-10", 82.5},
		{"2025-06-01", 83.4},
		{"2025-06-12", 82.1},
		{"2025-06-05", 83.0},
	} {
		require.NoError(t, s.AddWeightEntry(e.date, e.kg))
		log := s.Snapshot().WeightLog
		assert.True(t, sort.SliceIsSorted(log, func(i, j int) bool {
			return log[i].Date < log[j].Date
		}), "weight log must stay sorted after adding %s", e.date)
	}
}

func TestAddWeightEntry_CurrentWeightRule(t *testing.T) {
	s, _ := sessionWithProfile(t)
	require.InDelta(t, 82, s.Snapshot().Profile.Weight, 0.001)

	// Today's entry updates the profile weight.
	require.NoError(t, s.AddWeightEntry("2025-06-15", 72))
	assert.InDelta(t, 72, s.Snapshot().Profile.Weight, 0.001)

	// A past entry never does.
	require.NoError(t, s.AddWeightEntry("2025-06-08", 68))
	assert.InDelta(t, 72, s.Snapshot().Profile.Weight, 0.001)
}

func TestAddWeightEntry_RejectsNonFiniteWeight(t *testing.T) {
	s, st := sessionWithProfile(t)
	require.NoError(t, s.AddWeightEntry("2025-06-13", 81.2))
	savesBefore := st.saveCalls

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -3} {
		require.Error(t, s.AddWeightEntry("2025-06-14", bad))
	}

	// The rejected value must neither enter the snapshot nor reach the store:
	// a null merge for weightLog would erase the remote history.
	assert.Equal(t, savesBefore, st.saveCalls)
	for _, e := range s.Snapshot().WeightLog {
		assert.False(t, math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0))
	}
	doc := st.docs["user-1"]["weightLog"]
	require.NotNil(t, doc, "remote weight history must survive a rejected entry")
	assert.NotEmpty(t, doc)
}

func TestLogDates_RejectMalformedDates(t *testing.T) {
	s, st := sessionWithProfile(t)
	savesBefore := st.saveCalls

	for _, bad := range []string{"2025-6-1", "15-06-2025", "2025/06/15", "today", ""} {
		assert.Error(t, s.AddMeal(bad, meal("Oats", 350, 12, 60, 6)), "date %q", bad)
		assert.Error(t, s.AddWeightEntry(bad, 80), "date %q", bad)
		_, err := s.AnalyzeAndAddMeal(context.Background(), bad, []byte("img"), "image/jpeg", "Lunch", "")
		assert.Error(t, err, "date %q", bad)
	}

	snap := s.Snapshot()
	assert.Empty(t, snap.DailyLogs)
	assert.Len(t, snap.WeightLog, 1) // registration entry only
	assert.Equal(t, savesBefore, st.saveCalls)
}

func TestAddWeightEntry_UpsertsDailyLogWeight(t *testing.T) {
	s, _ := sessionWithProfile(t)

	// No log for the date yet: an empty-meals log is created.
	require.NoError(t, s.AddWeightEntry("2025-06-13", 81.2))
	snap := s.Snapshot()
	var found bool
	for _, log := range snap.DailyLogs {
		if log.Date == "2025-06-13" {
			found = true
			require.NotNil(t, log.Weight)
			assert.InDelta(t, 81.2, *log.Weight, 0.001)
			assert.Empty(t, log.Meals)
		}
	}
	require.True(t, found, "expected a daily log for the weight date")
}

func TestAnalyzeAndAddMeal(t *testing.T) {
	st := newFakeStore()
	ai := &fakeAI{
		plan: testPlan(),
		analysis: &MealAnalysis{
			Foods: []types.FoodItem{
				{Name: "Rice", Nutrition: types.NutritionInfo{Calories: 206, Protein: 4, Carbs: 45, Fat: 0}},
				{Name: "Salmon", Nutrition: types.NutritionInfo{Calories: 280, Protein: 39, Carbs: 0, Fat: 13}},
			},
			TotalNutrition: types.NutritionInfo{Calories: 486, Protein: 43, Carbs: 45, Fat: 13},
		},
	}
	s := newTestSession(t, st, ai)
	require.NoError(t, s.SignIn(context.Background(), "user-1"))
	require.NoError(t, s.CreateProfile(context.Background(), testProfile()))

	m, err := s.AnalyzeAndAddMeal(context.Background(), "2025-06-15", []byte("img"), "image/jpeg", "Dinner", "")
	require.NoError(t, err)
	assert.Equal(t, "Dinner", m.Name)
	assert.Len(t, m.Foods, 2)

	logs := s.Snapshot().DailyLogs
	last := logs[len(logs)-1]
	require.Len(t, last.Meals, 1)
	assert.InDelta(t, 486, last.TotalNutrition.Calories, 0.001)
}

func TestTargetsAndTrend(t *testing.T) {
	s, _ := sessionWithProfile(t)

	targets, err := s.Targets()
	require.NoError(t, err)
	assert.Greater(t, targets.Calories, 0.0)
	assert.Greater(t, targets.ProteinG, 0.0)

	require.NoError(t, s.AddWeightEntry("2025-06-08", 83))
	require.NoError(t, s.AddWeightEntry("2025-06-15", 82))
	trend, err := s.WeightTrend()
	require.NoError(t, err)
	assert.Equal(t, "down", trend.Direction)
}
