package genai

import (
	"fmt"
	"strings"

	"github.com/BasimBashir/caloriewise-ai/internal/calc"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// recentLogs / recentWeights bound how much history the chat context carries.
const (
	recentLogs    = 7
	recentWeights = 10
)

// DescribeProfile serializes the profile for prompt composition.
func DescribeProfile(p *types.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s. Age: %d. Sex: %s. Height: %.0f cm. Weight: %.1f kg.\n",
		p.Name, p.Age, p.Sex, p.HeightCm, p.Weight)
	fmt.Fprintf(&b, "Goal: %s weight, target %.1f kg. Activity multiplier: %.2f.\n",
		p.Goal, p.TargetWeight, p.ActivityMultiplier)
	fmt.Fprintf(&b, "Meals per day: %d. Exercise: %s daily", p.MealsPerDay, p.ExerciseFrequency)
	if len(p.ExerciseTimes) > 0 {
		fmt.Fprintf(&b, " at %s", strings.Join(p.ExerciseTimes, ", "))
	}
	b.WriteString(".")
	if p.ExercisePrefs != "" {
		fmt.Fprintf(&b, " Preferences: %s.", p.ExercisePrefs)
	}
	return b.String()
}

// BuildChatContext composes the system context block for a chat turn:
// profile summary with derived targets, the last few daily logs and weight
// entries, and a workout plan summary.
func BuildChatContext(p *types.Profile, logs []types.DailyLog, weights []types.WeightEntry, plan *types.WorkoutPlan) string {
	var b strings.Builder
	b.WriteString("You are a nutrition and fitness assistant. Answer using the user's data below.\n\n")

	if p != nil {
		b.WriteString("## Profile\n")
		b.WriteString(DescribeProfile(p))
		t := calc.DailyTargets(p)
		fmt.Fprintf(&b, "\nDaily targets: %.0f kcal (%.0fg protein / %.0fg carbs / %.0fg fat).\n\n",
			t.Calories, t.ProteinG, t.CarbsG, t.FatG)
	}

	if len(logs) > 0 {
		b.WriteString("## Recent daily logs\n")
		for _, l := range tailLogs(logs, recentLogs) {
			fmt.Fprintf(&b, "%s: %d meal(s), %.0f kcal (%.0fP/%.0fC/%.0fF)\n",
				l.Date, len(l.Meals), l.TotalNutrition.Calories,
				l.TotalNutrition.Protein, l.TotalNutrition.Carbs, l.TotalNutrition.Fat)
		}
		b.WriteString("\n")
	}

	if len(weights) > 0 {
		b.WriteString("## Recent weight entries\n")
		for _, w := range tailWeights(weights, recentWeights) {
			fmt.Fprintf(&b, "%s: %.1f kg\n", w.Date, w.Weight)
		}
		b.WriteString("\n")
	}

	if plan != nil {
		fmt.Fprintf(&b, "## Workout plan: %s\n%s\n", plan.Name, plan.Description)
		for _, day := range plan.WeeklySchedule {
			fmt.Fprintf(&b, "%s (%s): %d session(s)\n", day.Day, day.Focus, len(day.Sessions))
		}
	}

	return b.String()
}

func tailLogs(logs []types.DailyLog, n int) []types.DailyLog {
	if len(logs) <= n {
		return logs
	}
	return logs[len(logs)-n:]
}

func tailWeights(entries []types.WeightEntry, n int) []types.WeightEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
