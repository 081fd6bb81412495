package caloriewise

import (
	"github.com/BasimBashir/caloriewise-ai/internal/calc"
	"github.com/BasimBashir/caloriewise-ai/internal/genai"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// Public type aliases so SDK consumers can import only this package.

// Domain entities
type (
	Profile           = types.Profile
	NutritionInfo     = types.NutritionInfo
	FoodItem          = types.FoodItem
	Meal              = types.Meal
	DailyLog          = types.DailyLog
	WeightEntry       = types.WeightEntry
	WorkoutDetail     = types.WorkoutDetail
	Workout           = types.Workout
	WorkoutSession    = types.WorkoutSession
	DailyWorkout      = types.DailyWorkout
	WorkoutPlan       = types.WorkoutPlan
	ChatRole          = types.ChatRole
	ChatMessage       = types.ChatMessage
	ChatSession       = types.ChatSession
	GroundingCitation = types.GroundingCitation
	StateSnapshot     = types.Snapshot
)

// Derived values
type (
	Targets     = calc.Targets
	WeightTrend = calc.Trend
)

// AI content
type (
	MealAnalysis = genai.MealAnalysis
	ChatChunk    = genai.Chunk
)

// Enum re-exports
const (
	SexMale   = types.SexMale
	SexFemale = types.SexFemale

	GoalLose     = types.GoalLose
	GoalMaintain = types.GoalMaintain
	GoalGain     = types.GoalGain

	FrequencyOnceDaily  = types.FrequencyOnceDaily
	FrequencyTwiceDaily = types.FrequencyTwiceDaily

	RoleUser  = types.RoleUser
	RoleModel = types.RoleModel
)
