package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Sex is the biological sex used by the energy calculators.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Goal is the user's weight goal.
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// ExerciseFrequency is how many workout sessions the user wants per day.
type ExerciseFrequency string

const (
	FrequencyOnceDaily  ExerciseFrequency = "once"
	FrequencyTwiceDaily ExerciseFrequency = "twice"
)

// Profile holds the user's setup data. RegistrationDate never changes after
// creation; Weight tracks the latest same-day entry in the weight log.
type Profile struct {
	Name               string            `json:"name"`
	Age                int               `json:"age"`
	Sex                Sex               `json:"sex"`
	HeightCm           float64           `json:"heightCm"`
	Weight             float64           `json:"weight"`
	ActivityMultiplier float64           `json:"activityMultiplier"`
	Goal               Goal              `json:"goal"`
	TargetWeight       float64           `json:"targetWeight"`
	MealsPerDay        int               `json:"mealsPerDay"`
	ExercisePrefs      string            `json:"exercisePrefs,omitempty"`
	ExerciseFrequency  ExerciseFrequency `json:"exerciseFrequency"`
	ExerciseTimes      []string          `json:"exerciseTimes,omitempty"`
	RegistrationDate   time.Time         `json:"registrationDate"`
}

// NutritionInfo is the calorie/macro quad shared by foods, meals and logs.
type NutritionInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum of n and other.
func (n NutritionInfo) Add(other NutritionInfo) NutritionInfo {
	return NutritionInfo{
		Calories: n.Calories + other.Calories,
		Protein:  n.Protein + other.Protein,
		Carbs:    n.Carbs + other.Carbs,
		Fat:      n.Fat + other.Fat,
	}
}

// FoodItem is one identified food within a meal.
type FoodItem struct {
	Name      string        `json:"name"`
	Nutrition NutritionInfo `json:"nutrition"`
}

// Meal is immutable once added; it is removed only by a full reset.
type Meal struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Timestamp      time.Time     `json:"timestamp"`
	Foods          []FoodItem    `json:"foods"`
	TotalNutrition NutritionInfo `json:"totalNutrition"`
	ImageRef       string        `json:"imageRef,omitempty"`
}

// DailyLog collects the meals for one calendar date (format DateLayout).
// TotalNutrition is derived from Meals and must always equal their sum.
type DailyLog struct {
	Date           string        `json:"date"`
	Meals          []Meal        `json:"meals"`
	TotalNutrition NutritionInfo `json:"totalNutrition"`
	Weight         *float64      `json:"weight,omitempty"`
}

// Recalculate rederives TotalNutrition from Meals.
func (d *DailyLog) Recalculate() {
	var total NutritionInfo
	for _, m := range d.Meals {
		total = total.Add(m.TotalNutrition)
	}
	d.TotalNutrition = total
}

// DateLayout is the calendar-date key format for daily logs and weight entries.
const DateLayout = "2006-01-02"

// WeightEntry is one dated weight measurement.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// WorkoutDetail is a named parameter on an exercise (e.g. Weight, Incline).
type WorkoutDetail struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Workout is a single exercise inside a session. Sets and Reps are dedicated
// fields; Details carries the residual named parameters.
type Workout struct {
	Exercise string          `json:"exercise"`
	Sets     string          `json:"sets"`
	Reps     string          `json:"reps"`
	Notes    string          `json:"notes,omitempty"`
	Details  []WorkoutDetail `json:"details,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// WorkoutSession is one block of exercises within a day.
type WorkoutSession struct {
	Name     string    `json:"name"`
	Workouts []Workout `json:"workouts"`
}

// DailyWorkout is one labelled day of the weekly schedule.
type DailyWorkout struct {
	Day      string           `json:"day"`
	Focus    string           `json:"focus"`
	Sessions []WorkoutSession `json:"sessions"`
}

// WorkoutPlan is the AI-generated weekly plan. It is edited in place by the
// user and replaced wholesale on regeneration.
type WorkoutPlan struct {
	Name           string         `json:"planName"`
	Description    string         `json:"description"`
	WeeklySchedule []DailyWorkout `json:"weeklySchedule"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// GroundingCitation is a source link attached to web-grounded answers.
type GroundingCitation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatMessage is one turn in a chat session. The model placeholder inserted
// at send time keeps its ID across every streamed mutation.
type ChatMessage struct {
	ID        string              `json:"id"`
	Role      ChatRole            `json:"role"`
	Parts     []string            `json:"parts"`
	Timestamp time.Time           `json:"timestamp"`
	Citations []GroundingCitation `json:"citations,omitempty"`
}

// Text returns the concatenated message parts.
func (m ChatMessage) Text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0]
	}
	out := ""
	for _, p := range m.Parts {
		out += p
	}
	return out
}

// ChatSession is one conversation thread.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Snapshot is the whole-state aggregate mirrored to the document store.
type Snapshot struct {
	Profile             *Profile      `json:"userProfile"`
	DailyLogs           []DailyLog    `json:"dailyLogs"`
	WorkoutPlan         *WorkoutPlan  `json:"workoutPlan"`
	WeightLog           []WeightEntry `json:"weightLog"`
	ChatSessions        []ChatSession `json:"chatSessions"`
	ActiveChatSessionID string        `json:"activeChatSessionId"`
}

// Empty reports whether the snapshot carries no user data at all.
func (s Snapshot) Empty() bool {
	return s.Profile == nil && len(s.DailyLogs) == 0 && s.WorkoutPlan == nil &&
		len(s.WeightLog) == 0 && len(s.ChatSessions) == 0
}
