package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasimBashir/caloriewise-ai/internal/faults"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// textResponse wraps text as a single-candidate generateContent response.
func textResponse(text string) string {
	raw, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	})
	return string(raw)
}

func TestAnalyzeMeal(t *testing.T) {
	var gotReq generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(textResponse(
			`{"foods":[{"name":"Rice","nutrition":{"calories":206,"protein":4,"carbs":45,"fat":0}}],` +
				`"totalNutrition":{"calories":206,"protein":4,"carbs":45,"fat":0}}`)))
	}))
	defer server.Close()

	c := New(server.URL, "secret", "test-model", server.Client())
	analysis, err := c.AnalyzeMeal(context.Background(), []byte("img-bytes"), "image/jpeg", "Lunch", "no sauce")
	require.NoError(t, err)
	require.Len(t, analysis.Foods, 1)
	assert.Equal(t, "Rice", analysis.Foods[0].Name)
	assert.InDelta(t, 206, analysis.TotalNutrition.Calories, 0.001)

	// The photo goes out as inline base64 with the declared mime type, and the
	// structured output mode is requested.
	require.Len(t, gotReq.Contents, 1)
	parts := gotReq.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img-bytes")), parts[0].InlineData.Data)
	assert.Contains(t, parts[1].Text, "Lunch")
	assert.Contains(t, parts[1].Text, "no sauce")
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
}

func TestAnalyzeMeal_EmptyResponseIsContentSafety(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, "secret", "test-model", server.Client())
	_, err := c.AnalyzeMeal(context.Background(), []byte("x"), "image/png", "Dinner", "")
	require.Error(t, err)
	assert.Equal(t, faults.KindContentSafety, faults.KindOf(err))
}

func TestAnalyzeMeal_FencedJSONAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n{\"foods\":[],\"totalNutrition\":{\"calories\":0,\"protein\":0,\"carbs\":0,\"fat\":0}}\n```"
		_, _ = w.Write([]byte(textResponse(fenced)))
	}))
	defer server.Close()

	c := New(server.URL, "secret", "test-model", server.Client())
	analysis, err := c.AnalyzeMeal(context.Background(), []byte("x"), "image/png", "Snack", "")
	require.NoError(t, err)
	assert.Empty(t, analysis.Foods)
}

func TestGenerate_MissingKey(t *testing.T) {
	c := New("http://unused.invalid", "", "test-model", http.DefaultClient)
	_, err := c.AnalyzeMeal(context.Background(), []byte("x"), "image/png", "Lunch", "")
	require.Error(t, err)
	assert.Equal(t, faults.KindMissingCredentials, faults.KindOf(err))
	assert.True(t, faults.IsIrrecoverable(err))
}

func TestGenerate_HTTPErrorClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New(server.URL, "secret", "test-model", server.Client())
	_, err := c.AnalyzeMeal(context.Background(), []byte("x"), "image/png", "Lunch", "")
	require.Error(t, err)
	var classified *faults.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, faults.Recoverable, classified.Category)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
	assert.Equal(t, "plain text", stripFences("plain text"))
}

func planResponse() string {
	return textResponse(`{
		"planName": "Push Pull Legs",
		"description": "Classic split",
		"weeklySchedule": [{
			"day": "Monday",
			"focus": "Push",
			"sessions": [{
				"name": "Morning",
				"workouts": [{
					"exercise": "Bench Press",
					"notes": "Pause at chest",
					"details": [
						{"name": "Sets", "value": "3"},
						{"name": "reps", "value": "10"},
						{"name": "Weight", "value": "60kg"}
					]
				}, {
					"exercise": "Incline Press",
					"details": [
						{"name": "SETS", "value": "4"},
						{"name": "Reps", "value": "8"}
					]
				}]
			}]
		}]
	}`)
}

type fixedFinder struct {
	urls map[string]string
	errs map[string]error
}

func (f fixedFinder) FindExerciseImage(ctx context.Context, exercise string) (string, error) {
	if err, ok := f.errs[exercise]; ok {
		return "", err
	}
	return f.urls[exercise], nil
}

func TestGeneratePlan_PromotesSetsAndReps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// One session per day for a once-daily profile.
		assert.Contains(t, req.Contents[0].Parts[0].Text, "1 session(s)")
		_, _ = w.Write([]byte(planResponse()))
	}))
	defer server.Close()

	c := New(server.URL, "secret", "test-model", server.Client())
	profile := &types.Profile{
		Name: "Basim", Age: 29, Sex: types.SexMale,
		HeightCm: 178, Weight: 82, ActivityMultiplier: 1.55,
		Goal: types.GoalLose, ExerciseFrequency: types.FrequencyOnceDaily,
	}
	plan, err := c.GeneratePlan(context.Background(), profile, nil)
	require.NoError(t, err)

	assert.Equal(t, "Push Pull Legs", plan.Name)
	workouts := plan.WeeklySchedule[0].Sessions[0].Workouts
	require.Len(t, workouts, 2)

	// Sets/Reps are promoted case-insensitively; residual details survive.
	bench := workouts[0]
	assert.Equal(t, "3", bench.Sets)
	assert.Equal(t, "10", bench.Reps)
	require.Len(t, bench.Details, 1)
	assert.Equal(t, "Weight", bench.Details[0].Name)

	incline := workouts[1]
	assert.Equal(t, "4", incline.Sets)
	assert.Equal(t, "8", incline.Reps)
	assert.Empty(t, incline.Details)
}

func TestGeneratePlan_TwiceDailyAsksForTwoSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Contents[0].Parts[0].Text, "2 session(s)")
		_, _ = w.Write([]byte(planResponse()))
	}))
	defer server.Close()

	c := New(server.URL, "secret", "test-model", server.Client())
	profile := &types.Profile{Name: "A", ExerciseFrequency: types.FrequencyTwiceDaily}
	_, err := c.GeneratePlan(context.Background(), profile, nil)
	require.NoError(t, err)
}

func TestGeneratePlan_AttachesImagesBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(planResponse()))
	}))
	defer server.Close()

	finder := fixedFinder{
		urls: map[string]string{"Bench Press": "https://img.example/bench.jpg"},
		errs: map[string]error{"Incline Press": fmt.Errorf("lookup failed")},
	}

	c := New(server.URL, "secret", "test-model", server.Client())
	profile := &types.Profile{Name: "A", ExerciseFrequency: types.FrequencyOnceDaily}
	plan, err := c.GeneratePlan(context.Background(), profile, finder)
	require.NoError(t, err)

	workouts := plan.WeeklySchedule[0].Sessions[0].Workouts
	assert.Equal(t, "https://img.example/bench.jpg", workouts[0].ImageURL)
	// A failed lookup is non-fatal and leaves the URL unset.
	assert.Empty(t, workouts[1].ImageURL)
}

func TestDescribeProfile(t *testing.T) {
	p := &types.Profile{
		Name: "Basim", Age: 29, Sex: types.SexMale,
		HeightCm: 178, Weight: 82.4, ActivityMultiplier: 1.55,
		Goal: types.GoalLose, TargetWeight: 75,
		MealsPerDay: 3, ExerciseFrequency: types.FrequencyOnceDaily,
		ExerciseTimes: []string{"07:00"}, ExercisePrefs: "no barbell squats",
	}
	got := DescribeProfile(p)
	assert.Contains(t, got, "Basim")
	assert.Contains(t, got, "82.4 kg")
	assert.Contains(t, got, "target 75.0 kg")
	assert.Contains(t, got, "at 07:00")
	assert.Contains(t, got, "no barbell squats")
}

func TestBuildChatContext_TailsHistory(t *testing.T) {
	p := &types.Profile{
		Name: "Basim", Age: 29, Sex: types.SexMale,
		HeightCm: 178, Weight: 82, ActivityMultiplier: 1.55,
		Goal: types.GoalLose, ExerciseFrequency: types.FrequencyOnceDaily,
	}
	var logs []types.DailyLog
	for i := 1; i <= 12; i++ {
		logs = append(logs, types.DailyLog{Date: fmt.Sprintf("2025-06-%02d", i)})
	}
	var weights []types.WeightEntry
	for i := 1; i <= 14; i++ {
		weights = append(weights, types.WeightEntry{Date: fmt.Sprintf("2025-06-%02d", i), Weight: 82})
	}
	plan := &types.WorkoutPlan{Name: "Plan", WeeklySchedule: []types.DailyWorkout{{Day: "Monday", Focus: "Push"}}}

	got := BuildChatContext(p, logs, weights, plan)

	// Only the trailing window of history is included.
	assert.NotContains(t, got, "2025-06-05: 0 meal(s)")
	assert.Contains(t, got, "2025-06-06: 0 meal(s)")
	assert.Contains(t, got, "2025-06-12: 0 meal(s)")
	assert.NotContains(t, got, "2025-06-04: 82.0 kg")
	assert.Contains(t, got, "2025-06-05: 82.0 kg")
	assert.Contains(t, got, "Workout plan: Plan")
	assert.Contains(t, got, "Daily targets")
}

func TestBuildChatContext_NilProfile(t *testing.T) {
	got := BuildChatContext(nil, nil, nil, nil)
	assert.NotContains(t, got, "## Profile")
	assert.Contains(t, got, "assistant")
}
