package genai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// ImageFinder resolves one illustrative image URL per exercise name.
// A miss is reported as ("", nil) or an error; either way it is non-fatal.
type ImageFinder interface {
	FindExerciseImage(ctx context.Context, exercise string) (string, error)
}

// rawWorkout is the wire shape of one exercise: Sets and Reps arrive inside
// the generic details list and are promoted to dedicated fields afterwards.
type rawWorkout struct {
	Exercise string                `json:"exercise"`
	Notes    string                `json:"notes,omitempty"`
	Details  []types.WorkoutDetail `json:"details"`
}

type rawSession struct {
	Name     string       `json:"name"`
	Workouts []rawWorkout `json:"workouts"`
}

type rawDay struct {
	Day      string       `json:"day"`
	Focus    string       `json:"focus"`
	Sessions []rawSession `json:"sessions"`
}

type rawPlan struct {
	PlanName       string   `json:"planName"`
	Description    string   `json:"description"`
	WeeklySchedule []rawDay `json:"weeklySchedule"`
}

const planPrompt = `Create a one-week workout plan for this user:
%s
The plan must cover seven days with %d session(s) per day. Every exercise must
include details entries named "Sets" and "Reps", plus any extra parameters
(e.g. Weight, Incline) as additional named details.
Respond with JSON only, matching exactly:
{"planName":string,"description":string,"weeklySchedule":[{"day":string,"focus":string,"sessions":[{"name":string,"workouts":[{"exercise":string,"notes":string,"details":[{"name":string,"value":string}]}]}]}]}`

// GeneratePlan builds a weekly workout plan from the profile, promotes
// Sets/Reps out of the details lists, then attaches exercise images via
// finder with fully concurrent lookups. finder may be nil.
func (c *Client) GeneratePlan(ctx context.Context, profile *types.Profile, finder ImageFinder) (*types.WorkoutPlan, error) {
	sessions := 1
	if profile.ExerciseFrequency == types.FrequencyTwiceDaily {
		sessions = 2
	}

	req := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: fmt.Sprintf(planPrompt, DescribeProfile(profile), sessions)}},
		}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.generate(ctx, "plan generation", req)
	if err != nil {
		return nil, err
	}

	var raw rawPlan
	if err := parseStructured("plan generation", resp.text(), &raw); err != nil {
		return nil, err
	}

	plan := promotePlan(&raw)
	if finder != nil {
		attachImages(ctx, plan, finder)
	}
	return plan, nil
}

// promotePlan converts the wire plan, extracting Sets/Reps into dedicated
// fields and keeping the residual details.
func promotePlan(raw *rawPlan) *types.WorkoutPlan {
	plan := &types.WorkoutPlan{
		Name:           raw.PlanName,
		Description:    raw.Description,
		WeeklySchedule: make([]types.DailyWorkout, 0, len(raw.WeeklySchedule)),
	}
	for _, day := range raw.WeeklySchedule {
		d := types.DailyWorkout{Day: day.Day, Focus: day.Focus}
		for _, sess := range day.Sessions {
			s := types.WorkoutSession{Name: sess.Name}
			for _, w := range sess.Workouts {
				s.Workouts = append(s.Workouts, promoteWorkout(w))
			}
			d.Sessions = append(d.Sessions, s)
		}
		plan.WeeklySchedule = append(plan.WeeklySchedule, d)
	}
	return plan
}

func promoteWorkout(raw rawWorkout) types.Workout {
	w := types.Workout{Exercise: raw.Exercise, Notes: raw.Notes}
	for _, d := range raw.Details {
		switch {
		case strings.EqualFold(d.Name, "sets"):
			w.Sets = d.Value
		case strings.EqualFold(d.Name, "reps"):
			w.Reps = d.Value
		default:
			w.Details = append(w.Details, d)
		}
	}
	return w
}

// attachImages runs one lookup per unique exercise name concurrently and
// writes each result to every workout carrying that exercise. Failures leave
// ImageURL unset.
func attachImages(ctx context.Context, plan *types.WorkoutPlan, finder ImageFinder) {
	unique := map[string]bool{}
	for _, day := range plan.WeeklySchedule {
		for _, sess := range day.Sessions {
			for _, w := range sess.Workouts {
				if w.Exercise != "" {
					unique[w.Exercise] = true
				}
			}
		}
	}

	results := make(map[string]string, len(unique))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name := range unique {
		wg.Add(1)
		go func(exercise string) {
			defer wg.Done()
			url, err := finder.FindExerciseImage(ctx, exercise)
			if err != nil || url == "" {
				return
			}
			mu.Lock()
			results[exercise] = url
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	for di := range plan.WeeklySchedule {
		for si := range plan.WeeklySchedule[di].Sessions {
			workouts := plan.WeeklySchedule[di].Sessions[si].Workouts
			for wi := range workouts {
				if url, ok := results[workouts[wi].Exercise]; ok {
					workouts[wi].ImageURL = url
				}
			}
		}
	}
}
