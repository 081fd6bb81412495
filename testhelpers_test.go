package caloriewise

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/BasimBashir/caloriewise-ai/internal/genai"
	"github.com/BasimBashir/caloriewise-ai/internal/savequeue"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory document store with merge-write semantics.
type fakeStore struct {
	mu        sync.Mutex
	docs      map[string]map[string]any
	loadCalls int
	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]any{}}
}

func (f *fakeStore) Load(ctx context.Context, userID string) (*types.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	doc, ok := f.docs[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var snap types.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (f *fakeStore) SaveMerge(ctx context.Context, userID string, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	doc, ok := f.docs[userID]
	if !ok {
		doc = map[string]any{}
		f.docs[userID] = doc
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

// snapshotFor decodes the stored document for userID.
func (f *fakeStore) snapshotFor(t *testing.T, userID string) *types.Snapshot {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[userID]
	if !ok {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal stored doc: %v", err)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode stored doc: %v", err)
	}
	return &snap
}

// fakeStream plays back scripted chunks, then errs (nil → io.EOF).
type fakeStream struct {
	chunks []genai.Chunk
	err    error
	pos    int
}

func (f *fakeStream) Recv(ctx context.Context) (genai.Chunk, error) {
	if f.pos >= len(f.chunks) {
		if f.err != nil {
			return genai.Chunk{}, f.err
		}
		return genai.Chunk{}, io.EOF
	}
	c := f.chunks[f.pos]
	f.pos++
	return c, nil
}

func (f *fakeStream) Close() error { return nil }

// fakeAI returns scripted results.
type fakeAI struct {
	mu        sync.Mutex
	plan      *types.WorkoutPlan
	planErr   error
	planCalls int

	analysis    *genai.MealAnalysis
	analysisErr error

	stream    ChatStreamer
	streamErr error
	lastChat  genai.ChatRequest
	// onStream, when set, runs between stream start and the first Recv.
	onStream func()
}

func (f *fakeAI) AnalyzeMeal(ctx context.Context, image []byte, mimeType, mealType, note string) (*genai.MealAnalysis, error) {
	return f.analysis, f.analysisErr
}

func (f *fakeAI) GeneratePlan(ctx context.Context, profile *types.Profile, finder genai.ImageFinder) (*types.WorkoutPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planCalls++
	if f.planErr != nil {
		return nil, f.planErr
	}
	plan := f.plan.Clone()
	return &plan, nil
}

func (f *fakeAI) StreamChat(ctx context.Context, req genai.ChatRequest) (ChatStreamer, error) {
	f.mu.Lock()
	f.lastChat = req
	hook := f.onStream
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.stream, nil
}

// syncExec runs every save inline, making persistence deterministic in tests.
type syncExec struct{}

func (syncExec) Submit(ctx context.Context, identity string, job savequeue.Job) error {
	return job.Run(ctx)
}

func (syncExec) Stop() {}

func newTestSession(t *testing.T, st DocumentStore, ai AI, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{
		WithStore(st),
		WithAI(ai),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	s := New(Config{}, opts...)
	s.exec.Stop()
	s.exec = syncExec{}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testProfile() types.Profile {
	return types.Profile{
		Name:               "Basim",
		Age:                29,
		Sex:                types.SexMale,
		HeightCm:           178,
		Weight:             82,
		ActivityMultiplier: 1.55,
		Goal:               types.GoalLose,
		TargetWeight:       75,
		MealsPerDay:        3,
		ExerciseFrequency:  types.FrequencyOnceDaily,
	}
}

func testPlan() *types.WorkoutPlan {
	return &types.WorkoutPlan{
		Name:        "Base Strength",
		Description: "Three-day split",
		WeeklySchedule: []types.DailyWorkout{{
			Day:   "Monday",
			Focus: "Push",
			Sessions: []types.WorkoutSession{{
				Name: "Morning",
				Workouts: []types.Workout{{
					Exercise: "Bench Press",
					Sets:     "3",
					Reps:     "10",
				}},
			}},
		}},
	}
}
