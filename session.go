// Package caloriewise is the client SDK for the CalorieWise diet/fitness
// application. The Session type is the single source of truth for one user's
// snapshot (profile, daily logs, workout plan, weight history, chat
// sessions): it sequences every mutation, merges asynchronously arriving AI
// content into the snapshot, and mirrors changed fields to the remote
// document store on a fire-and-forget save queue.
package caloriewise

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/BasimBashir/caloriewise-ai/internal/genai"
	"github.com/BasimBashir/caloriewise-ai/internal/imagesearch"
	"github.com/BasimBashir/caloriewise-ai/internal/savequeue"
	"github.com/BasimBashir/caloriewise-ai/internal/store"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// AuthState is the identity state of a Session.
type AuthState int

const (
	// Unauthenticated: no identity yet; only the sign-in prompt is rendered.
	Unauthenticated AuthState = iota
	// GuestActive: the user chose guest mode; state is local-only, no remote
	// calls occur until a later sign-in.
	GuestActive
	// Authenticated: a signed-in identity with a remote snapshot mirror.
	Authenticated
)

// String returns the state name.
func (s AuthState) String() string {
	switch s {
	case GuestActive:
		return "GuestActive"
	case Authenticated:
		return "Authenticated"
	default:
		return "Unauthenticated"
	}
}

// DocumentStore is the persistence gateway contract (see internal/store).
type DocumentStore interface {
	Load(ctx context.Context, userID string) (*types.Snapshot, error)
	SaveMerge(ctx context.Context, userID string, patch map[string]any) error
}

// ChatStreamer is one in-flight streaming chat turn.
type ChatStreamer interface {
	Recv(ctx context.Context) (genai.Chunk, error)
	Close() error
}

// AI is the content-fetcher contract (see internal/genai).
type AI interface {
	AnalyzeMeal(ctx context.Context, image []byte, mimeType, mealType, note string) (*genai.MealAnalysis, error)
	GeneratePlan(ctx context.Context, profile *types.Profile, finder genai.ImageFinder) (*types.WorkoutPlan, error)
	StreamChat(ctx context.Context, req genai.ChatRequest) (ChatStreamer, error)
}

// executor abstracts the async save runner.
type executor interface {
	Submit(ctx context.Context, identity string, job savequeue.Job) error
	Stop()
}

// Session owns the live snapshot. All exported methods are safe for
// concurrent use; a single mutex serializes mutations, which also provides
// the per-identity serialisation the save queue's FIFO contract requires.
type Session struct {
	storeGW DocumentStore
	ai      AI
	finder  genai.ImageFinder
	exec    executor
	http    *http.Client
	log     zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     AuthState
	userID    string
	snap      types.Snapshot
	guestSnap *types.Snapshot // captured at sign-in attempt, survives one transition
	replying  bool
	replyDone chan struct{}
	dashErr   string

	closedOnce uint32
}

// New constructs a Session from cfg. Additional options can be provided via
// functional arguments; options that fail panic, mirroring misconfiguration
// at construction time.
func New(cfg Config, opts ...Option) *Session {
	s := &Session{
		http: &http.Client{Timeout: 30 * time.Second},
		log:  zerolog.Nop(),
		now:  time.Now,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			panic(err)
		}
	}

	if s.storeGW == nil {
		s.storeGW = store.New(cfg.StoreBaseURL, s.http)
	}
	if s.ai == nil {
		s.ai = genaiBackend{genai.New(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, s.http)}
	}
	if s.finder == nil && cfg.ImageSearchBaseURL != "" {
		s.finder = imagesearch.New(cfg.ImageSearchBaseURL, cfg.ImageSearchAPIKey)
	}
	if s.exec == nil {
		s.exec = s.newDefaultExecutor()
	}
	return s
}

// newDefaultExecutor builds the save queue with env-tuned settings and an
// error handler that reports to the ambient error channel.
func (s *Session) newDefaultExecutor() *savequeue.Queue {
	cfg, err := savequeue.LoadConfig()
	if err != nil {
		cfg = savequeue.Config{}
	}
	cfg.ErrorHandler = func(err error) {
		persistFailuresTotal.Inc()
		s.log.Error().Err(err).Msg("snapshot save failed")
	}
	return savequeue.New(cfg)
}

// genaiBackend adapts *genai.Client to the AI interface.
type genaiBackend struct{ c *genai.Client }

func (b genaiBackend) AnalyzeMeal(ctx context.Context, image []byte, mimeType, mealType, note string) (*genai.MealAnalysis, error) {
	return b.c.AnalyzeMeal(ctx, image, mimeType, mealType, note)
}

func (b genaiBackend) GeneratePlan(ctx context.Context, profile *types.Profile, finder genai.ImageFinder) (*types.WorkoutPlan, error) {
	return b.c.GeneratePlan(ctx, profile, finder)
}

func (b genaiBackend) StreamChat(ctx context.Context, req genai.ChatRequest) (ChatStreamer, error) {
	return b.c.StreamChat(ctx, req)
}

// Close stops the background save queue. Safe to call multiple times.
func (s *Session) Close() error {
	if !atomic.CompareAndSwapUint32(&s.closedOnce, 0, 1) {
		return nil
	}
	if s.exec != nil {
		s.exec.Stop()
	}
	return nil
}

// --------------------------------------------------------------------
// Identity resolution protocol
// --------------------------------------------------------------------

// UseGuest switches an unauthenticated session into guest mode with an empty
// snapshot. No remote calls occur until a later sign-in.
func (s *Session) UseGuest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unauthenticated {
		return
	}
	s.state = GuestActive
	s.snap = types.Snapshot{}
}

// SignIn resolves the authenticated identity. Any guest snapshot is captured
// synchronously before the remote load so it can survive exactly this one
// transition:
//
//   - remote snapshot with a profile exists → it wins, guest data discarded
//   - no remote snapshot but guest data captured → guest data is persisted
//     under the new identity (migration) and loaded
//   - neither → empty snapshot, user proceeds to profile setup
func (s *Session) SignIn(ctx context.Context, userID string) error {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == GuestActive && !s.snap.Empty() {
		captured := s.snap.Clone()
		s.guestSnap = &captured
	}
	guest := s.guestSnap
	s.mu.Unlock()

	remote, err := s.storeGW.Load(ctx, userID)
	if err != nil && err != types.ErrNotFound {
		return err
	}

	var next types.Snapshot
	switch {
	case remote != nil && remote.Profile != nil:
		// Existing data always wins over migrated guest data.
		next = *remote
	case guest != nil && guest.Profile != nil:
		next = *guest
		patch, err := fullPatch(&next)
		if err != nil {
			return err
		}
		if err := s.storeGW.SaveMerge(ctx, userID, patch); err != nil {
			return err
		}
	default:
		next = types.Snapshot{}
	}

	s.mu.Lock()
	s.state = Authenticated
	s.userID = userID
	s.snap = next
	s.guestSnap = nil
	s.mu.Unlock()

	s.log.Info().Str("user", userID).Bool("migrated", remote == nil && guest != nil).Msg("signed in")
	return nil
}

// SignOut clears the snapshot and returns to Unauthenticated. Any captured
// guest snapshot reference is dropped.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Unauthenticated
	s.userID = ""
	s.snap = types.Snapshot{}
	s.guestSnap = nil
	s.dashErr = ""
}

// State returns the current auth state.
func (s *Session) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the authenticated identity, "" otherwise.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Snapshot returns a deep copy of the live snapshot for rendering.
func (s *Session) Snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// DashboardError returns and clears the pending dashboard-level error
// message, "" when none.
func (s *Session) DashboardError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.dashErr
	s.dashErr = ""
	return msg
}

// Flush blocks until every save already submitted for the current identity
// has been executed. Useful in tests and before shutdown.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == "" {
		return nil
	}
	if q, ok := s.exec.(*savequeue.Queue); ok {
		return q.Barrier(ctx, userID)
	}
	done := make(chan struct{})
	if err := s.exec.Submit(ctx, userID, savequeue.JobFunc(func(context.Context) error {
		close(done)
		return nil
	})); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// --------------------------------------------------------------------
// Persistence plumbing
// --------------------------------------------------------------------

// Top-level snapshot fields, mirroring the stored document shape.
const (
	fieldProfile       = "userProfile"
	fieldDailyLogs     = "dailyLogs"
	fieldWorkoutPlan   = "workoutPlan"
	fieldWeightLog     = "weightLog"
	fieldChatSessions  = "chatSessions"
	fieldActiveSession = "activeChatSessionId"
)

// fieldDoc renders one top-level snapshot field as its document value.
func fieldDoc(snap *types.Snapshot, field string) (any, error) {
	var v any
	switch field {
	case fieldProfile:
		v = snap.Profile
	case fieldDailyLogs:
		v = emptySlice(snap.DailyLogs)
	case fieldWorkoutPlan:
		v = snap.WorkoutPlan
	case fieldWeightLog:
		v = emptySlice(snap.WeightLog)
	case fieldChatSessions:
		v = emptySlice(snap.ChatSessions)
	case fieldActiveSession:
		return snap.ActiveChatSessionID, nil
	}
	return store.ToDoc(v)
}

// emptySlice keeps cleared collections as [] rather than null so a merge
// write actually empties them remotely.
func emptySlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// fullPatch renders the whole snapshot for migration and reset writes.
func fullPatch(snap *types.Snapshot) (map[string]any, error) {
	patch := map[string]any{}
	for _, f := range []string{fieldProfile, fieldDailyLogs, fieldWorkoutPlan, fieldWeightLog, fieldChatSessions, fieldActiveSession} {
		doc, err := fieldDoc(snap, f)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
		patch[f] = doc
	}
	return patch, nil
}

// persist enqueues a merge write of only the named top-level fields, keyed by
// the current identity. Fire-and-forget: the in-memory snapshot is never
// rolled back; failures go to the error channel. Must be called with s.mu
// held: that lock is the external serialisation the queue's per-identity
// FIFO contract relies on.
func (s *Session) persist(fields ...string) {
	if s.state != Authenticated {
		return
	}
	patch := make(map[string]any, len(fields))
	for _, f := range fields {
		doc, err := fieldDoc(&s.snap, f)
		if err != nil {
			// Writing null here would wipe the remote copy of the field.
			persistFailuresTotal.Inc()
			s.log.Error().Err(err).Str("field", f).Msg("field encode failed, skipped")
			continue
		}
		patch[f] = doc
	}
	if len(patch) == 0 {
		return
	}
	userID := s.userID

	job := savequeue.JobFunc(func(ctx context.Context) error {
		return s.storeGW.SaveMerge(ctx, userID, patch)
	})
	if err := s.exec.Submit(context.Background(), userID, job); err != nil {
		persistFailuresTotal.Inc()
		s.log.Error().Err(err).Str("user", userID).Msg("save enqueue failed")
	}
}
