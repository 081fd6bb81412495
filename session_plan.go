package caloriewise

import (
	"context"
	"errors"

	"github.com/BasimBashir/caloriewise-ai/internal/faults"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// CreateProfile validates the profile, generates the initial workout plan and
// commits the initial snapshot (profile, plan, one weight entry at the
// registration weight, empty logs and chat). This is the one AI operation
// whose failure propagates synchronously: the caller keeps the user on the
// setup screen and shows the message.
func (s *Session) CreateProfile(ctx context.Context, profile types.Profile) error {
	s.mu.Lock()
	if s.state == Unauthenticated {
		s.mu.Unlock()
		return ErrNoIdentity
	}
	s.mu.Unlock()

	if err := types.ValidateProfile(&profile); err != nil {
		return err
	}
	if profile.RegistrationDate.IsZero() {
		profile.RegistrationDate = s.now()
	}

	plan, err := s.ai.GeneratePlan(ctx, &profile, s.finder)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = types.Snapshot{
		Profile:     &profile,
		WorkoutPlan: plan,
		DailyLogs:   []types.DailyLog{},
		WeightLog: []types.WeightEntry{{
			Date:   profile.RegistrationDate.Format(types.DateLayout),
			Weight: profile.Weight,
		}},
		ChatSessions: []types.ChatSession{},
	}
	s.persist(fieldProfile, fieldWorkoutPlan, fieldDailyLogs, fieldWeightLog, fieldChatSessions, fieldActiveSession)
	return nil
}

// RegeneratePlan re-invokes the plan fetcher with the current profile and
// replaces the workout plan wholesale. A failure leaves the existing plan
// untouched and surfaces as a dashboard-level error message instead of an
// error return.
func (s *Session) RegeneratePlan(ctx context.Context) {
	s.mu.Lock()
	if s.snap.Profile == nil {
		s.dashErr = ErrNoProfile.Error()
		s.mu.Unlock()
		return
	}
	profile := *s.snap.Profile
	s.mu.Unlock()

	plan, err := s.ai.GeneratePlan(ctx, &profile, s.finder)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.dashErr = userMessage(err)
		s.log.Warn().Err(err).Msg("plan regeneration failed, keeping existing plan")
		return
	}
	s.snap.WorkoutPlan = plan
	s.persist(fieldWorkoutPlan)
}

// UpdatePlan replaces the workout plan with a value edited by the user.
// Structural validation is the presentation layer's responsibility.
func (s *Session) UpdatePlan(plan types.WorkoutPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Unauthenticated {
		return ErrNoIdentity
	}
	p := plan.Clone()
	s.snap.WorkoutPlan = &p
	s.persist(fieldWorkoutPlan)
	return nil
}

// Reset clears profile, logs, plan, weight history and chat sessions, locally
// and, when authenticated, in the remote document.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = types.Snapshot{
		DailyLogs:    []types.DailyLog{},
		WeightLog:    []types.WeightEntry{},
		ChatSessions: []types.ChatSession{},
	}
	s.dashErr = ""
	s.persist(fieldProfile, fieldDailyLogs, fieldWorkoutPlan, fieldWeightLog, fieldChatSessions, fieldActiveSession)
}

// userMessage maps a classified failure to its user-facing text; raw
// transport errors are never rendered verbatim.
func userMessage(err error) string {
	var classified *faults.ClassifiedError
	if errors.As(err, &classified) {
		return classified.UserMessage()
	}
	return "Something went wrong talking to the AI. Please try again."
}
