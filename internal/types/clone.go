package types

// Deep copies used when handing state across the orchestrator boundary. The
// orchestrator owns the live snapshot; everything it returns or captures is a
// copy so no caller can mutate it behind the lock.

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{ActiveChatSessionID: s.ActiveChatSessionID}
	if s.Profile != nil {
		p := *s.Profile
		p.ExerciseTimes = append([]string(nil), s.Profile.ExerciseTimes...)
		out.Profile = &p
	}
	if s.DailyLogs != nil {
		out.DailyLogs = make([]DailyLog, len(s.DailyLogs))
		for i, l := range s.DailyLogs {
			out.DailyLogs[i] = l.Clone()
		}
	}
	if s.WorkoutPlan != nil {
		p := s.WorkoutPlan.Clone()
		out.WorkoutPlan = &p
	}
	out.WeightLog = append([]WeightEntry(nil), s.WeightLog...)
	if s.ChatSessions != nil {
		out.ChatSessions = make([]ChatSession, len(s.ChatSessions))
		for i, cs := range s.ChatSessions {
			out.ChatSessions[i] = cs.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the log.
func (d DailyLog) Clone() DailyLog {
	out := d
	if d.Weight != nil {
		w := *d.Weight
		out.Weight = &w
	}
	if d.Meals != nil {
		out.Meals = make([]Meal, len(d.Meals))
		for i, m := range d.Meals {
			out.Meals[i] = m
			out.Meals[i].Foods = append([]FoodItem(nil), m.Foods...)
		}
	}
	return out
}

// Clone returns a deep copy of the plan.
func (p WorkoutPlan) Clone() WorkoutPlan {
	out := p
	if p.WeeklySchedule != nil {
		out.WeeklySchedule = make([]DailyWorkout, len(p.WeeklySchedule))
		for i, day := range p.WeeklySchedule {
			out.WeeklySchedule[i] = day
			if day.Sessions != nil {
				sessions := make([]WorkoutSession, len(day.Sessions))
				for j, sess := range day.Sessions {
					sessions[j] = sess
					if sess.Workouts != nil {
						workouts := make([]Workout, len(sess.Workouts))
						for k, w := range sess.Workouts {
							workouts[k] = w
							workouts[k].Details = append([]WorkoutDetail(nil), w.Details...)
						}
						sessions[j].Workouts = workouts
					}
				}
				out.WeeklySchedule[i].Sessions = sessions
			}
		}
	}
	return out
}

// Clone returns a deep copy of the session.
func (c ChatSession) Clone() ChatSession {
	out := c
	if c.Messages != nil {
		out.Messages = make([]ChatMessage, len(c.Messages))
		for i, m := range c.Messages {
			out.Messages[i] = m
			out.Messages[i].Parts = append([]string(nil), m.Parts...)
			out.Messages[i].Citations = append([]GroundingCitation(nil), m.Citations...)
		}
	}
	return out
}
