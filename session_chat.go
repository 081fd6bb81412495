package caloriewise

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/BasimBashir/caloriewise-ai/internal/genai"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// titleLimit is the truncation length for session titles derived from the
// first user message.
const titleLimit = 30

// NewChatSession prepends a new empty session and makes it active. Returns
// the session ID.
func (s *Session) NewChatSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := types.ChatSession{
		ID:        uuid.NewString(),
		Title:     "New chat",
		Messages:  []types.ChatMessage{},
		CreatedAt: s.now(),
	}
	s.snap.ChatSessions = append([]types.ChatSession{session}, s.snap.ChatSessions...)
	s.snap.ActiveChatSessionID = session.ID

	s.persist(fieldChatSessions, fieldActiveSession)
	return session.ID
}

// DeleteChatSession removes a session. If it was active, the first remaining
// session becomes active, or none.
func (s *Session) DeleteChatSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snap.ChatSessions[:0]
	for _, cs := range s.snap.ChatSessions {
		if cs.ID != id {
			kept = append(kept, cs)
		}
	}
	s.snap.ChatSessions = kept

	if s.snap.ActiveChatSessionID == id {
		s.snap.ActiveChatSessionID = ""
		if len(kept) > 0 {
			s.snap.ActiveChatSessionID = kept[0].ID
		}
	}

	s.persist(fieldChatSessions, fieldActiveSession)
}

// SwitchChatSession makes id the active session. Pure pointer change.
func (s *Session) SwitchChatSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cs := range s.snap.ChatSessions {
		if cs.ID == id {
			s.snap.ActiveChatSessionID = id
			s.persist(fieldActiveSession)
			return nil
		}
	}
	return fmt.Errorf("chat session %s not found", id)
}

// Replying reports whether an AI reply is currently streaming in. The
// presentation layer gates the send button and input on this flag.
func (s *Session) Replying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replying
}

// SendChatMessage appends the user message and an empty model placeholder to
// the active session, then streams the AI reply into the placeholder in the
// background. It returns the placeholder's message ID immediately; the
// placeholder keeps that ID across every streamed mutation so the UI can
// track it. Use AwaitReply to block until the turn settles.
func (s *Session) SendChatMessage(ctx context.Context, text string, useSearch bool) (string, error) {
	s.mu.Lock()

	if s.state == Unauthenticated {
		s.mu.Unlock()
		return "", ErrNoIdentity
	}
	if s.replying {
		s.mu.Unlock()
		return "", ErrReplyInFlight
	}
	session := s.activeSessionLocked()
	if session == nil {
		s.mu.Unlock()
		return "", ErrNoActiveSession
	}

	userMsg := types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleUser,
		Parts:     []string{text},
		Timestamp: s.now(),
	}
	placeholder := types.ChatMessage{
		ID:        uuid.NewString(),
		Role:      types.RoleModel,
		Parts:     []string{""},
		Timestamp: s.now(),
	}
	if len(session.Messages) == 0 {
		session.Title = deriveTitle(text)
	}
	session.Messages = append(session.Messages, userMsg, placeholder)

	// History for the model: everything up to and including the user message,
	// excluding the placeholder.
	history := make([]genai.ChatTurn, 0, len(session.Messages)-1)
	for _, m := range session.Messages[:len(session.Messages)-1] {
		history = append(history, genai.ChatTurn{Role: m.Role, Text: m.Text()})
	}

	req := genai.ChatRequest{
		History:       history,
		SystemContext: genai.BuildChatContext(s.snap.Profile, s.snap.DailyLogs, s.snap.WeightLog, s.snap.WorkoutPlan),
		UseSearch:     useSearch,
	}

	sessionID := session.ID
	placeholderID := placeholder.ID
	s.replying = true
	done := make(chan struct{})
	s.replyDone = done
	s.mu.Unlock()

	go s.streamReply(ctx, sessionID, placeholderID, req, done)
	return placeholderID, nil
}

// AwaitReply blocks until the in-flight chat turn settles. Returns
// immediately when no reply is streaming.
func (s *Session) AwaitReply(ctx context.Context) error {
	s.mu.Lock()
	done := s.replyDone
	replying := s.replying
	s.mu.Unlock()
	if !replying || done == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// streamReply consumes the token stream and patches the placeholder in place.
// Each delta is applied against the *latest* session list, never a captured
// copy, so unrelated concurrent mutations (e.g. deleting another session) are
// not lost. Closing the chat surface does not cancel the stream; state keeps
// accumulating in the background.
func (s *Session) streamReply(ctx context.Context, sessionID, placeholderID string, req genai.ChatRequest, done chan struct{}) {
	stream, err := s.ai.StreamChat(ctx, req)
	if err != nil {
		s.settleReply(sessionID, placeholderID, "", err, done)
		return
	}
	defer func() { _ = stream.Close() }()

	var buf string
	for {
		chunk, err := stream.Recv(ctx)
		if err == io.EOF {
			s.settleReply(sessionID, placeholderID, buf, nil, done)
			return
		}
		if err != nil {
			s.settleReply(sessionID, placeholderID, buf, err, done)
			return
		}

		buf += chunk.TextDelta
		s.mu.Lock()
		if msg := s.messageLocked(sessionID, placeholderID); msg != nil {
			msg.Parts = []string{buf}
			if chunk.Citations != nil {
				// Latest-seen citation set fully supersedes the previous one.
				msg.Citations = chunk.Citations
			}
		}
		s.mu.Unlock()
		streamChunksTotal.Inc()
	}
}

// settleReply finalizes a chat turn: on failure the placeholder's text is
// replaced with an error-describing message. Either way the chat sessions are
// persisted and the replying flag cleared. No automatic retry.
func (s *Session) settleReply(sessionID, placeholderID, text string, cause error, done chan struct{}) {
	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		close(done)
	}()

	outcome := "success"
	if cause != nil {
		outcome = "error"
		if msg := s.messageLocked(sessionID, placeholderID); msg != nil {
			msg.Parts = []string{userMessage(cause)}
		}
		s.log.Warn().Err(cause).Str("session", sessionID).Msg("chat turn failed")
	}
	streamTurnsTotal.WithLabelValues(outcome).Inc()

	s.replying = false
	s.replyDone = nil
	s.persist(fieldChatSessions)
}

// activeSessionLocked returns the active session, nil when none. Caller holds s.mu.
func (s *Session) activeSessionLocked() *types.ChatSession {
	for i := range s.snap.ChatSessions {
		if s.snap.ChatSessions[i].ID == s.snap.ActiveChatSessionID {
			return &s.snap.ChatSessions[i]
		}
	}
	return nil
}

// messageLocked finds a message by session and message ID against the latest
// session list. Returns nil when either was deleted mid-stream. Caller holds s.mu.
func (s *Session) messageLocked(sessionID, messageID string) *types.ChatMessage {
	for i := range s.snap.ChatSessions {
		if s.snap.ChatSessions[i].ID != sessionID {
			continue
		}
		msgs := s.snap.ChatSessions[i].Messages
		for j := range msgs {
			if msgs[j].ID == messageID {
				return &msgs[j]
			}
		}
	}
	return nil
}

// deriveTitle truncates the first user message to titleLimit runes, with an
// ellipsis marker only when truncated.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "…"
}
