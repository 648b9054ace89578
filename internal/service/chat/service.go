package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okonev/gemchat/internal/model/chat"
	"github.com/okonev/gemchat/internal/model/persona"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrPersonaNotFound  = errors.New("persona not found")
	ErrEmptyMessage     = errors.New("type a message or attach media before sending")
	ErrSendInFlight     = errors.New("a send is already in flight for this session")
	ErrNoAssistantReply = errors.New("no assistant reply yet")
)

// Responder produces a model reply for the supplied inputs. Any error it
// returns is folded into the transcript as an "Error: ..." assistant turn.
type Responder interface {
	Respond(ctx context.Context, systemPrompt, text string, images []chat.Attachment, audio *chat.Attachment) (string, error)
	StreamRespond(ctx context.Context, systemPrompt, text string, onDelta func(string)) (string, error)
}

type sessionState struct {
	info     chat.Session
	messages []chat.Message
	inFlight bool
}

// Service owns every in-memory session: its transcript, its active system
// prompt, and the one-send-at-a-time state machine.
type Service struct {
	mu        sync.RWMutex
	personas  persona.Store
	responder Responder
	sessions  map[string]*sessionState
}

// NewService bootstraps the in-memory chat service.
func NewService(personas persona.Store, responder Responder) *Service {
	return &Service{
		personas:  personas,
		responder: responder,
		sessions:  make(map[string]*sessionState),
	}
}

// CreateSession provisions a session bound to a persona. An empty persona
// ID selects the default preset.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	var preset persona.Persona
	if personaID == "" {
		preset = s.personas.Default()
	} else {
		found, ok := s.personas.FindByID(personaID)
		if !ok {
			return chat.Session{}, ErrPersonaNotFound
		}
		preset = found
	}

	session := chat.Session{
		ID:           uuid.NewString(),
		PersonaID:    preset.ID,
		ActivePrompt: preset.SystemPrompt,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		info:     session,
		messages: make([]chat.Message, 0, 16),
	}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return state.info, nil
}

// SelectPersona rebinds the session to a preset and resets the active
// prompt to that preset's default.
func (s *Service) SelectPersona(_ context.Context, sessionID, personaID string) (chat.Session, error) {
	preset, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, ErrPersonaNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	state.info.PersonaID = preset.ID
	state.info.ActivePrompt = preset.SystemPrompt
	return state.info, nil
}

// SetActivePrompt overrides the prompt sent with the next request,
// independent of the selected persona. Last write wins.
func (s *Service) SetActivePrompt(_ context.Context, sessionID, prompt string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	state.info.ActivePrompt = prompt
	return state.info, nil
}

// Transcript returns a copy of the stored messages in display order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(state.messages))
	copy(copied, state.messages)
	return copied, nil
}

// ClearMessages empties the session transcript. A clear is rejected while
// a send is in flight so the pending assistant turn cannot land on a
// truncated transcript and break the user/assistant pairing.
func (s *Service) ClearMessages(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if state.inFlight {
		return ErrSendInFlight
	}

	state.messages = state.messages[:0]
	return nil
}

// LastAssistantReply returns the most recent assistant turn, for speech
// playback. Read-only.
func (s *Service) LastAssistantReply(_ context.Context, sessionID string) (chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	for i := len(state.messages) - 1; i >= 0; i-- {
		if state.messages[i].Role == chat.RoleAssistant {
			return state.messages[i], nil
		}
	}
	return chat.Message{}, ErrNoAssistantReply
}

// Send runs one full send cycle: guard, append the user turn, invoke the
// responder, append the assistant turn. The transcript always ends up with
// a paired user/assistant outcome, success or failure.
func (s *Service) Send(ctx context.Context, sessionID, text string, images []chat.Attachment, audio *chat.Attachment) (chat.Message, chat.Message, error) {
	if err := s.ensureSession(sessionID); err != nil {
		return chat.Message{}, chat.Message{}, err
	}
	if text == "" && len(images) == 0 && audio == nil {
		return chat.Message{}, chat.Message{}, ErrEmptyMessage
	}

	prompt, err := s.beginSend(sessionID)
	if err != nil {
		return chat.Message{}, chat.Message{}, err
	}
	defer s.endSend(sessionID)

	userMsg := s.appendMessage(sessionID, chat.RoleUser, buildPreview(text, len(images), audio != nil))

	reply, err := s.responder.Respond(ctx, prompt, text, images, audio)
	if err != nil {
		log.Printf("[chat] provider call failed session=%s: %v", sessionID, err)
		reply = "Error: " + err.Error()
	}

	assistantMsg := s.appendMessage(sessionID, chat.RoleAssistant, reply)
	return userMsg, assistantMsg, nil
}

// StreamSend is the text-only streaming variant of Send. Deltas are
// forwarded to onDelta as they arrive; the persisted assistant turn carries
// the full reply (or the "Error: ..." substitute).
func (s *Service) StreamSend(ctx context.Context, sessionID, text string, onDelta func(string)) (chat.Message, chat.Message, error) {
	if err := s.ensureSession(sessionID); err != nil {
		return chat.Message{}, chat.Message{}, err
	}
	if text == "" {
		return chat.Message{}, chat.Message{}, ErrEmptyMessage
	}

	prompt, err := s.beginSend(sessionID)
	if err != nil {
		return chat.Message{}, chat.Message{}, err
	}
	defer s.endSend(sessionID)

	userMsg := s.appendMessage(sessionID, chat.RoleUser, text)

	reply, err := s.responder.StreamRespond(ctx, prompt, text, onDelta)
	if err != nil {
		log.Printf("[chat] provider stream failed session=%s: %v", sessionID, err)
		reply = "Error: " + err.Error()
	}

	assistantMsg := s.appendMessage(sessionID, chat.RoleAssistant, reply)
	return userMsg, assistantMsg, nil
}

// ensureSession reports ErrSessionNotFound for unknown sessions so the
// lookup outranks any argument validation.
func (s *Service) ensureSession(sessionID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	return nil
}

// beginSend transitions the session into its awaiting-response state and
// snapshots the active prompt for this request.
func (s *Service) beginSend(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrSessionNotFound
	}
	if state.inFlight {
		return "", ErrSendInFlight
	}

	state.inFlight = true
	return state.info.ActivePrompt, nil
}

func (s *Service) endSend(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		state.inFlight = false
	}
}

func (s *Service) appendMessage(sessionID, role, content string) chat.Message {
	msg := chat.Message{
		Role:    role,
		Content: content,
		Time:    time.Now().Format(chat.TimeLayout),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.sessions[sessionID]; ok {
		state.messages = append(state.messages, msg)
	}
	return msg
}

// buildPreview renders the user-facing turn: the raw text plus annotations
// for media that is sent but never stored.
func buildPreview(text string, imageCount int, hasAudio bool) string {
	preview := text
	if imageCount > 0 {
		preview += fmt.Sprintf("\n\n🖼️ %d image(s) attached", imageCount)
	}
	if hasAudio {
		preview += "\n\n🎙️ audio attached"
	}
	return strings.TrimSpace(preview)
}
