package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	modelchat "github.com/okonev/gemchat/internal/model/chat"
	"github.com/okonev/gemchat/internal/model/persona"
	chatService "github.com/okonev/gemchat/internal/service/chat"
)

type stubResponder struct {
	reply string
}

func (s *stubResponder) Respond(context.Context, string, string, []modelchat.Attachment, *modelchat.Attachment) (string, error) {
	return s.reply, nil
}

func (s *stubResponder) StreamRespond(_ context.Context, _, _ string, onDelta func(string)) (string, error) {
	onDelta(s.reply)
	return s.reply, nil
}

func setupRouter() (*chi.Mux, *chatService.Service) {
	store := persona.NewMemoryStore(persona.Seed())
	chatSvc := chatService.NewService(store, &stubResponder{reply: "stub reply"})
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func TestCreateSessionDefaultPersona(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session modelchat.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if session.PersonaID != persona.DefaultID {
		t.Fatalf("expected default persona, got %s", session.PersonaID)
	}
}

func TestCreateSessionInvalidPersona(t *testing.T) {
	r, _ := setupRouter()
	payload := []byte(`{"personaId":"non-existent"}`)

	req := httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendMessageAppendsPair(t *testing.T) {
	r, chatSvc := setupRouter()
	session, _ := chatSvc.CreateSession(context.Background(), "")

	payload := []byte(`{"text":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/session/"+session.ID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var decoded map[string]modelchat.Message
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if decoded["user"].Content != "hello" {
		t.Fatalf("unexpected user message: %+v", decoded["user"])
	}
	if decoded["assistant"].Content != "stub reply" {
		t.Fatalf("unexpected assistant message: %+v", decoded["assistant"])
	}

	transcript, _ := chatSvc.Transcript(context.Background(), session.ID)
	if len(transcript) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(transcript))
	}
}

func TestSendMessageWithImagePayload(t *testing.T) {
	r, chatSvc := setupRouter()
	session, _ := chatSvc.CreateSession(context.Background(), "")

	// Data rides base64 in JSON and must decode into raw bytes.
	payload := []byte(`{"text":"","images":[{"mimeType":"image/png","data":"AQID"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/session/"+session.ID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var decoded map[string]modelchat.Message
	json.NewDecoder(resp.Body).Decode(&decoded)
	if !strings.Contains(decoded["user"].Content, "1 image(s) attached") {
		t.Fatalf("missing attachment preview: %+v", decoded["user"])
	}
}

func TestSendMessageEmptyRejected(t *testing.T) {
	r, chatSvc := setupRouter()
	session, _ := chatSvc.CreateSession(context.Background(), "")

	req := httptest.NewRequest(http.MethodPost, "/session/"+session.ID+"/messages", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	transcript, _ := chatSvc.Transcript(context.Background(), session.ID)
	if len(transcript) != 0 {
		t.Fatalf("empty send must not persist anything, got %d", len(transcript))
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/session/missing/messages", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSetPromptThenSelectPersona(t *testing.T) {
	r, chatSvc := setupRouter()
	session, _ := chatSvc.CreateSession(context.Background(), "")

	req := httptest.NewRequest(http.MethodPost, "/session/"+session.ID+"/prompt", strings.NewReader(`{"prompt":"talk like a pirate"}`))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("set prompt: expected 200, got %d", resp.Code)
	}

	got, _ := chatSvc.GetSession(context.Background(), session.ID)
	if got.ActivePrompt != "talk like a pirate" {
		t.Fatalf("prompt override not applied: %q", got.ActivePrompt)
	}

	req = httptest.NewRequest(http.MethodPost, "/session/"+session.ID+"/persona", strings.NewReader(`{"personaId":"writer"}`))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("select persona: expected 200, got %d", resp.Code)
	}

	got, _ = chatSvc.GetSession(context.Background(), session.ID)
	if got.PersonaID != "writer" {
		t.Fatalf("persona not rebound: %s", got.PersonaID)
	}
}

func TestClearAndExport(t *testing.T) {
	r, chatSvc := setupRouter()
	ctx := context.Background()
	session, _ := chatSvc.CreateSession(ctx, "")
	chatSvc.Send(ctx, session.ID, "hello", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/session/"+session.ID+"/export/text", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("export text: expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "USER: hello") {
		t.Fatalf("unexpected text export: %q", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/session/"+session.ID+"/messages", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/session/"+session.ID+"/export/json", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("export json: expected 200, got %d", resp.Code)
	}
	if strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Fatalf("expected empty JSON export after clear, got %q", resp.Body.String())
	}
}
