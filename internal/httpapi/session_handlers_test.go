package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atom-sv/leadagent/internal/eventlog"
)

// sessionTestRouter builds a router good enough for the session handler
// paths that never reach the database or the LLM.
func sessionTestRouter() *Router {
	return &Router{
		logger:   log.New(io.Discard, "", 0),
		eventLog: eventlog.New(nil),
		sessions: NewSessionRegistry(),
	}
}

func TestHandleCreateSession_Anonymous(t *testing.T) {
	r := sessionTestRouter()

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.handleCreateSession(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID      string `json:"session_id"`
		Greeting       string `json:"greeting"`
		State          string `json:"state"`
		AudioAvailable bool   `json:"audio_available"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("session_id should not be empty")
	}
	if resp.Greeting == "" {
		t.Error("greeting should not be empty")
	}
	if resp.State != "active" {
		t.Errorf("state = %q, want %q", resp.State, "active")
	}
	if resp.AudioAvailable {
		t.Error("audio_available should be false without a TTS client")
	}

	if r.sessions.Get(resp.SessionID) == nil {
		t.Error("session should be registered")
	}
}

func TestHandleCreateSession_Draining(t *testing.T) {
	r := sessionTestRouter()
	r.sessions.StartDraining()

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.handleCreateSession(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSessionHandlers_UnknownSession(t *testing.T) {
	r := sessionTestRouter()

	req := httptest.NewRequest("GET", "/api/sessions/nope/summary", nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	r.handleSessionSummary(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleSessionSummary(t *testing.T) {
	r := sessionTestRouter()

	// Create a session first.
	createReq := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`))
	createW := httptest.NewRecorder()
	r.handleCreateSession(createW, createReq)

	var created struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(createW.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/sessions/"+created.SessionID+"/summary", nil)
	req.SetPathValue("id", created.SessionID)
	w := httptest.NewRecorder()
	r.handleSessionSummary(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		State  string         `json:"state"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if resp.State != "active" {
		t.Errorf("state = %q, want %q", resp.State, "active")
	}
	// Fresh session: no fields gathered yet (omitempty drops them all).
	if len(resp.Fields) != 0 {
		t.Errorf("fields = %v, want empty", resp.Fields)
	}
}

func TestHandleSessionMessage_MissingBody(t *testing.T) {
	r := sessionTestRouter()

	createW := httptest.NewRecorder()
	r.handleCreateSession(createW, httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`)))
	var created struct {
		SessionID string `json:"session_id"`
	}
	_ = json.NewDecoder(createW.Body).Decode(&created)

	req := httptest.NewRequest("POST", "/api/sessions/"+created.SessionID+"/messages", strings.NewReader(`{}`))
	req.SetPathValue("id", created.SessionID)
	w := httptest.NewRecorder()
	r.handleSessionMessage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleEndSession(t *testing.T) {
	r := sessionTestRouter()

	createW := httptest.NewRecorder()
	r.handleCreateSession(createW, httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`)))
	var created struct {
		SessionID string `json:"session_id"`
	}
	_ = json.NewDecoder(createW.Body).Decode(&created)

	req := httptest.NewRequest("DELETE", "/api/sessions/"+created.SessionID, nil)
	req.SetPathValue("id", created.SessionID)
	w := httptest.NewRecorder()
	r.handleEndSession(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if r.sessions.Get(created.SessionID) != nil {
		t.Error("session should be removed after end")
	}
	if r.sessions.ActiveCount() != 0 {
		t.Errorf("ActiveCount() = %d, want 0", r.sessions.ActiveCount())
	}
}

func TestHandleSessionAudio_NoTTS(t *testing.T) {
	r := sessionTestRouter()

	createW := httptest.NewRecorder()
	r.handleCreateSession(createW, httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{}`)))
	var created struct {
		SessionID string `json:"session_id"`
	}
	_ = json.NewDecoder(createW.Body).Decode(&created)

	req := httptest.NewRequest("GET", "/api/sessions/"+created.SessionID+"/audio", nil)
	req.SetPathValue("id", created.SessionID)
	w := httptest.NewRecorder()
	r.handleSessionAudio(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without TTS client", w.Code)
	}
}
