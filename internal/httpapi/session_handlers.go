package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/atom-sv/leadagent/internal/conversation"
)

// newSession builds a session wired to the router's collaborators.
func (r *Router) newSession() *conversation.Session {
	return conversation.NewSession(conversation.Config{
		ID:       uuid.New().String(),
		Store:    r.store,
		LLM:      r.llm,
		Events:   r.eventLog,
		Notifier: r.discord,
		Logger:   r.logger,
	})
}

// sessionFromRequest resolves the {id} path segment to a live session.
// Writes a 404 and returns nil when the session is unknown.
func (r *Router) sessionFromRequest(w http.ResponseWriter, req *http.Request) *conversation.Session {
	s := r.sessions.Get(req.PathValue("id"))
	if s == nil {
		http.Error(w, `{"error": "session not found"}`, http.StatusNotFound)
		return nil
	}
	return s
}

func (r *Router) handleCreateSession(w http.ResponseWriter, req *http.Request) {
	var body struct {
		LeadID *int64 `json:"lead_id,omitempty"`
	}
	// An empty body means an anonymous session.
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&body)
	}

	s := r.newSession()
	if !r.sessions.Put(s) {
		http.Error(w, `{"error": "server is shutting down"}`, http.StatusServiceUnavailable)
		return
	}

	greeting, err := s.Start(req.Context(), body.LeadID)
	if err != nil {
		r.sessions.Remove(s.ID())
		r.logger.Printf("session start failed: %v", err)
		captureError(req, err, "session start failed")
		http.Error(w, `{"error": "failed to start session"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id":      s.ID(),
		"greeting":        greeting,
		"state":           s.State().String(),
		"audio_available": r.tts != nil,
	})
}

func (r *Router) handleSessionMessage(w http.ResponseWriter, req *http.Request) {
	s := r.sessionFromRequest(w, req)
	if s == nil {
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Message == "" {
		http.Error(w, `{"error": "missing message"}`, http.StatusBadRequest)
		return
	}

	result, err := s.SubmitUtterance(req.Context(), body.Message)
	if err != nil {
		if errors.Is(err, conversation.ErrNotActive) {
			http.Error(w, `{"error": "session is not active"}`, http.StatusConflict)
			return
		}
		r.logger.Printf("session %s: turn failed: %v", s.ID(), err)
		captureError(req, err, "turn failed")
		http.Error(w, `{"error": "failed to process message"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleSessionSummary(w http.ResponseWriter, req *http.Request) {
	s := r.sessionFromRequest(w, req)
	if s == nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": s.ID(),
		"state":      s.State().String(),
		"fields":     s.Summary(),
	})
}

func (r *Router) handleEndSession(w http.ResponseWriter, req *http.Request) {
	s := r.sessionFromRequest(w, req)
	if s == nil {
		return
	}

	// End clears in-memory state, so grab the final fields first.
	summary := s.Summary()

	if err := s.End(req.Context()); err != nil {
		r.logger.Printf("session %s: end failed: %v", s.ID(), err)
		captureError(req, err, "session end failed")
		http.Error(w, `{"error": "failed to end session"}`, http.StatusInternalServerError)
		return
	}
	r.sessions.Remove(s.ID())

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": s.ID(),
		"state":      s.State().String(),
		"fields":     summary,
	})
}
