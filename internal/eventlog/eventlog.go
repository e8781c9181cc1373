package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventType represents the type of conversation event
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventUtteranceReceived EventType = "utterance_received"
	EventIntentDetected    EventType = "intent_detected"
	EventExtractionFailed  EventType = "extraction_failed"
	EventLLMError          EventType = "llm_error"
	EventLeadCreated       EventType = "lead_created"
	EventLeadRebound       EventType = "lead_rebound"
	EventSessionEnded      EventType = "session_ended"
	EventSTTError          EventType = "stt_error"
	EventTTSError          EventType = "tts_error"
)

// Logger provides async event logging to the database
type Logger struct {
	db *pgxpool.Pool
}

// New creates a new event logger
func New(db *pgxpool.Pool) *Logger {
	return &Logger{db: db}
}

// Log writes an event to the database synchronously. conversationID may be
// nil for sessions that never bound a lead.
func (l *Logger) Log(ctx context.Context, sessionID string, conversationID *int64, eventType EventType, data map[string]any) error {
	if l.db == nil || sessionID == "" {
		return nil // Silently skip if no DB or session ID
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO conversation_events (session_id, conversation_id, event_type, event_data)
		VALUES ($1, $2, $3, $4)
	`, sessionID, conversationID, string(eventType), dataJSON)

	return err
}

// LogAsync logs an event without blocking the caller
func (l *Logger) LogAsync(sessionID string, conversationID *int64, eventType EventType, data map[string]any) {
	if l.db == nil || sessionID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.Log(ctx, sessionID, conversationID, eventType, data)
	}()
}
