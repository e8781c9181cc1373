package eventlog

import (
	"context"
	"testing"
)

func TestEventTypeConstants(t *testing.T) {
	// Verify all event types are defined as expected
	expectedEvents := map[EventType]string{
		EventSessionStarted:    "session_started",
		EventUtteranceReceived: "utterance_received",
		EventIntentDetected:    "intent_detected",
		EventExtractionFailed:  "extraction_failed",
		EventLLMError:          "llm_error",
		EventLeadCreated:       "lead_created",
		EventLeadRebound:       "lead_rebound",
		EventSessionEnded:      "session_ended",
		EventSTTError:          "stt_error",
		EventTTSError:          "tts_error",
	}

	for eventType, expectedValue := range expectedEvents {
		if string(eventType) != expectedValue {
			t.Errorf("EventType %q = %q, want %q", expectedValue, string(eventType), expectedValue)
		}
	}
}

func TestLogWithNilDB(t *testing.T) {
	// Logger with nil DB should silently skip without error
	logger := New(nil)

	err := logger.Log(context.Background(), "session-1", nil, EventSessionStarted, map[string]any{
		"channel": "text",
	})
	if err != nil {
		t.Errorf("Log with nil DB should return nil, got %v", err)
	}

	// LogAsync should also not panic
	logger.LogAsync("session-1", nil, EventSessionEnded, nil)
}

func TestLogWithEmptySessionID(t *testing.T) {
	logger := New(nil)

	err := logger.Log(context.Background(), "", nil, EventSessionStarted, nil)
	if err != nil {
		t.Errorf("Log with empty session ID should return nil, got %v", err)
	}
}
