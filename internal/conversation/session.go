// Package conversation drives one lead-nurturing session: greeting, turn
// handling with extraction and merging, and persistence of the transcript.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"

	"github.com/atom-sv/leadagent/internal/eventlog"
	"github.com/atom-sv/leadagent/internal/lead"
	"github.com/atom-sv/leadagent/internal/llm"
	"github.com/atom-sv/leadagent/internal/store"
)

// State tracks the session lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateActive
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	default:
		return "not_started"
	}
}

// ErrNotActive is returned when a turn is submitted outside an active session.
var ErrNotActive = errors.New("session is not active")

// Store is the persistence surface a session needs.
type Store interface {
	CreateLead(ctx context.Context, l store.Lead) (int64, error)
	UpdateLead(ctx context.Context, id int64, l store.Lead) error
	GetLeadByID(ctx context.Context, id int64) (*store.Lead, error)
	GetLeadByEmail(ctx context.Context, email string) (*store.Lead, error)
	GetLeadDetails(ctx context.Context, leadID int64) (*store.LeadDetails, error)
	UpsertLeadDetails(ctx context.Context, d store.LeadDetails) error
	StartConversation(ctx context.Context, leadID *int64, startedAt time.Time) (int64, error)
	EndConversation(ctx context.Context, id int64, endedAt time.Time) error
	AddMessage(ctx context.Context, m store.Message) (int64, error)
}

// Notifier receives new-lead notifications. Fire and forget.
type Notifier interface {
	NotifyNewLead(ctx context.Context, leadID int64, fields lead.Fields)
}

// TurnResult is what one utterance produces.
type TurnResult struct {
	Reply  string      `json:"reply"`
	Intent string      `json:"intent"`
	Fields lead.Fields `json:"fields"`
}

// Spanish surface texts.
const (
	greetingDiscovery = "¡Hola! Soy AsistenteATOM, el asistente virtual de ATOM. Estoy aquí para conocer más sobre ti y tus necesidades. ¿Con quién tengo el gusto de hablar?"
	fallbackApology   = "Lo siento, estoy teniendo problemas técnicos en este momento. ¿Podrías repetir lo que me decías?"
)

func greetingPersonalized(name string) string {
	return fmt.Sprintf("¡Hola de nuevo, %s! Un gusto saludarte otra vez. ¿En qué puedo ayudarte hoy?", name)
}

// Session is one live conversation with a prospect. Safe for concurrent use.
type Session struct {
	id string

	mu             sync.Mutex
	state          State
	leadID         *int64
	conversationID *int64
	startedAt      time.Time
	fields         lead.Fields
	history        []llm.Message
	buffered       []store.Message // turns waiting for a conversation row
	lastReply      string

	store    Store
	llm      llm.Client
	events   *eventlog.Logger
	notifier Notifier
	logger   *log.Logger
}

// Config wires a session's collaborators.
type Config struct {
	ID       string
	Store    Store
	LLM      llm.Client
	Events   *eventlog.Logger
	Notifier Notifier
	Logger   *log.Logger
}

// NewSession creates an unstarted session.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "", log.LstdFlags)
	}
	return &Session{
		id:       cfg.ID,
		state:    StateNotStarted,
		store:    cfg.Store,
		llm:      cfg.LLM,
		events:   cfg.Events,
		notifier: cfg.Notifier,
		logger:   logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Summary returns the fields gathered so far, exactly as accumulated.
func (s *Session) Summary() lead.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// LastReply returns the most recent agent reply, for audio synthesis.
func (s *Session) LastReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReply
}

// Start begins (or restarts) the session and returns the greeting. When
// leadID resolves to a stored lead, its profile is preloaded and the greeting
// personalized; otherwise the session opens with a discovery greeting and the
// transcript is buffered until a lead is bound. Calling Start on an active
// session discards its in-memory state and greets fresh.
func (s *Session) Start(ctx context.Context, leadID *int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leadID = nil
	s.conversationID = nil
	s.fields = lead.Fields{}
	s.history = nil
	s.buffered = nil
	s.lastReply = ""
	s.startedAt = time.Now()

	if leadID != nil {
		stored, err := s.store.GetLeadByID(ctx, *leadID)
		switch {
		case err == nil:
			s.leadID = &stored.ID
			s.fields = fieldsFromLead(stored)
			if details, derr := s.store.GetLeadDetails(ctx, stored.ID); derr == nil {
				s.fields = s.fields.Merge(fieldsFromDetails(details).Map())
			} else if !errors.Is(derr, pgx.ErrNoRows) {
				return "", derr
			}
		case errors.Is(err, pgx.ErrNoRows):
			// Unknown id, proceed unbound.
		default:
			return "", err
		}
	}

	greeting := greetingDiscovery
	if s.fields.Name != "" {
		greeting = greetingPersonalized(s.fields.Name)
	}

	if s.leadID != nil {
		convID, err := s.store.StartConversation(ctx, s.leadID, s.startedAt)
		if err != nil {
			return "", err
		}
		s.conversationID = &convID
	}

	if err := s.recordMessage(ctx, store.SenderAgent, greeting); err != nil {
		return "", err
	}
	s.lastReply = greeting
	s.state = StateActive

	s.events.LogAsync(s.id, s.conversationID, eventlog.EventSessionStarted, map[string]any{
		"lead_bound": s.leadID != nil,
	})
	return greeting, nil
}

// SubmitUtterance processes one lead turn: transcript, intent, extraction,
// merge, persistence, reply. Collaborator failures degrade (extraction is
// skipped, the reply falls back to an apology); storage failures propagate.
func (s *Session) SubmitUtterance(ctx context.Context, text string) (*TurnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return nil, ErrNotActive
	}

	if err := s.recordMessage(ctx, store.SenderLead, text); err != nil {
		return nil, err
	}
	s.events.LogAsync(s.id, s.conversationID, eventlog.EventUtteranceReceived, map[string]any{
		"length": len(text),
	})

	// History for the generation prompt excludes the current utterance.
	history := make([]llm.Message, len(s.history)-1)
	copy(history, s.history[:len(s.history)-1])

	intent, err := s.llm.DetectIntent(ctx, text)
	if err != nil {
		s.logger.Printf("session %s: intent detection failed: %v", s.id, err)
		intent = llm.IntentIrrelevant
	} else {
		s.events.LogAsync(s.id, s.conversationID, eventlog.EventIntentDetected, map[string]any{
			"intent": intent,
		})
	}

	extracted, err := s.llm.Extract(ctx, text, s.fields.Map())
	if err != nil {
		s.logger.Printf("session %s: extraction failed: %v", s.id, err)
		s.events.LogAsync(s.id, s.conversationID, eventlog.EventExtractionFailed, map[string]any{
			"error": err.Error(),
		})
	} else if mapped := lead.MapFields(extracted); len(mapped) > 0 {
		s.fields = s.fields.Merge(mapped)
		if err := s.persistFields(ctx, mapped); err != nil {
			return nil, err
		}
	}

	reply, err := s.llm.Generate(ctx, text, history, s.fields.Map())
	if err != nil {
		s.logger.Printf("session %s: generation failed: %v", s.id, err)
		sentry.CaptureException(err)
		s.events.LogAsync(s.id, s.conversationID, eventlog.EventLLMError, map[string]any{
			"error": err.Error(),
		})
		reply = fallbackApology
	}

	if err := s.recordMessage(ctx, store.SenderAgent, reply); err != nil {
		return nil, err
	}
	s.lastReply = reply

	return &TurnResult{Reply: reply, Intent: intent, Fields: s.fields}, nil
}

// End closes the session. The conversation row, if any, is marked ended;
// in-memory state is cleared so a later Start greets fresh.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		s.state = StateEnded
		return nil
	}

	if s.conversationID != nil {
		if err := s.store.EndConversation(ctx, *s.conversationID, time.Now()); err != nil {
			return err
		}
	}
	s.events.LogAsync(s.id, s.conversationID, eventlog.EventSessionEnded, map[string]any{
		"fields_known": len(s.fields.Map()),
	})

	s.state = StateEnded
	s.leadID = nil
	s.conversationID = nil
	s.fields = lead.Fields{}
	s.history = nil
	s.buffered = nil
	s.lastReply = ""
	return nil
}

// recordMessage appends a turn to history and persists it, buffering when no
// conversation row exists yet. Buffered turns keep their original timestamps.
func (s *Session) recordMessage(ctx context.Context, sender, content string) error {
	s.history = append(s.history, llm.Message{Sender: sender, Content: content})

	m := store.Message{Sender: sender, Content: content, Timestamp: time.Now()}
	if s.conversationID == nil {
		s.buffered = append(s.buffered, m)
		return nil
	}
	m.ConversationID = *s.conversationID
	_, err := s.store.AddMessage(ctx, m)
	return err
}

// flushBuffered writes turns gathered before the conversation row existed.
func (s *Session) flushBuffered(ctx context.Context) error {
	if s.conversationID == nil {
		return nil
	}
	for _, m := range s.buffered {
		m.ConversationID = *s.conversationID
		if _, err := s.store.AddMessage(ctx, m); err != nil {
			return err
		}
	}
	s.buffered = nil
	return nil
}

// persistFields writes newly merged fields through to the store. An email
// match against a stored lead rebinds the session to that lead and overlays
// the session's fields on top of the stored profile. A session without a
// lead row gets one as soon as an identity field is known.
func (s *Session) persistFields(ctx context.Context, mapped map[string]string) error {
	if email, ok := mapped["email"]; ok {
		stored, err := s.store.GetLeadByEmail(ctx, email)
		switch {
		case err == nil && (s.leadID == nil || *s.leadID != stored.ID):
			merged := fieldsFromLead(stored)
			if details, derr := s.store.GetLeadDetails(ctx, stored.ID); derr == nil {
				merged = merged.Merge(fieldsFromDetails(details).Map())
			} else if !errors.Is(derr, pgx.ErrNoRows) {
				return derr
			}
			s.fields = merged.Merge(s.fields.Map())
			s.leadID = &stored.ID
			s.events.LogAsync(s.id, s.conversationID, eventlog.EventLeadRebound, map[string]any{
				"lead_id": stored.ID,
			})
		case err != nil && !errors.Is(err, pgx.ErrNoRows):
			return err
		}
	}

	if s.leadID == nil && hasIdentity(s.fields) {
		id, err := s.store.CreateLead(ctx, leadFromFields(s.fields))
		if err != nil {
			return err
		}
		s.leadID = &id
		s.events.LogAsync(s.id, s.conversationID, eventlog.EventLeadCreated, map[string]any{
			"lead_id": id,
		})
		if s.notifier != nil {
			s.notifier.NotifyNewLead(ctx, id, s.fields)
		}
	} else if s.leadID != nil {
		if err := s.store.UpdateLead(ctx, *s.leadID, leadFromFields(s.fields)); err != nil {
			return err
		}
	}

	if s.leadID == nil {
		return nil // nothing to attach details or transcript to yet
	}

	if d := detailsFromFields(*s.leadID, s.fields); d.Needs != "" || d.Budget != "" ||
		d.ProductInterest != "" || d.Timeline != "" {
		if err := s.store.UpsertLeadDetails(ctx, d); err != nil {
			return err
		}
	}

	if s.conversationID == nil {
		convID, err := s.store.StartConversation(ctx, s.leadID, s.startedAt)
		if err != nil {
			return err
		}
		s.conversationID = &convID
		if err := s.flushBuffered(ctx); err != nil {
			return err
		}
	}
	return nil
}

// hasIdentity reports whether any field identifying the prospect is known.
func hasIdentity(f lead.Fields) bool {
	return f.Name != "" || f.Company != "" || f.Email != "" || f.Phone != ""
}

func fieldsFromLead(l *store.Lead) lead.Fields {
	return lead.Fields{Name: l.Name, Company: l.Company, Email: l.Email, Phone: l.Phone}
}

func fieldsFromDetails(d *store.LeadDetails) lead.Fields {
	return lead.Fields{Needs: d.Needs, Budget: d.Budget, ProductInterest: d.ProductInterest, Timeline: d.Timeline}
}

func leadFromFields(f lead.Fields) store.Lead {
	return store.Lead{Name: f.Name, Company: f.Company, Email: f.Email, Phone: f.Phone}
}

func detailsFromFields(leadID int64, f lead.Fields) store.LeadDetails {
	return store.LeadDetails{
		LeadID:          leadID,
		Needs:           f.Needs,
		Budget:          f.Budget,
		ProductInterest: f.ProductInterest,
		Timeline:        f.Timeline,
	}
}
