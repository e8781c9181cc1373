package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Message senders as stored in the messages table.
const (
	SenderAgent = "agent"
	SenderLead  = "lead"
)

// Lead represents a prospect's identity record.
type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeadDetails holds the qualification attributes gathered during
// conversations, one row per lead.
type LeadDetails struct {
	LeadID          int64     `json:"lead_id"`
	Needs           string    `json:"needs"`
	Budget          string    `json:"budget"`
	ProductInterest string    `json:"product_interest"`
	Timeline        string    `json:"timeline"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Conversation represents one session between the agent and a lead.
type Conversation struct {
	ID        int64      `json:"id"`
	LeadID    *int64     `json:"lead_id,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Message is a single turn within a conversation.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
}

// LeadListItem is the dashboard list read model.
type LeadListItem struct {
	Lead
	ConversationCount int        `json:"conversation_count"`
	LastContactAt     *time.Time `json:"last_contact_at,omitempty"`
}

// LeadDetail is the dashboard detail read model.
type LeadDetail struct {
	Lead
	Details           *LeadDetails `json:"details,omitempty"`
	ConversationCount int          `json:"conversation_count"`
}

// ============================================================================
// Lead operations
// ============================================================================

// CreateLead inserts a lead. When the email is already on file the existing
// row is updated instead and its id returned, so one address never produces
// two leads. Blank incoming values never erase stored ones.
func (s *Store) CreateLead(ctx context.Context, l Lead) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO leads (name, company, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) WHERE email <> '' DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), leads.name),
			company = COALESCE(NULLIF(EXCLUDED.company, ''), leads.company),
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
			updated_at = now()
		RETURNING id
	`, l.Name, l.Company, l.Email, l.Phone).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateLead overlays non-empty values onto an existing lead row.
func (s *Store) UpdateLead(ctx context.Context, id int64, l Lead) error {
	_, err := s.db.Exec(ctx, `
		UPDATE leads SET
			name = COALESCE(NULLIF($2, ''), name),
			company = COALESCE(NULLIF($3, ''), company),
			email = COALESCE(NULLIF($4, ''), email),
			phone = COALESCE(NULLIF($5, ''), phone),
			updated_at = now()
		WHERE id = $1
	`, id, l.Name, l.Company, l.Email, l.Phone)
	return err
}

func (s *Store) GetLeadByID(ctx context.Context, id int64) (*Lead, error) {
	var l Lead
	err := s.db.QueryRow(ctx, `
		SELECT id, name, company, email, phone, created_at, updated_at
		FROM leads WHERE id = $1
	`, id).Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetLeadByEmail returns the lead holding the address, or pgx.ErrNoRows.
func (s *Store) GetLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	var l Lead
	err := s.db.QueryRow(ctx, `
		SELECT id, name, company, email, phone, created_at, updated_at
		FROM leads WHERE email = $1 AND email <> ''
	`, email).Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpsertLeadDetails inserts or updates the qualification row for a lead.
// Blank incoming values keep whatever is already stored.
func (s *Store) UpsertLeadDetails(ctx context.Context, d LeadDetails) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO lead_details (lead_id, needs, budget, product_interest, timeline)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lead_id) DO UPDATE SET
			needs = COALESCE(NULLIF(EXCLUDED.needs, ''), lead_details.needs),
			budget = COALESCE(NULLIF(EXCLUDED.budget, ''), lead_details.budget),
			product_interest = COALESCE(NULLIF(EXCLUDED.product_interest, ''), lead_details.product_interest),
			timeline = COALESCE(NULLIF(EXCLUDED.timeline, ''), lead_details.timeline),
			updated_at = now()
	`, d.LeadID, d.Needs, d.Budget, d.ProductInterest, d.Timeline)
	return err
}

func (s *Store) GetLeadDetails(ctx context.Context, leadID int64) (*LeadDetails, error) {
	var d LeadDetails
	err := s.db.QueryRow(ctx, `
		SELECT lead_id, needs, budget, product_interest, timeline, updated_at
		FROM lead_details WHERE lead_id = $1
	`, leadID).Scan(&d.LeadID, &d.Needs, &d.Budget, &d.ProductInterest, &d.Timeline, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ============================================================================
// Conversation operations
// ============================================================================

// StartConversation opens a conversation row. startedAt is supplied by the
// caller so a row created after buffering still carries the real session
// start time.
func (s *Store) StartConversation(ctx context.Context, leadID *int64, startedAt time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO conversations (lead_id, started_at)
		VALUES ($1, $2)
		RETURNING id
	`, leadID, startedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// EndConversation marks the conversation ended. The guard keeps ended_at
// immutable once set.
func (s *Store) EndConversation(ctx context.Context, id int64, endedAt time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE conversations
		SET ended_at = $2
		WHERE id = $1 AND ended_at IS NULL
	`, id, endedAt)
	return err
}

func (s *Store) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var c Conversation
	err := s.db.QueryRow(ctx, `
		SELECT id, lead_id, started_at, ended_at
		FROM conversations WHERE id = $1
	`, id).Scan(&c.ID, &c.LeadID, &c.StartedAt, &c.EndedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ============================================================================
// Message operations
// ============================================================================

// AddMessage appends a turn to a conversation. The caller supplies the
// timestamp so buffered messages keep their original order when flushed.
func (s *Store) AddMessage(ctx context.Context, m Message) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender, content, timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, m.ConversationID, m.Sender, m.Content, m.Timestamp).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListMessages returns a conversation's turns in chronological order.
func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, conversation_id, sender, content, timestamp
		FROM messages
		WHERE conversation_id = $1
		ORDER BY timestamp ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ============================================================================
// Dashboard read models
// ============================================================================

// ListLeads returns leads newest-first with conversation counts.
func (s *Store) ListLeads(ctx context.Context, limit, offset int) ([]LeadListItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT l.id, l.name, l.company, l.email, l.phone, l.created_at, l.updated_at,
		       COUNT(c.id) AS conversation_count,
		       MAX(c.started_at) AS last_contact_at
		FROM leads l
		LEFT JOIN conversations c ON c.lead_id = l.id
		GROUP BY l.id
		ORDER BY l.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LeadListItem
	for rows.Next() {
		var it LeadListItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Company, &it.Email, &it.Phone,
			&it.CreatedAt, &it.UpdatedAt, &it.ConversationCount, &it.LastContactAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetLeadDetail returns one lead with its qualification row and conversation
// count. A lead without details yields Details == nil.
func (s *Store) GetLeadDetail(ctx context.Context, id int64) (*LeadDetail, error) {
	lead, err := s.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &LeadDetail{Lead: *lead}

	details, err := s.GetLeadDetails(ctx, id)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}
	if err == nil {
		detail.Details = details
	}

	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM conversations WHERE lead_id = $1
	`, id).Scan(&detail.ConversationCount)
	if err != nil {
		return nil, err
	}
	return detail, nil
}
