package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hellotonatural/jeeves-backend/internal/apperrors"
	"github.com/hellotonatural/jeeves-backend/internal/model"
)

type MessageRepositoryInterface interface {
	Create(m *model.Message) error
	GetByID(id uuid.UUID) (*model.Message, error)
	ListByThread(threadID uuid.UUID, limit int) ([]*model.Message, error)
	HasOutbound(threadID uuid.UUID) (bool, error)
	HasInbound(threadID uuid.UUID) (bool, error)
	HasPendingDraft(threadID uuid.UUID) (bool, error)
	LastSentAt(threadID uuid.UUID) (*time.Time, error)
	ListCampaignDrafts(campaignID uuid.UUID, limit int) ([]*model.Message, error)
	UpdateStatus(id uuid.UUID, status string) error
	MarkSent(id uuid.UUID, providerMsgID string, sentAt time.Time) error
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, thread_id, channel, direction, status, subject, body, provider_msg_id, created_at, sent_at`

func scanMessage(row interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.ThreadID, &m.Channel, &m.Direction, &m.Status,
		&m.Subject, &m.Body, &m.ProviderMsgID, &m.CreatedAt, &m.SentAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Create(m *model.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
        INSERT INTO messages (id, thread_id, channel, direction, status, subject, body, provider_msg_id, created_at, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.Exec(query, m.ID, m.ThreadID, m.Channel, m.Direction, m.Status,
		m.Subject, m.Body, m.ProviderMsgID, m.CreatedAt, m.SentAt)
	return err
}

func (r *MessageRepository) GetByID(id uuid.UUID) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id=$1`
	m, err := scanMessage(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewMessageNotFound(id)
	}
	return m, err
}

func (r *MessageRepository) ListByThread(threadID uuid.UUID, limit int) ([]*model.Message, error) {
	if limit < 1 {
		limit = 500
	}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE thread_id=$1 ORDER BY created_at ASC LIMIT $2`
	return r.queryMessages(query, threadID, limit)
}

func (r *MessageRepository) HasOutbound(threadID uuid.UUID) (bool, error) {
	return r.exists(`SELECT 1 FROM messages WHERE thread_id=$1 AND direction=$2 LIMIT 1`,
		threadID, model.DirectionOutbound)
}

func (r *MessageRepository) HasInbound(threadID uuid.UUID) (bool, error) {
	return r.exists(`SELECT 1 FROM messages WHERE thread_id=$1 AND direction=$2 LIMIT 1`,
		threadID, model.DirectionInbound)
}

// HasPendingDraft reports an undispatched outbound draft or approved message.
func (r *MessageRepository) HasPendingDraft(threadID uuid.UUID) (bool, error) {
	return r.exists(`SELECT 1 FROM messages WHERE thread_id=$1 AND direction=$2 AND status IN ($3, $4) LIMIT 1`,
		threadID, model.DirectionOutbound, model.MessageStatusDraft, model.MessageStatusApproved)
}

// LastSentAt returns the latest successful send time, nil when nothing was
// ever actually sent.
func (r *MessageRepository) LastSentAt(threadID uuid.UUID) (*time.Time, error) {
	query := `SELECT sent_at FROM messages
        WHERE thread_id=$1 AND direction=$2 AND status=$3 AND sent_at IS NOT NULL
        ORDER BY sent_at DESC LIMIT 1`
	var sentAt time.Time
	err := r.DB.QueryRow(query, threadID, model.DirectionOutbound, model.MessageStatusSent).Scan(&sentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sentAt, nil
}

// ListCampaignDrafts returns outbound drafts for non-replied threads in the
// campaign, oldest first.
func (r *MessageRepository) ListCampaignDrafts(campaignID uuid.UUID, limit int) ([]*model.Message, error) {
	query := `
        SELECT m.id, m.thread_id, m.channel, m.direction, m.status, m.subject, m.body,
               m.provider_msg_id, m.created_at, m.sent_at
        FROM messages m
        JOIN outreach_threads t ON t.id = m.thread_id
        WHERE t.campaign_id=$1 AND t.stage <> $2 AND m.direction=$3 AND m.status=$4
        ORDER BY m.created_at ASC
        LIMIT $5
    `
	return r.queryMessages(query, campaignID, model.StageReplied, model.DirectionOutbound, model.MessageStatusDraft, limit)
}

func (r *MessageRepository) UpdateStatus(id uuid.UUID, status string) error {
	_, err := r.DB.Exec(`UPDATE messages SET status=$1 WHERE id=$2`, status, id)
	return err
}

func (r *MessageRepository) MarkSent(id uuid.UUID, providerMsgID string, sentAt time.Time) error {
	query := `UPDATE messages SET status=$1, provider_msg_id=$2, sent_at=$3 WHERE id=$4`
	_, err := r.DB.Exec(query, model.MessageStatusSent, providerMsgID, sentAt, id)
	return err
}

func (r *MessageRepository) exists(query string, args ...any) (bool, error) {
	var tmp int
	err := r.DB.QueryRow(query, args...).Scan(&tmp)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *MessageRepository) queryMessages(query string, args ...any) ([]*model.Message, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
