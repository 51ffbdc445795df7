package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hellotonatural/jeeves-backend/internal/apperrors"
	"github.com/hellotonatural/jeeves-backend/internal/model"
)

type ThreadRepositoryInterface interface {
	Create(t *model.OutreachThread) error
	GetByID(id uuid.UUID) (*model.OutreachThread, error)
	FindByPair(campaignID, influencerID uuid.UUID) (*model.OutreachThread, error)
	List(stage string, limit int) ([]*model.OutreachThread, error)
	ListByStages(stages []string, limit int) ([]*model.OutreachThread, error)
	ListDueFollowups(now time.Time, limit int) ([]*model.OutreachThread, error)
	ExistingInfluencerIDs(campaignID uuid.UUID) (map[uuid.UUID]bool, error)
	MarkNeedsApproval(id uuid.UUID) error
	MarkAwaitingReply(id uuid.UUID, lastContactAt, nextFollowupAt time.Time) error
	MarkReplied(id uuid.UUID, receivedAt time.Time) error
}

type ThreadRepository struct {
	DB *sql.DB
}

const threadColumns = `id, campaign_id, influencer_id, stage, deal_terms, last_contact_at, next_followup_at, created_at`

func scanThread(row interface{ Scan(...any) error }) (*model.OutreachThread, error) {
	var t model.OutreachThread
	err := row.Scan(&t.ID, &t.CampaignID, &t.InfluencerID, &t.Stage, &t.DealTerms,
		&t.LastContactAt, &t.NextFollowupAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new thread. The unique (campaign_id, influencer_id) index
// is the arbiter against concurrent duplicates; a violation comes back as
// apperrors.ErrThreadExists.
func (r *ThreadRepository) Create(t *model.OutreachThread) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Stage == "" {
		t.Stage = model.StageNew
	}
	t.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO outreach_threads (id, campaign_id, influencer_id, stage, deal_terms, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := r.DB.Exec(query, t.ID, t.CampaignID, t.InfluencerID, t.Stage, t.DealTerms, t.CreatedAt)
	if IsUniqueViolation(err) {
		return apperrors.ErrThreadExists
	}
	return err
}

func (r *ThreadRepository) GetByID(id uuid.UUID) (*model.OutreachThread, error) {
	query := `SELECT ` + threadColumns + ` FROM outreach_threads WHERE id=$1`
	t, err := scanThread(r.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewThreadNotFound(id)
	}
	return t, err
}

// FindByPair returns nil when no thread exists for the pair.
func (r *ThreadRepository) FindByPair(campaignID, influencerID uuid.UUID) (*model.OutreachThread, error) {
	query := `SELECT ` + threadColumns + ` FROM outreach_threads WHERE campaign_id=$1 AND influencer_id=$2`
	t, err := scanThread(r.DB.QueryRow(query, campaignID, influencerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *ThreadRepository) List(stage string, limit int) ([]*model.OutreachThread, error) {
	query := `SELECT ` + threadColumns + ` FROM outreach_threads`
	args := []any{}
	if stage != "" {
		query += ` WHERE stage=$1`
		args = append(args, stage)
	}
	// soonest follow-up first, then most recent contact, then stable fallback
	query += ` ORDER BY next_followup_at ASC NULLS LAST, last_contact_at DESC NULLS LAST, id DESC`
	if limit < 1 {
		limit = 200
	}
	args = append(args, limit)
	if stage != "" {
		query += ` LIMIT $2`
	} else {
		query += ` LIMIT $1`
	}
	return r.queryThreads(query, args...)
}

func (r *ThreadRepository) ListByStages(stages []string, limit int) ([]*model.OutreachThread, error) {
	query := `SELECT ` + threadColumns + ` FROM outreach_threads
        WHERE stage = ANY($1)
        ORDER BY created_at ASC
        LIMIT $2`
	return r.queryThreads(query, pq.Array(stages), limit)
}

func (r *ThreadRepository) ListDueFollowups(now time.Time, limit int) ([]*model.OutreachThread, error) {
	query := `SELECT ` + threadColumns + ` FROM outreach_threads
        WHERE stage=$1 AND next_followup_at IS NOT NULL AND next_followup_at <= $2
        ORDER BY next_followup_at ASC
        LIMIT $3`
	return r.queryThreads(query, model.StageWaiting, now, limit)
}

func (r *ThreadRepository) ExistingInfluencerIDs(campaignID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.DB.Query(`SELECT influencer_id FROM outreach_threads WHERE campaign_id=$1`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// MarkNeedsApproval moves a thread to needs_approval and clears any pending
// follow-up schedule.
func (r *ThreadRepository) MarkNeedsApproval(id uuid.UUID) error {
	query := `UPDATE outreach_threads SET stage=$1, next_followup_at=NULL WHERE id=$2`
	_, err := r.DB.Exec(query, model.StageNeedsApproval, id)
	return err
}

func (r *ThreadRepository) MarkAwaitingReply(id uuid.UUID, lastContactAt, nextFollowupAt time.Time) error {
	query := `UPDATE outreach_threads SET stage=$1, last_contact_at=$2, next_followup_at=$3 WHERE id=$4`
	_, err := r.DB.Exec(query, model.StageWaiting, lastContactAt, nextFollowupAt, id)
	return err
}

// MarkReplied is terminal: stage=replied and follow-ups stop unconditionally.
func (r *ThreadRepository) MarkReplied(id uuid.UUID, receivedAt time.Time) error {
	query := `UPDATE outreach_threads SET stage=$1, last_contact_at=$2, next_followup_at=NULL WHERE id=$3`
	_, err := r.DB.Exec(query, model.StageReplied, receivedAt, id)
	return err
}

func (r *ThreadRepository) queryThreads(query string, args ...any) ([]*model.OutreachThread, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := []*model.OutreachThread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

var _ ThreadRepositoryInterface = (*ThreadRepository)(nil)
