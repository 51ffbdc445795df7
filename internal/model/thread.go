package model

import (
	"time"

	"github.com/google/uuid"
)

// Thread stages. "drafting" is transitional and scheduled the same as "new".
// "replied" is terminal. A failed send is a message status, not a stage.
const (
	StageNew           = "new"
	StageDrafting      = "drafting"
	StageNeedsApproval = "needs_approval"
	StageWaiting       = "waiting"
	StageReplied       = "replied"
)

// OutreachThread is one conversation: exactly one campaign/influencer pair.
// NextFollowupAt is set only while the thread is waiting; null means no
// follow-up is scheduled.
type OutreachThread struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CampaignID   uuid.UUID `db:"campaign_id" json:"campaign_id"`
	InfluencerID uuid.UUID `db:"influencer_id" json:"influencer_id"`

	Stage     string  `db:"stage" json:"stage"`
	DealTerms JSONMap `db:"deal_terms" json:"deal_terms,omitempty"`

	LastContactAt  *time.Time `db:"last_contact_at" json:"last_contact_at,omitempty"`
	NextFollowupAt *time.Time `db:"next_followup_at" json:"next_followup_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
