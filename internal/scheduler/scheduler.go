// Package scheduler holds the batch jobs that advance outreach threads in
// bulk. Every job is idempotent per invocation: already-processed rows are
// skipped, one row's error never aborts the batch, and each unit of work is
// committed independently.
package scheduler

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hellotonatural/jeeves-backend/internal/draft"
	"github.com/hellotonatural/jeeves-backend/internal/email"
	"github.com/hellotonatural/jeeves-backend/internal/model"
)

// Store interfaces are scoped to what the jobs actually touch so tests can
// run against in-memory fakes.

type ThreadStore interface {
	Create(t *model.OutreachThread) error
	GetByID(id uuid.UUID) (*model.OutreachThread, error)
	ListByStages(stages []string, limit int) ([]*model.OutreachThread, error)
	ListDueFollowups(now time.Time, limit int) ([]*model.OutreachThread, error)
	ExistingInfluencerIDs(campaignID uuid.UUID) (map[uuid.UUID]bool, error)
	MarkNeedsApproval(id uuid.UUID) error
	MarkAwaitingReply(id uuid.UUID, lastContactAt, nextFollowupAt time.Time) error
}

type MessageStore interface {
	Create(m *model.Message) error
	HasOutbound(threadID uuid.UUID) (bool, error)
	HasInbound(threadID uuid.UUID) (bool, error)
	HasPendingDraft(threadID uuid.UUID) (bool, error)
	LastSentAt(threadID uuid.UUID) (*time.Time, error)
	ListCampaignDrafts(campaignID uuid.UUID, limit int) ([]*model.Message, error)
	UpdateStatus(id uuid.UUID, status string) error
	MarkSent(id uuid.UUID, providerMsgID string, sentAt time.Time) error
}

type InfluencerStore interface {
	GetByID(id uuid.UUID) (*model.Influencer, error)
	ListCandidates(minScore float64, platform string, requireEmail bool, limit int) ([]*model.Influencer, error)
	ListStaleScores(before time.Time, limit int) ([]*model.Influencer, error)
	UpdateScores(id uuid.UUID, brandFit, risk, overall float64, breakdown any, at time.Time) error
	UpdateStatus(id uuid.UUID, status string) error
}

type CampaignStore interface {
	GetByID(id uuid.UUID) (*model.Campaign, error)
}

type Jobs struct {
	Threads     ThreadStore
	Messages    MessageStore
	Influencers InfluencerStore
	Campaigns   CampaignStore
	Drafts      draft.Generator
	Email       email.Provider
	Sender      email.Sender
	Log         *logrus.Entry

	// SendTimeout bounds a single provider call. Zero means 15s.
	SendTimeout time.Duration

	// Clock is sampled once at the start of each job invocation; the value
	// is threaded through the whole run. Nil means time.Now in UTC.
	Clock func() time.Time
}

func (j *Jobs) now() time.Time {
	if j.Clock != nil {
		return j.Clock()
	}
	return time.Now().UTC()
}

func (j *Jobs) log() *logrus.Entry {
	if j.Log != nil {
		return j.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func (j *Jobs) sendTimeout() time.Duration {
	if j.SendTimeout > 0 {
		return j.SendTimeout
	}
	return 15 * time.Second
}

func influencerView(inf *model.Influencer) draft.InfluencerView {
	v := draft.InfluencerView{
		Handle:    inf.Handle,
		Platform:  inf.Platform,
		Followers: inf.Followers,
	}
	if inf.DisplayName != nil {
		v.DisplayName = *inf.DisplayName
	}
	if inf.Bio != nil {
		v.Bio = *inf.Bio
	}
	if inf.ProfileURL != nil {
		v.ProfileURL = *inf.ProfileURL
	}
	return v
}

func draftMessage(threadID uuid.UUID, d draft.Draft, createdAt time.Time) *model.Message {
	msg := &model.Message{
		ThreadID:  threadID,
		Channel:   model.ChannelEmail,
		Direction: model.DirectionOutbound,
		Status:    model.MessageStatusDraft,
		Body:      d.Body,
		CreatedAt: createdAt,
	}
	if d.Subject != "" {
		subject := d.Subject
		msg.Subject = &subject
	}
	return msg
}
