package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hellotonatural/jeeves-backend/internal/apperrors"
	"github.com/hellotonatural/jeeves-backend/internal/model"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
)

// ThreadService owns the thread lifecycle operations that are not batch
// jobs: idempotent creation and inbound reply ingestion.
type ThreadService struct {
	Threads     repository.ThreadRepositoryInterface
	Messages    repository.MessageRepositoryInterface
	Campaigns   repository.CampaignRepositoryInterface
	Influencers repository.InfluencerRepositoryInterface
}

type BulkCreateResult struct {
	CreatedCount            int                     `json:"created_count"`
	SkippedExistingCount    int                     `json:"skipped_existing_count"`
	MissingInfluencersCount int                     `json:"missing_influencers_count"`
	Threads                 []*model.OutreachThread `json:"threads"`
}

// CreateThread creates a thread for the pair or returns the existing one.
// Concurrent creators that slip past the pre-check land on the unique
// constraint and are resolved the same way.
func (s *ThreadService) CreateThread(campaignID, influencerID uuid.UUID) (*model.OutreachThread, error) {
	if _, err := s.Campaigns.GetByID(campaignID); err != nil {
		return nil, err
	}
	if _, err := s.Influencers.GetByID(influencerID); err != nil {
		return nil, err
	}

	existing, err := s.Threads.FindByPair(campaignID, influencerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	thread := &model.OutreachThread{
		CampaignID:   campaignID,
		InfluencerID: influencerID,
		Stage:        model.StageNew,
	}
	err = s.Threads.Create(thread)
	if errors.Is(err, apperrors.ErrThreadExists) {
		return s.Threads.FindByPair(campaignID, influencerID)
	}
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// BulkCreate creates threads for many influencers at once. Missing
// influencers and existing pairs are counted, never fatal.
func (s *ThreadService) BulkCreate(campaignID uuid.UUID, influencerIDs []uuid.UUID) (*BulkCreateResult, error) {
	if _, err := s.Campaigns.GetByID(campaignID); err != nil {
		return nil, err
	}

	existing, err := s.Threads.ExistingInfluencerIDs(campaignID)
	if err != nil {
		return nil, err
	}

	result := &BulkCreateResult{Threads: []*model.OutreachThread{}}
	for _, infID := range influencerIDs {
		if _, err := s.Influencers.GetByID(infID); err != nil {
			if apperrors.IsNotFound(err) {
				result.MissingInfluencersCount++
				continue
			}
			return nil, err
		}
		if existing[infID] {
			result.SkippedExistingCount++
			continue
		}

		thread := &model.OutreachThread{
			CampaignID:   campaignID,
			InfluencerID: infID,
			Stage:        model.StageNew,
		}
		err := s.Threads.Create(thread)
		if errors.Is(err, apperrors.ErrThreadExists) {
			result.SkippedExistingCount++
			continue
		}
		if err != nil {
			return nil, err
		}
		result.CreatedCount++
		result.Threads = append(result.Threads, thread)
	}
	return result, nil
}

// IngestInbound records a reply: append the received message, mark the
// thread replied, and stop follow-ups unconditionally.
func (s *ThreadService) IngestInbound(threadID uuid.UUID, channel, subject, body string, receivedAt time.Time) (*model.Message, error) {
	if _, err := s.Threads.GetByID(threadID); err != nil {
		return nil, err
	}

	if channel == "" {
		channel = model.ChannelEmail
	}
	if body == "" {
		body = "(no body)"
	}

	msg := &model.Message{
		ThreadID:  threadID,
		Channel:   channel,
		Direction: model.DirectionInbound,
		Status:    model.MessageStatusReceived,
		Body:      body,
		CreatedAt: receivedAt,
	}
	if subject != "" {
		msg.Subject = &subject
	}
	if err := s.Messages.Create(msg); err != nil {
		return nil, err
	}

	if err := s.Threads.MarkReplied(threadID, receivedAt); err != nil {
		return nil, err
	}
	return msg, nil
}
