package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hellotonatural/jeeves-backend/internal/apperrors"
	"github.com/hellotonatural/jeeves-backend/internal/email"
	"github.com/hellotonatural/jeeves-backend/internal/model"
)

// overfetchFactor absorbs candidates lost to skips when selecting for
// fill-and-draft.
const overfetchFactor = 5

type FillParams struct {
	CampaignID    uuid.UUID
	MinScore      float64
	MaxNewThreads int
	Platform      string
	RequireEmail  bool
}

type FillAndDraftResult struct {
	Created         int `json:"created"`
	Drafted         int `json:"drafted"`
	SkippedExisting int `json:"skipped_existing"`
	SkippedNoEmail  int `json:"skipped_no_email"`
	SkippedNoScore  int `json:"skipped_no_score"`
	Failed          int `json:"failed"`
}

// FillAndDraft selects the best-scored candidates not yet in the campaign,
// opens threads for them, and drafts the first email immediately.
func (j *Jobs) FillAndDraft(ctx context.Context, p FillParams) (FillAndDraftResult, error) {
	now := j.now()
	log := j.log().WithField("job", "fill_and_draft").WithField("campaign_id", p.CampaignID)

	var result FillAndDraftResult
	campaign, err := j.Campaigns.GetByID(p.CampaignID)
	if err != nil {
		return result, err
	}

	if p.MaxNewThreads < 1 {
		return result, fmt.Errorf("max_new_threads must be positive")
	}

	existing, err := j.Threads.ExistingInfluencerIDs(p.CampaignID)
	if err != nil {
		return result, err
	}

	candidates, err := j.Influencers.ListCandidates(p.MinScore, p.Platform, p.RequireEmail, p.MaxNewThreads*overfetchFactor)
	if err != nil {
		return result, err
	}

	for _, cand := range candidates {
		if result.Created >= p.MaxNewThreads {
			break
		}
		if existing[cand.ID] {
			result.SkippedExisting++
			continue
		}
		// Defensive re-checks; the candidate query already filters these.
		if cand.OverallScore == nil || *cand.OverallScore < p.MinScore {
			result.SkippedNoScore++
			continue
		}
		if p.RequireEmail && !cand.HasEmail() {
			result.SkippedNoEmail++
			continue
		}

		thread := &model.OutreachThread{
			CampaignID:   p.CampaignID,
			InfluencerID: cand.ID,
			Stage:        model.StageNew,
		}
		err := j.Threads.Create(thread)
		if errors.Is(err, apperrors.ErrThreadExists) {
			// lost the race to a concurrent run; same outcome as the
			// pre-check
			result.SkippedExisting++
			continue
		}
		if err != nil {
			log.WithError(err).WithField("influencer_id", cand.ID).Warn("thread create failed")
			result.Failed++
			continue
		}
		result.Created++

		if err := j.Influencers.UpdateStatus(cand.ID, model.InfluencerStatusQueued); err != nil {
			log.WithError(err).WithField("influencer_id", cand.ID).Warn("status update failed")
		}

		d, err := j.Drafts.Outreach(ctx, campaign.BrandContext(), influencerView(cand), campaign.Offer())
		if err != nil {
			// thread stays in new; the next initial-draft run picks it up
			log.WithError(err).WithField("thread_id", thread.ID).Warn("draft generation failed")
			result.Failed++
			continue
		}
		if err := j.Messages.Create(draftMessage(thread.ID, d, now)); err != nil {
			result.Failed++
			continue
		}
		if err := j.Threads.MarkNeedsApproval(thread.ID); err != nil {
			result.Failed++
			continue
		}
		result.Drafted++
	}

	log.WithFields(map[string]any{
		"created":          result.Created,
		"drafted":          result.Drafted,
		"skipped_existing": result.SkippedExisting,
	}).Info("fill-and-draft run complete")
	return result, nil
}

type SendParams struct {
	CampaignID   uuid.UUID
	Limit        int
	FollowupDays int
	RequireEmail bool
}

type ApproveAndSendResult struct {
	Sent                     int `json:"sent"`
	Failed                   int `json:"failed"`
	SkippedNoEmail           int `json:"skipped_no_email"`
	SkippedMissingInfluencer int `json:"skipped_missing_influencer"`
}

// ApproveAndSend approves and dispatches pending drafts for a campaign,
// oldest first. Each row's outcome commits independently: a failed send
// marks that message failed and the loop moves on.
func (j *Jobs) ApproveAndSend(ctx context.Context, p SendParams) (ApproveAndSendResult, error) {
	var result ApproveAndSendResult

	// Precondition failure is fatal to the whole invocation: it cannot be
	// partially satisfied.
	if j.Sender.FromEmail == "" {
		return result, fmt.Errorf("sender identity not configured: FROM_EMAIL is required")
	}

	now := j.now()
	log := j.log().WithField("job", "approve_and_send").WithField("campaign_id", p.CampaignID)

	followupDays := p.FollowupDays
	if followupDays < 1 {
		followupDays = 4
	}

	drafts, err := j.Messages.ListCampaignDrafts(p.CampaignID, p.Limit)
	if err != nil {
		return result, err
	}

	for _, msg := range drafts {
		thread, err := j.Threads.GetByID(msg.ThreadID)
		if err != nil || thread == nil {
			result.SkippedMissingInfluencer++
			continue
		}
		inf, err := j.Influencers.GetByID(thread.InfluencerID)
		if err != nil || inf == nil {
			result.SkippedMissingInfluencer++
			continue
		}
		if p.RequireEmail && !inf.HasEmail() {
			result.SkippedNoEmail++
			continue
		}

		if err := j.Messages.UpdateStatus(msg.ID, model.MessageStatusApproved); err != nil {
			result.Failed++
			continue
		}

		subject := ""
		if msg.Subject != nil {
			subject = *msg.Subject
		}
		toEmail := ""
		if inf.Email != nil {
			toEmail = *inf.Email
		}

		sendCtx, cancel := context.WithTimeout(ctx, j.sendTimeout())
		sent, err := j.Email.Send(sendCtx, email.SendRequest{
			ToEmail:   toEmail,
			Subject:   subject,
			BodyText:  msg.Body,
			FromEmail: j.Sender.FromEmail,
			FromName:  j.Sender.FromName,
			ReplyTo:   j.Sender.ReplyTo,
		})
		cancel()
		if err != nil {
			// terminal for this message; an operator drafts anew
			log.WithError(err).WithField("message_id", msg.ID).Warn("send failed")
			if err := j.Messages.UpdateStatus(msg.ID, model.MessageStatusFailed); err != nil {
				log.WithError(err).WithField("message_id", msg.ID).Warn("failed-status update failed")
			}
			result.Failed++
			continue
		}

		if err := j.Messages.MarkSent(msg.ID, sent.ProviderMsgID, now); err != nil {
			result.Failed++
			continue
		}
		if err := j.Threads.MarkAwaitingReply(thread.ID, now, now.AddDate(0, 0, followupDays)); err != nil {
			result.Failed++
			continue
		}
		if err := j.Influencers.UpdateStatus(inf.ID, model.InfluencerStatusContacted); err != nil {
			log.WithError(err).WithField("influencer_id", inf.ID).Warn("status update failed")
		}
		result.Sent++
	}

	log.WithFields(map[string]any{
		"sent":             result.Sent,
		"failed":           result.Failed,
		"skipped_no_email": result.SkippedNoEmail,
	}).Info("approve-and-send run complete")
	return result, nil
}

type PipelineParams struct {
	CampaignID    uuid.UUID
	MinScore      float64
	MaxNewThreads int
	Platform      string
	RequireEmail  bool
	SendLimit     int
	FollowupDays  int
}

type PipelineResult struct {
	Fill FillAndDraftResult   `json:"fill_and_draft"`
	Send ApproveAndSendResult `json:"approve_and_send"`
}

// RunPipeline chains fill-and-draft then approve-and-send for one campaign.
// The send stage does not run when the fill stage fails.
func (j *Jobs) RunPipeline(ctx context.Context, p PipelineParams) (PipelineResult, error) {
	var result PipelineResult

	fill, err := j.FillAndDraft(ctx, FillParams{
		CampaignID:    p.CampaignID,
		MinScore:      p.MinScore,
		MaxNewThreads: p.MaxNewThreads,
		Platform:      p.Platform,
		RequireEmail:  p.RequireEmail,
	})
	result.Fill = fill
	if err != nil {
		return result, err
	}

	sendLimit := p.SendLimit
	if sendLimit < 1 {
		sendLimit = p.MaxNewThreads
	}
	send, err := j.ApproveAndSend(ctx, SendParams{
		CampaignID:   p.CampaignID,
		Limit:        sendLimit,
		FollowupDays: p.FollowupDays,
		RequireEmail: p.RequireEmail,
	})
	result.Send = send
	return result, err
}
