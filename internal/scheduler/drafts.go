package scheduler

import (
	"context"
	"time"

	"github.com/hellotonatural/jeeves-backend/internal/model"
)

type InitialDraftsResult struct {
	Drafted              int `json:"drafted"`
	SkippedExistingDraft int `json:"skipped_existing_draft"`
	SkippedMissingRef    int `json:"skipped_missing_ref"`
	Failed               int `json:"failed"`
}

// GenerateInitialDrafts drafts the first outbound email for threads still in
// new/drafting. Re-running is safe: threads that already have any outbound
// message are skipped.
func (j *Jobs) GenerateInitialDrafts(ctx context.Context, limit int) (InitialDraftsResult, error) {
	now := j.now()
	log := j.log().WithField("job", "initial_drafts")

	var result InitialDraftsResult
	threads, err := j.Threads.ListByStages([]string{model.StageNew, model.StageDrafting}, limit)
	if err != nil {
		return result, err
	}

	for _, t := range threads {
		hasOutbound, err := j.Messages.HasOutbound(t.ID)
		if err != nil {
			log.WithError(err).WithField("thread_id", t.ID).Warn("outbound lookup failed")
			result.Failed++
			continue
		}
		if hasOutbound {
			result.SkippedExistingDraft++
			continue
		}

		inf, err := j.Influencers.GetByID(t.InfluencerID)
		if err != nil || inf == nil {
			result.SkippedMissingRef++
			continue
		}
		campaign, err := j.Campaigns.GetByID(t.CampaignID)
		if err != nil || campaign == nil {
			result.SkippedMissingRef++
			continue
		}

		d, err := j.Drafts.Outreach(ctx, campaign.BrandContext(), influencerView(inf), campaign.Offer())
		if err != nil {
			log.WithError(err).WithField("thread_id", t.ID).Warn("draft generation failed")
			result.Failed++
			continue
		}

		if err := j.Messages.Create(draftMessage(t.ID, d, now)); err != nil {
			log.WithError(err).WithField("thread_id", t.ID).Warn("draft persist failed")
			result.Failed++
			continue
		}
		if err := j.Threads.MarkNeedsApproval(t.ID); err != nil {
			log.WithError(err).WithField("thread_id", t.ID).Warn("stage update failed")
			result.Failed++
			continue
		}
		result.Drafted++
	}

	log.WithFields(map[string]any{
		"drafted":          result.Drafted,
		"skipped_existing": result.SkippedExistingDraft,
		"skipped_missing":  result.SkippedMissingRef,
		"failed":           result.Failed,
	}).Info("initial draft run complete")
	return result, nil
}

type FollowupDraftsResult struct {
	Drafted             int `json:"drafted"`
	SkippedReplied      int `json:"skipped_replied"`
	SkippedNeverSent    int `json:"skipped_never_sent"`
	SkippedRecentSend   int `json:"skipped_recent_send"`
	SkippedPendingDraft int `json:"skipped_pending_draft"`
	SkippedMissingRef   int `json:"skipped_missing_ref"`
	Failed              int `json:"failed"`
}

// GenerateFollowupDrafts drafts a nudge for waiting threads whose follow-up
// is due and unanswered. daysSinceLastSend guards against chasing too soon
// after the previous send.
func (j *Jobs) GenerateFollowupDrafts(ctx context.Context, daysSinceLastSend, limit int) (FollowupDraftsResult, error) {
	now := j.now()
	log := j.log().WithField("job", "followup_drafts")

	var result FollowupDraftsResult
	threads, err := j.Threads.ListDueFollowups(now, limit)
	if err != nil {
		return result, err
	}

	for _, t := range threads {
		// They replied; the stage should already reflect it, this is a
		// safety check against stale follow-up schedules.
		hasInbound, err := j.Messages.HasInbound(t.ID)
		if err != nil {
			result.Failed++
			continue
		}
		if hasInbound {
			result.SkippedReplied++
			continue
		}

		// State-consistency guard: a follow-up only makes sense after an
		// actual send.
		lastSent, err := j.Messages.LastSentAt(t.ID)
		if err != nil {
			result.Failed++
			continue
		}
		if lastSent == nil {
			result.SkippedNeverSent++
			continue
		}
		if daysSinceLastSend > 0 && now.Sub(*lastSent) < time.Duration(daysSinceLastSend)*24*time.Hour {
			result.SkippedRecentSend++
			continue
		}

		pending, err := j.Messages.HasPendingDraft(t.ID)
		if err != nil {
			result.Failed++
			continue
		}
		if pending {
			result.SkippedPendingDraft++
			continue
		}

		inf, err := j.Influencers.GetByID(t.InfluencerID)
		if err != nil || inf == nil {
			result.SkippedMissingRef++
			continue
		}
		campaign, err := j.Campaigns.GetByID(t.CampaignID)
		if err != nil || campaign == nil {
			result.SkippedMissingRef++
			continue
		}

		d, err := j.Drafts.Followup(ctx, campaign.BrandContext(), influencerView(inf), campaign.Offer())
		if err != nil {
			log.WithError(err).WithField("thread_id", t.ID).Warn("follow-up generation failed")
			result.Failed++
			continue
		}

		if err := j.Messages.Create(draftMessage(t.ID, d, now)); err != nil {
			result.Failed++
			continue
		}
		if err := j.Threads.MarkNeedsApproval(t.ID); err != nil {
			result.Failed++
			continue
		}
		result.Drafted++
	}

	log.WithFields(map[string]any{
		"drafted":         result.Drafted,
		"skipped_replied": result.SkippedReplied,
		"failed":          result.Failed,
	}).Info("follow-up draft run complete")
	return result, nil
}
