package handler

import (
	"net/http"
	"time"

	"github.com/hellotonatural/jeeves-backend/internal/draft"
	"github.com/hellotonatural/jeeves-backend/internal/email"
	"github.com/hellotonatural/jeeves-backend/internal/model"
	"github.com/hellotonatural/jeeves-backend/internal/repository"
)

// MessageHandler covers the manual path: draft one message, approve it, send
// it. The batch jobs do the same thing in bulk.
type MessageHandler struct {
	Messages    repository.MessageRepositoryInterface
	Threads     repository.ThreadRepositoryInterface
	Influencers repository.InfluencerRepositoryInterface
	Campaigns   repository.CampaignRepositoryInterface

	Drafts draft.Generator
	Email  email.Provider
	Sender email.Sender

	FollowupDays int
}

// CreateDraft generates a draft for the thread: an outreach email for a
// fresh thread, a follow-up once something was already sent.
func (h *MessageHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	threadID, ok := pathUUID(r, "thread_id")
	if !ok {
		badRequest(w, "invalid thread id")
		return
	}
	thread, err := h.Threads.GetByID(threadID)
	if err != nil {
		writeError(w, err)
		return
	}
	if thread.Stage == model.StageReplied {
		badRequest(w, "thread already replied")
		return
	}

	inf, err := h.Influencers.GetByID(thread.InfluencerID)
	if err != nil {
		writeError(w, err)
		return
	}
	campaign, err := h.Campaigns.GetByID(thread.CampaignID)
	if err != nil {
		writeError(w, err)
		return
	}

	hasOutbound, err := h.Messages.HasOutbound(threadID)
	if err != nil {
		writeError(w, err)
		return
	}

	view := draft.InfluencerView{
		Handle:    inf.Handle,
		Platform:  inf.Platform,
		Followers: inf.Followers,
	}
	if inf.DisplayName != nil {
		view.DisplayName = *inf.DisplayName
	}
	if inf.Bio != nil {
		view.Bio = *inf.Bio
	}
	if inf.ProfileURL != nil {
		view.ProfileURL = *inf.ProfileURL
	}

	var d draft.Draft
	if hasOutbound {
		d, err = h.Drafts.Followup(r.Context(), campaign.BrandContext(), view, campaign.Offer())
	} else {
		d, err = h.Drafts.Outreach(r.Context(), campaign.BrandContext(), view, campaign.Offer())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	msg := &model.Message{
		ThreadID:  threadID,
		Channel:   model.ChannelEmail,
		Direction: model.DirectionOutbound,
		Status:    model.MessageStatusDraft,
		Body:      d.Body,
		CreatedAt: time.Now().UTC(),
	}
	if d.Subject != "" {
		subject := d.Subject
		msg.Subject = &subject
	}
	if err := h.Messages.Create(msg); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Threads.MarkNeedsApproval(threadID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid message id")
		return
	}
	msg, err := h.Messages.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if msg.Status != model.MessageStatusDraft {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "only draft messages can be approved, status is " + msg.Status,
		})
		return
	}

	if err := h.Messages.UpdateStatus(id, model.MessageStatusApproved); err != nil {
		writeError(w, err)
		return
	}
	msg.Status = model.MessageStatusApproved
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		badRequest(w, "invalid message id")
		return
	}
	msg, err := h.Messages.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if msg.Status != model.MessageStatusApproved {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "only approved messages can be sent, status is " + msg.Status,
		})
		return
	}

	thread, err := h.Threads.GetByID(msg.ThreadID)
	if err != nil {
		writeError(w, err)
		return
	}
	inf, err := h.Influencers.GetByID(thread.InfluencerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !inf.HasEmail() {
		badRequest(w, "influencer has no email address on record")
		return
	}

	subject := ""
	if msg.Subject != nil {
		subject = *msg.Subject
	}

	now := time.Now().UTC()
	result, err := h.Email.Send(r.Context(), email.SendRequest{
		ToEmail:   *inf.Email,
		Subject:   subject,
		BodyText:  msg.Body,
		FromEmail: h.Sender.FromEmail,
		FromName:  h.Sender.FromName,
		ReplyTo:   h.Sender.ReplyTo,
	})
	if err != nil {
		if uerr := h.Messages.UpdateStatus(id, model.MessageStatusFailed); uerr != nil {
			writeError(w, uerr)
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "send failed: " + err.Error()})
		return
	}

	if err := h.Messages.MarkSent(id, result.ProviderMsgID, now); err != nil {
		writeError(w, err)
		return
	}
	followupDays := h.FollowupDays
	if followupDays < 1 {
		followupDays = 4
	}
	if err := h.Threads.MarkAwaitingReply(thread.ID, now, now.AddDate(0, 0, followupDays)); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Influencers.UpdateStatus(inf.ID, model.InfluencerStatusContacted); err != nil {
		writeError(w, err)
		return
	}

	msg, err = h.Messages.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
